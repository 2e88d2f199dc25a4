package transform

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sawtooth-seth/rpc/types"
)

// Namespace prefixes every state address owned by the seth family.
const Namespace = "a68b06"

// StateAddressLength is the length of a state address in hex characters.
const StateAddressLength = 70

const defaultAddressBookSize = 4096

// StateAddress maps an Ethereum address onto the ledger's state address
// space. The mapping is hash based and cannot be inverted without context.
func StateAddress(address common.Address) string {
	digest := crypto.Keccak256(address.Bytes())
	return Namespace + hex.EncodeToString(digest[:(StateAddressLength-len(Namespace))/2])
}

// AddressBook remembers the Ethereum address behind every state address it
// has produced, so results keyed by state address can be mapped back.
type AddressBook struct {
	cache *lru.Cache
}

// NewAddressBook returns an address book holding up to size mappings. Zero
// selects the default size.
func NewAddressBook(size int) (*AddressBook, error) {
	if size <= 0 {
		size = defaultAddressBookSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &AddressBook{cache: cache}, nil
}

// Record maps address forward and remembers the mapping.
func (b *AddressBook) Record(address common.Address) string {
	stateAddress := StateAddress(address)
	b.cache.Add(stateAddress, address)
	return stateAddress
}

// Lookup returns the Ethereum address that produced stateAddress, if it was
// recorded and has not been evicted since.
func (b *AddressBook) Lookup(stateAddress string) (common.Address, bool) {
	v, ok := b.cache.Get(strings.ToLower(stateAddress))
	if !ok {
		return common.Address{}, false
	}
	return v.(common.Address), true
}

// FirstRecorded returns the first of stateAddresses the book maps back to
// an address other than exclude. Namespace prefixes never match.
func (b *AddressBook) FirstRecorded(stateAddresses []string, exclude common.Address) (common.Address, bool) {
	if b == nil {
		return common.Address{}, false
	}
	for _, stateAddress := range stateAddresses {
		if len(stateAddress) != StateAddressLength {
			continue
		}
		if address, ok := b.Lookup(stateAddress); ok && address != exclude {
			return address, true
		}
	}
	return common.Address{}, false
}

// PublicKeyToAddress derives the Ethereum address of a hex encoded secp256k1
// public key, compressed or not.
func PublicKeyToAddress(publicKey string) (common.Address, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(publicKey, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: public key is not hex", types.ErrValidation)
	}
	switch len(b) {
	case 33:
		key, err := crypto.DecompressPubkey(b)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", types.ErrValidation, err)
		}
		return crypto.PubkeyToAddress(*key), nil
	case 65:
		key, err := crypto.UnmarshalPubkey(b)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", types.ErrValidation, err)
		}
		return crypto.PubkeyToAddress(*key), nil
	default:
		return common.Address{}, fmt.Errorf("%w: public key has %d bytes", types.ErrValidation, len(b))
	}
}
