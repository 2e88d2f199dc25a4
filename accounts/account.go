package accounts

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/types"
)

// Account is an unlocked signing identity. It never prints its key.
type Account struct {
	alias   string
	address common.Address
	key     *ecdsa.PrivateKey
}

func NewAccount(alias string, key *ecdsa.PrivateKey) (*Account, error) {
	if alias == "" {
		return nil, fmt.Errorf("%w: empty account alias", types.ErrValidation)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: nil key for account %s", types.ErrSigning, alias)
	}
	return &Account{alias: alias, address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// FromHex builds an account from a hex encoded secp256k1 private key.
func FromHex(alias, keyHex string) (*Account, error) {
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key for account %s", types.ErrSigning, alias)
	}
	return NewAccount(alias, key)
}

func (a *Account) Alias() string { return a.alias }

func (a *Account) Address() common.Address { return a.address }

// PublicKey returns the compressed public key.
func (a *Account) PublicKey() []byte {
	return crypto.CompressPubkey(&a.key.PublicKey)
}

// PublicKeyHex is the ledger's encoding of signer identities.
func (a *Account) PublicKeyHex() string {
	return hex.EncodeToString(a.PublicKey())
}

// Sign signs a 32 byte hash, returning the 65 byte [R || S || V] signature.
func (a *Account) Sign(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, a.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSigning, err)
	}
	return sig, nil
}

// SignLedger signs message the way the validator verifies headers: a
// compact 64 byte [R || S] signature over the SHA-256 digest.
func (a *Account) SignLedger(message []byte) (string, error) {
	digest := sha256.Sum256(message)
	sig, err := a.Sign(digest[:])
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig[:64]), nil
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.alias, a.address.Hex())
}

// GoString keeps %#v from dumping the private key.
func (a *Account) GoString() string {
	return "accounts.Account{" + a.String() + "}"
}
