package transform

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/sawtooth-seth/rpc/types"
)

// IDLength is the byte length of block, batch and transaction identifiers,
// which are header signatures.
const IDLength = 64

// EncodeQuantity encodes v as an Ethereum QUANTITY. nil encodes as zero.
func EncodeQuantity(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// DecodeQuantity decodes an Ethereum QUANTITY of at most 256 bits.
func DecodeQuantity(s string) (*big.Int, error) {
	v, err := uint256.FromHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: quantity %q: %v", types.ErrValidation, s, err)
	}
	return v.ToBig(), nil
}

// DecodeUint64 decodes a QUANTITY that must fit 64 bits.
func DecodeUint64(s string) (uint64, error) {
	v, err := DecodeQuantity(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: quantity %q exceeds 64 bits", types.ErrValidation, s)
	}
	return v.Uint64(), nil
}

// DecodeData decodes Ethereum DATA: 0x prefixed, even length hex.
func DecodeData(s string) ([]byte, error) {
	if !has0xPrefix(s) {
		return nil, fmt.Errorf("%w: data %q lacks 0x prefix", types.ErrValidation, s)
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: data %q has odd length", types.ErrValidation, s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: data %q is not hex", types.ErrValidation, s)
	}
	return b, nil
}

func EncodeData(b []byte) string {
	return hexutil.Encode(b)
}

// DecodeAddress decodes a 20 byte DATA value.
func DecodeAddress(s string) (common.Address, error) {
	b, err := DecodeData(s)
	if err != nil {
		return common.Address{}, err
	}
	if len(b) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: address has %d bytes", types.ErrValidation, len(b))
	}
	return common.BytesToAddress(b), nil
}

// DecodeHash decodes a 32 byte DATA value.
func DecodeHash(s string) (common.Hash, error) {
	b, err := DecodeData(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: hash has %d bytes", types.ErrValidation, len(b))
	}
	return common.BytesToHash(b), nil
}

// EncodeID turns a ledger identifier into Ethereum DATA. Identifiers are
// longer than Ethereum hashes and are passed through whole.
func EncodeID(id string) string {
	return "0x" + strings.ToLower(id)
}

// DecodeID reverses EncodeID, validating the identifier length.
func DecodeID(s string) (string, error) {
	b, err := DecodeData(s)
	if err != nil {
		return "", err
	}
	if len(b) != IDLength {
		return "", fmt.Errorf("%w: identifier has %d bytes", types.ErrValidation, len(b))
	}
	return hex.EncodeToString(b), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
