package types

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/sawtooth-seth/rpc/wire"
)

// Sha512Hex returns the hex encoded SHA-512 digest of b, the form used by
// transaction headers to commit to their payload.
func Sha512Hex(b []byte) string {
	sum := sha512.Sum512(b)
	return hex.EncodeToString(sum[:])
}

// MustEncode encodes m and panics on failure. Only for values whose
// encoding cannot fail.
func MustEncode(m wire.Message) []byte {
	b, err := m.Marshal()
	if err != nil {
		panic(err)
	}
	return b
}
