package transform

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sawtooth-seth/rpc/types"
)

// ParseBlockNumber decodes a block tag or number. Omitted values read as
// latest.
func ParseBlockNumber(raw json.RawMessage) (rpc.BlockNumber, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return rpc.LatestBlockNumber, nil
	}
	var n rpc.BlockNumber
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: block number %s: %v", types.ErrValidation, raw, err)
	}
	return n, nil
}

// ResolveBlockNumber pins n against the current head. The ledger has no
// pending block, so pending and the finality tags all read as the head.
func ResolveBlockNumber(n rpc.BlockNumber, head uint64) uint64 {
	switch {
	case n == rpc.EarliestBlockNumber:
		return 0
	case n < 0:
		return head
	default:
		return uint64(n)
	}
}

// IsHead reports whether n names the current head rather than a number.
func IsHead(n rpc.BlockNumber) bool {
	return n < 0 && n != rpc.EarliestBlockNumber
}
