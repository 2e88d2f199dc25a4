package requests

import (
	"context"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/sawtooth-seth/rpc/accounts"
	"github.com/sawtooth-seth/rpc/filters"
	"github.com/sawtooth-seth/rpc/messages"
	"github.com/sawtooth-seth/rpc/transactions"
	"github.com/sawtooth-seth/rpc/transform"
)

// Caller performs one validator round trip. It is implemented by
// *client.ValidatorClient.
type Caller interface {
	Request(ctx context.Context, reqType messages.MessageType, req interface{}, respType messages.MessageType, resp interface{}) error
}

// ChainConfig holds the values reported for Ethereum fields the ledger does
// not define.
type ChainConfig struct {
	ChainID       uint64
	GasLimit      uint64
	ClientVersion string
}

// Backend is everything a handler may use. It is shared by all calls.
type Backend struct {
	Client    Caller
	Accounts  *accounts.Store
	Filters   *filters.Registry
	Builder   *transactions.Builder
	Addresses *transform.AddressBook
	Chain     ChainConfig
	Logger    log.Logger
}
