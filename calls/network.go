package calls

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/messages"
	"github.com/sawtooth-seth/rpc/requests"
)

// protocolVersion is the eth wire protocol version reported to clients.
const protocolVersion = 63

func networkMethods() []requests.Method {
	return []requests.Method{
		{Name: "net_version", Handler: netVersion},
		{Name: "net_peerCount", Handler: peerCount},
		{Name: "net_listening", Handler: constant(true)},
		{Name: "eth_chainId", Handler: chainID},
		{Name: "eth_protocolVersion", Handler: constant(hexutil.Uint(protocolVersion))},
		{Name: "eth_syncing", Handler: constant(false)},
		{Name: "eth_coinbase", Handler: coinbase},
		{Name: "eth_mining", Handler: constant(false)},
		{Name: "eth_hashrate", Handler: constant(hexutil.Uint(0))},
		{Name: "web3_clientVersion", Handler: clientVersion},
		{Name: "web3_sha3", Handler: sha3},
	}
}

func constant(v interface{}) requests.Handler {
	return func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
		return v, nil
	}
}

func netVersion(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return strconv.FormatUint(b.Chain.ChainID, 10), nil
}

func chainID(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return hexutil.Uint64(b.Chain.ChainID), nil
}

func peerCount(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var resp messages.ClientPeersGetResponsePayload
	err := b.Client.Request(ctx,
		messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{},
		messages.ClientPeersGetResponse, &resp)
	if err == nil {
		err = resp.Status.Err()
	}
	if err != nil {
		return nil, requests.Fail("Couldn't get peer count", err)
	}
	return hexutil.Uint(len(resp.Peers)), nil
}

// coinbase reports the first unlocked account, null without one.
func coinbase(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	addresses := b.Accounts.Addresses()
	if len(addresses) == 0 {
		return nil, nil
	}
	return addresses[0], nil
}

func clientVersion(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return b.Chain.ClientVersion, nil
}

func sha3(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	data, err := dataParam(params, 0)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256Hash(data), nil
}
