package calls

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transform"
)

func accountMethods() []requests.Method {
	return []requests.Method{
		{Name: "eth_getBalance", Handler: getBalance},
		{Name: "eth_getStorageAt", Handler: getStorageAt},
		{Name: "eth_getCode", Handler: getCode},
		{Name: "eth_getTransactionCount", Handler: getTransactionCount},
		{Name: "eth_accounts", Handler: listAccounts},
		{Name: "eth_sign", Handler: sign},
	}
}

func getBalance(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	block, err := blockParam(params, 1)
	if err != nil {
		return nil, err
	}
	account, err := getAccount(ctx, b, address, block)
	if err != nil {
		return nil, requests.Fail("Couldn't get balance", err)
	}
	if account == nil {
		return transform.EncodeQuantity(nil), nil
	}
	return transform.EncodeQuantity(account.Balance), nil
}

func getStorageAt(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	var position string
	if err := params.Get(1, &position); err != nil {
		return nil, err
	}
	key, err := transform.DecodeQuantity(position)
	if err != nil {
		return nil, err
	}
	block, err := blockParam(params, 2)
	if err != nil {
		return nil, err
	}
	entry, err := getEntry(ctx, b, address, block)
	if err != nil {
		return nil, requests.Fail("Couldn't get storage", err)
	}
	if entry == nil {
		return common.Hash{}, nil
	}
	return entry.StorageAt(common.BigToHash(key)), nil
}

func getCode(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	block, err := blockParam(params, 1)
	if err != nil {
		return nil, err
	}
	account, err := getAccount(ctx, b, address, block)
	if err != nil {
		return nil, requests.Fail("Couldn't get code", err)
	}
	if account == nil {
		return hexutil.Bytes{}, nil
	}
	return hexutil.Bytes(account.Code), nil
}

func getTransactionCount(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	block, err := blockParam(params, 1)
	if err != nil {
		return nil, err
	}
	account, err := getAccount(ctx, b, address, block)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction count", err)
	}
	if account == nil {
		return hexutil.Uint64(0), nil
	}
	return hexutil.Uint64(account.Nonce), nil
}

func listAccounts(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return b.Accounts.Addresses(), nil
}

func sign(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	data, err := dataParam(params, 1)
	if err != nil {
		return nil, err
	}
	return signText(b, address, data)
}

// signText signs data the way wallets sign messages: over the prefixed
// text hash, with v in {27, 28}.
func signText(b *requests.Backend, address common.Address, data []byte) (hexutil.Bytes, error) {
	account, err := b.Accounts.ByAddress(address)
	if err != nil {
		return nil, err
	}
	sig, err := account.Sign(accounts.TextHash(data))
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
