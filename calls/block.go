package calls

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

func blockMethods() []requests.Method {
	return []requests.Method{
		{Name: "eth_blockNumber", Handler: blockNumber},
		{Name: "eth_getBlockByHash", Handler: getBlockByHash},
		{Name: "eth_getBlockByNumber", Handler: getBlockByNumber},
		{Name: "eth_getBlockTransactionCountByHash", Handler: getBlockTransactionCountByHash},
		{Name: "eth_getBlockTransactionCountByNumber", Handler: getBlockTransactionCountByNumber},
		{Name: "eth_getUncleCountByBlockHash", Handler: getUncleCountByBlockHash},
		{Name: "eth_getUncleCountByBlockNumber", Handler: getUncleCountByBlockNumber},
		{Name: "eth_getUncleByBlockHashAndIndex", Handler: getUncle},
		{Name: "eth_getUncleByBlockNumberAndIndex", Handler: getUncle},
	}
}

func blockNumber(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	n, err := headNumber(ctx, b)
	if err != nil {
		return nil, requests.Fail("Couldn't get block number", err)
	}
	return hexutil.Uint64(n), nil
}

// blockByHashParam resolves the block named by a hash parameter, nil when
// there is none.
func blockByHashParam(ctx context.Context, b *requests.Backend, params requests.Params) (*types.Block, error) {
	id, err := idParam(params, 0)
	if err != nil {
		return nil, err
	}
	block, err := blockByID(ctx, b, id)
	if err != nil {
		return nil, requests.Fail("Couldn't get block", err)
	}
	return block, nil
}

func blockByNumberParam(ctx context.Context, b *requests.Backend, params requests.Params) (*types.Block, error) {
	n, err := blockParam(params, 0)
	if err != nil {
		return nil, err
	}
	block, err := blockByTag(ctx, b, n)
	if err != nil {
		return nil, requests.Fail("Couldn't get block", err)
	}
	return block, nil
}

func ethereumBlock(ctx context.Context, b *requests.Backend, block *types.Block, full bool) (interface{}, error) {
	if block == nil {
		return nil, nil
	}
	receipts, err := blockReceipts(ctx, b, block)
	if err != nil {
		return nil, requests.Fail("Couldn't get block receipts", err)
	}
	out, err := transform.NewBlock(block, receipts, full, b.Chain.GasLimit)
	if err != nil {
		return nil, requests.Fail("Couldn't convert block", err)
	}
	return out, nil
}

func getBlockByHash(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	full, err := boolParam(params, 1)
	if err != nil {
		return nil, err
	}
	block, err := blockByHashParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	return ethereumBlock(ctx, b, block, full)
}

func getBlockByNumber(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	full, err := boolParam(params, 1)
	if err != nil {
		return nil, err
	}
	block, err := blockByNumberParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	return ethereumBlock(ctx, b, block, full)
}

func transactionCount(block *types.Block) interface{} {
	if block == nil {
		return nil
	}
	return hexutil.Uint(len(block.Transactions()))
}

func getBlockTransactionCountByHash(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByHashParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	return transactionCount(block), nil
}

func getBlockTransactionCountByNumber(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByNumberParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	return transactionCount(block), nil
}

// The ledger has no uncles.

func getUncleCountByBlockHash(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByHashParam(ctx, b, params)
	if err != nil || block == nil {
		return nil, err
	}
	return hexutil.Uint(0), nil
}

func getUncleCountByBlockNumber(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByNumberParam(ctx, b, params)
	if err != nil || block == nil {
		return nil, err
	}
	return hexutil.Uint(0), nil
}

func getUncle(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return nil, nil
}
