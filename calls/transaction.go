package calls

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transactions"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

func transactionMethods() []requests.Method {
	return []requests.Method{
		{Name: "eth_sendTransaction", Handler: sendTransaction},
		{Name: "eth_sendRawTransaction", Handler: unsupported},
		{Name: "eth_getTransactionByHash", Handler: getTransactionByHash},
		{Name: "eth_getTransactionByBlockHashAndIndex", Handler: getTransactionByBlockHashAndIndex},
		{Name: "eth_getTransactionByBlockNumberAndIndex", Handler: getTransactionByBlockNumberAndIndex},
		{Name: "eth_getTransactionReceipt", Handler: getTransactionReceipt},
		{Name: "eth_gasPrice", Handler: constant((*hexutil.Big)(transform.DefaultGasPrice))},
		{Name: "eth_estimateGas", Handler: estimateGas},
		{Name: "eth_call", Handler: unsupported},
	}
}

func unsupported(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
	return nil, types.ErrUnsupported
}

// nextNonce is the nonce of the account's next transaction.
func nextNonce(ctx context.Context, b *requests.Backend, args *TransactionArgs) (uint64, error) {
	if args.Nonce != nil {
		return uint64(*args.Nonce), nil
	}
	account, err := getAccount(ctx, b, args.From, rpc.LatestBlockNumber)
	if err != nil || account == nil {
		return 0, err
	}
	return account.Nonce, nil
}

func sendTransaction(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var args TransactionArgs
	if err := params.Get(0, &args); err != nil {
		return nil, err
	}
	from, err := b.Accounts.ByAddress(args.From)
	if err != nil {
		return nil, err
	}
	nonce, err := nextNonce(ctx, b, &args)
	if err != nil {
		return nil, requests.Fail("Couldn't get nonce", err)
	}
	req := &transactions.Request{
		From:     from,
		Kind:     types.SethMessageCall,
		To:       args.To,
		Nonce:    nonce,
		GasLimit: b.Chain.GasLimit,
		Data:     args.data(),
	}
	if args.To == nil {
		req.Kind = types.SethCreateContractAccount
	}
	if args.Gas != nil {
		req.GasLimit = uint64(*args.Gas)
	}
	if args.Value != nil {
		req.Value = args.Value.ToInt()
	}
	return submitRequest(ctx, b, req)
}

// submitRequest builds, signs and submits req, returning its transaction id.
func submitRequest(ctx context.Context, b *requests.Backend, req *transactions.Request) (interface{}, error) {
	signed, err := b.Builder.Build(req)
	if err != nil {
		return nil, err
	}
	if err := submit(ctx, b, signed); err != nil {
		return nil, requests.Fail("Couldn't submit transaction", err)
	}
	b.Logger.Debug("submitted transaction", "kind", req.Kind, "id", signed.TransactionID)
	return transform.EncodeID(signed.TransactionID), nil
}

func getTransactionByHash(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	id, err := idParam(params, 0)
	if err != nil {
		return nil, err
	}
	tx, err := getTransaction(ctx, b, id)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction", err)
	}
	if tx == nil {
		return nil, nil
	}
	loc, err := locate(ctx, b, id)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction", err)
	}
	out, err := transform.NewTransaction(tx, loc)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction", err)
	}
	return out, nil
}

// locate returns where txID was committed, nil while it is not.
func locate(ctx context.Context, b *requests.Backend, txID string) (*transform.Location, error) {
	block, err := blockByTransaction(ctx, b, txID)
	if err != nil || block == nil {
		return nil, err
	}
	header, err := block.DecodeHeader()
	if err != nil {
		return nil, err
	}
	loc, ok := transform.Locate(block, header, txID)
	if !ok {
		return nil, fmt.Errorf("block %s does not hold transaction %s", block.HeaderSignature, txID)
	}
	return &loc, nil
}

func transactionAt(block *types.Block, index uint64) (interface{}, error) {
	if block == nil {
		return nil, nil
	}
	txs := block.Transactions()
	if index >= uint64(len(txs)) {
		return nil, nil
	}
	header, err := block.DecodeHeader()
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction", err)
	}
	loc := transform.Location{BlockID: block.HeaderSignature, BlockNumber: header.BlockNum, Index: index}
	out, err := transform.NewTransaction(txs[index], &loc)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction", err)
	}
	return out, nil
}

func getTransactionByBlockHashAndIndex(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByHashParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	index, err := uint64Param(params, 1)
	if err != nil {
		return nil, err
	}
	return transactionAt(block, index)
}

func getTransactionByBlockNumberAndIndex(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	block, err := blockByNumberParam(ctx, b, params)
	if err != nil {
		return nil, err
	}
	index, err := uint64Param(params, 1)
	if err != nil {
		return nil, err
	}
	return transactionAt(block, index)
}

func getTransactionReceipt(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	id, err := idParam(params, 0)
	if err != nil {
		return nil, err
	}
	receipts, err := getReceipts(ctx, b, []string{id})
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction receipt", err)
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	tx, err := getTransaction(ctx, b, id)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction receipt", err)
	}
	loc, err := locate(ctx, b, id)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction receipt", err)
	}
	if tx == nil || loc == nil {
		return nil, nil
	}
	out, err := transform.NewReceipt(receipts[0], tx, *loc, b.Addresses)
	if err != nil {
		return nil, requests.Fail("Couldn't get transaction receipt", err)
	}
	return out, nil
}

// estimateGas reports the chain gas limit, the ledger has no gas market to
// estimate against.
func estimateGas(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return hexutil.Uint64(b.Chain.GasLimit), nil
}
