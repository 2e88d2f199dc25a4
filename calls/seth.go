package calls

import (
	"context"
	"fmt"

	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transactions"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

func sethMethods() []requests.Method {
	return []requests.Method{
		{Name: "seth_getStateAddress", Handler: getStateAddress},
		{Name: "seth_getPermissions", Handler: getPermissions},
		{Name: "seth_setPermissions", Handler: setPermissions},
		{Name: "seth_createExternalAccount", Handler: createExternalAccount},
	}
}

func getStateAddress(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	return b.Addresses.Record(address), nil
}

// getPermissions returns null for accounts that do not exist.
func getPermissions(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
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
		return nil, requests.Fail("Couldn't get permissions", err)
	}
	if account == nil {
		return nil, nil
	}
	return transform.FormatPermissions(account.Permissions), nil
}

// sethRequest turns args into a request of kind signed by args.From.
func sethRequest(ctx context.Context, b *requests.Backend, kind types.SethTransactionType, args *TransactionArgs) (*transactions.Request, error) {
	from, err := b.Accounts.ByAddress(args.From)
	if err != nil {
		return nil, err
	}
	req := &transactions.Request{From: from, Kind: kind, To: args.To, GasLimit: b.Chain.GasLimit}
	if args.Permissions != nil {
		if req.Permissions, err = transform.ParsePermissions(*args.Permissions); err != nil {
			return nil, err
		}
	}
	if req.Nonce, err = nextNonce(ctx, b, args); err != nil {
		return nil, requests.Fail("Couldn't get nonce", err)
	}
	return req, nil
}

func setPermissions(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var args TransactionArgs
	if err := params.Get(0, &args); err != nil {
		return nil, err
	}
	if args.Permissions == nil {
		return nil, fmt.Errorf("%w: permissions are required", types.ErrValidation)
	}
	req, err := sethRequest(ctx, b, types.SethSetPermissions, &args)
	if err != nil {
		return nil, err
	}
	return submitRequest(ctx, b, req)
}

// createExternalAccount creates the sender's account, or the account at to
// when given.
func createExternalAccount(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var args TransactionArgs
	if err := params.Get(0, &args); err != nil {
		return nil, err
	}
	req, err := sethRequest(ctx, b, types.SethCreateExternalAccount, &args)
	if err != nil {
		return nil, err
	}
	return submitRequest(ctx, b, req)
}
