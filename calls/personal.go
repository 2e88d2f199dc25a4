package calls

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/types"
)

func personalMethods() []requests.Method {
	return []requests.Method{
		{Name: "personal_listAccounts", Handler: listAccounts},
		{Name: "personal_unlockAccount", Handler: unlockAccount},
		{Name: "personal_sign", Handler: personalSign},
		{Name: "personal_ecRecover", Handler: ecRecover},
		{Name: "personal_newAccount", Handler: unsupported},
	}
}

// unlockAccount succeeds for accounts unlocked at startup. Accounts cannot
// be unlocked at runtime, so the password and duration are ignored.
func unlockAccount(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	address, err := addressParam(params, 0)
	if err != nil {
		return nil, err
	}
	if _, err := b.Accounts.ByAddress(address); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrAccountNotFound, address.Hex())
	}
	return true, nil
}

// personalSign takes the data first and the address second.
func personalSign(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	data, err := dataParam(params, 0)
	if err != nil {
		return nil, err
	}
	address, err := addressParam(params, 1)
	if err != nil {
		return nil, err
	}
	return signText(b, address, data)
}

func ecRecover(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	data, err := dataParam(params, 0)
	if err != nil {
		return nil, err
	}
	sig, err := dataParam(params, 1)
	if err != nil {
		return nil, err
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("%w: signature must be %d bytes", types.ErrValidation, crypto.SignatureLength)
	}
	if sig[crypto.RecoveryIDOffset] != 27 && sig[crypto.RecoveryIDOffset] != 28 {
		return nil, fmt.Errorf("%w: invalid recovery id", types.ErrValidation)
	}
	sig[crypto.RecoveryIDOffset] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(data), sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
