package transactions

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/accounts"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

// Request describes a state changing operation on behalf of an unlocked
// account.
type Request struct {
	From        *accounts.Account
	Kind        types.SethTransactionType
	To          *common.Address
	Nonce       uint64
	GasLimit    uint64
	Value       *big.Int
	Data        []byte
	Permissions types.EvmPermissions
}

// Signed is a batch holding a single signed transaction, ready to submit.
type Signed struct {
	Batch         *types.Batch
	TransactionID string
	// ContractAddress is set when the transaction creates a contract.
	ContractAddress *common.Address
}

// addressFunc computes the state addresses a transaction reads and writes.
type addressFunc = func(b *Builder, req *Request) (addresses []string, created *common.Address, err error)

var kinds = make(map[types.SethTransactionType]addressFunc)

func registerKind(kind types.SethTransactionType, f addressFunc) {
	kinds[kind] = f
}

func init() {
	registerKind(types.SethCreateExternalAccount, func(b *Builder, req *Request) ([]string, *common.Address, error) {
		if req.To == nil {
			return []string{b.addresses.Record(req.From.Address())}, nil, nil
		}
		return []string{b.addresses.Record(req.From.Address()), b.addresses.Record(*req.To)}, nil, nil
	})
	// Contract code may touch any account, so creation and calls claim the
	// whole namespace. Creation also names the new account so its receipt
	// can be tied back to it.
	registerKind(types.SethCreateContractAccount, func(b *Builder, req *Request) ([]string, *common.Address, error) {
		if len(req.Data) == 0 {
			return nil, nil, fmt.Errorf("%w: contract creation without init code", types.ErrValidation)
		}
		created := crypto.CreateAddress(req.From.Address(), req.Nonce)
		b.addresses.Record(req.From.Address())
		return []string{transform.Namespace, b.addresses.Record(created)}, &created, nil
	})
	registerKind(types.SethMessageCall, func(b *Builder, req *Request) ([]string, *common.Address, error) {
		if req.To == nil {
			return nil, nil, fmt.Errorf("%w: message call without target", types.ErrValidation)
		}
		b.addresses.Record(req.From.Address())
		b.addresses.Record(*req.To)
		return []string{transform.Namespace}, nil, nil
	})
	registerKind(types.SethSetPermissions, func(b *Builder, req *Request) ([]string, *common.Address, error) {
		if req.To == nil {
			return nil, nil, fmt.Errorf("%w: permission change without target", types.ErrValidation)
		}
		return []string{b.addresses.Record(req.From.Address()), b.addresses.Record(*req.To)}, nil, nil
	})
}

type Builder struct {
	addresses *transform.AddressBook
}

// NewBuilder returns a builder recording every state address it derives in
// addresses.
func NewBuilder(addresses *transform.AddressBook) *Builder {
	return &Builder{addresses: addresses}
}

// Build assembles and signs req. The result depends only on req and the
// signing key.
func (b *Builder) Build(req *Request) (*Signed, error) {
	if req.From == nil {
		return nil, fmt.Errorf("%w: no signing account", types.ErrValidation)
	}
	if req.Value != nil && req.Value.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value", types.ErrValidation)
	}
	addressesOf := kinds[req.Kind]
	if addressesOf == nil {
		return nil, fmt.Errorf("%w: unknown transaction type %s", types.ErrValidation, req.Kind)
	}
	stateAddresses, created, err := addressesOf(b, req)
	if err != nil {
		return nil, err
	}

	payload := &types.SethTransaction{
		Type:        req.Kind,
		Nonce:       req.Nonce,
		GasLimit:    req.GasLimit,
		Value:       req.Value,
		Data:        req.Data,
		Permissions: req.Permissions,
	}
	if payload.Value == nil {
		payload.Value = new(big.Int)
	}
	if req.To != nil {
		payload.To = req.To.Bytes()
	}
	payloadBytes, err := payload.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}

	publicKey := req.From.PublicKeyHex()
	header := types.MustEncode(&types.TransactionHeader{
		BatcherPublicKey: publicKey,
		Dependencies:     []string{},
		FamilyName:       types.FamilyName,
		FamilyVersion:    types.FamilyVersion,
		Inputs:           stateAddresses,
		Nonce:            strconv.FormatUint(req.Nonce, 10),
		Outputs:          stateAddresses,
		PayloadSha512:    types.Sha512Hex(payloadBytes),
		SignerPublicKey:  publicKey,
	})
	txID, err := req.From.SignLedger(header)
	if err != nil {
		return nil, err
	}
	tx := &types.Transaction{Header: header, HeaderSignature: txID, Payload: payloadBytes}

	batchHeader := types.MustEncode(&types.BatchHeader{
		SignerPublicKey: publicKey,
		TransactionIDs:  []string{txID},
	})
	batchID, err := req.From.SignLedger(batchHeader)
	if err != nil {
		return nil, err
	}
	return &Signed{
		Batch: &types.Batch{
			Header:          batchHeader,
			HeaderSignature: batchID,
			Transactions:    []*types.Transaction{tx},
		},
		TransactionID:   txID,
		ContractAddress: created,
	}, nil
}
