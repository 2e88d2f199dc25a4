package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sawtooth-seth/rpc/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	FamilyName    = "seth"
	FamilyVersion = "1.0"

	// LogEventType tags receipt events emitted by the EVM LOG opcodes.
	LogEventType = "seth_log_event"
	// LogEventAddress is the event attribute carrying the emitting contract.
	LogEventAddress = "address"
)

// ErrOutOfRange is returned when a quantity does not fit the 64-bit fields
// of the seth schema.
var ErrOutOfRange = errors.New("quantity out of range")

type SethTransactionType uint8

// Seth transaction types, append only.
const (
	SethTransactionUnset SethTransactionType = iota
	SethCreateExternalAccount
	SethCreateContractAccount
	SethMessageCall
	SethSetPermissions
)

func (t SethTransactionType) String() string {
	switch t {
	case SethCreateExternalAccount:
		return "CREATE_EXTERNAL_ACCOUNT"
	case SethCreateContractAccount:
		return "CREATE_CONTRACT_ACCOUNT"
	case SethMessageCall:
		return "MESSAGE_CALL"
	case SethSetPermissions:
		return "SET_PERMISSIONS"
	default:
		return "UNSET"
	}
}

// SethTransaction is the payload of a seth family transaction. On the wire
// it is transaction_type = 1 followed by the message of that type:
// create_external_account = 2, create_contract_account = 3,
// message_call = 4, set_permissions = 5.
type SethTransaction struct {
	Type        SethTransactionType
	To          []byte // empty unless the transaction targets an existing account
	Nonce       uint64
	GasPrice    uint64
	GasLimit    uint64
	Value       *big.Int
	Data        []byte // init code of created contracts, call data otherwise
	Permissions EvmPermissions
}

// sethBody is the type specific message of a SethTransaction.
//
//	CreateExternalAccountTxn: nonce = 1, to = 2, permissions = 3
//	CreateContractAccountTxn: nonce = 1, gas_price = 2, gas_limit = 3,
//	                          value = 4, init = 5, permissions = 6
//	MessageCallTxn:           nonce = 1, gas_price = 2, gas_limit = 3,
//	                          value = 4, data = 5, to = 6
//	SetPermissionsTxn:        nonce = 1, to = 2, permissions = 3
type sethBody struct {
	tx *SethTransaction
}

func (p *EvmPermissions) isZero() bool {
	return p.Perms == 0 && p.SetBit == 0
}

func (s sethBody) Marshal() ([]byte, error) {
	tx := s.tx
	var e wire.Encoder
	e.Uint64(1, tx.Nonce)
	switch tx.Type {
	case SethCreateExternalAccount, SethSetPermissions:
		e.Raw(2, tx.To)
		if !tx.Permissions.isZero() {
			e.Message(3, &tx.Permissions)
		}
	case SethCreateContractAccount, SethMessageCall:
		value := uint64(0)
		if tx.Value != nil {
			if tx.Value.Sign() < 0 || !tx.Value.IsUint64() {
				return nil, fmt.Errorf("%w: value %s", ErrOutOfRange, tx.Value)
			}
			value = tx.Value.Uint64()
		}
		e.Uint64(2, tx.GasPrice)
		e.Uint64(3, tx.GasLimit)
		e.Uint64(4, value)
		e.Raw(5, tx.Data)
		if tx.Type == SethMessageCall {
			e.Raw(6, tx.To)
		} else if !tx.Permissions.isZero() {
			e.Message(6, &tx.Permissions)
		}
	}
	return e.Bytes()
}

func (s sethBody) Unmarshal(b []byte) error {
	tx := s.tx
	contract := tx.Type == SethCreateContractAccount || tx.Type == SethMessageCall
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch {
		case f.Num == 1:
			tx.Nonce, err = f.Uint64()
		case !contract && f.Num == 2:
			tx.To, err = f.Raw()
		case !contract && f.Num == 3:
			err = f.Message(&tx.Permissions)
		case contract && f.Num == 2:
			tx.GasPrice, err = f.Uint64()
		case contract && f.Num == 3:
			tx.GasLimit, err = f.Uint64()
		case contract && f.Num == 4:
			var v uint64
			v, err = f.Uint64()
			tx.Value = new(big.Int).SetUint64(v)
		case contract && f.Num == 5:
			tx.Data, err = f.Raw()
		case tx.Type == SethMessageCall && f.Num == 6:
			tx.To, err = f.Raw()
		case tx.Type == SethCreateContractAccount && f.Num == 6:
			err = f.Message(&tx.Permissions)
		}
		return err
	})
}

func (tx *SethTransaction) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Uint64(1, uint64(tx.Type))
	if tx.Type >= SethCreateExternalAccount && tx.Type <= SethSetPermissions {
		e.Message(protowire.Number(tx.Type)+1, sethBody{tx})
	}
	return e.Bytes()
}

func (tx *SethTransaction) Unmarshal(b []byte) error {
	*tx = SethTransaction{}
	var body []byte
	var bodyNum uint64
	err := wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			var v uint64
			v, err = f.Uint64()
			tx.Type = SethTransactionType(v)
		case 2, 3, 4, 5:
			bodyNum = uint64(f.Num)
			body, err = f.Raw()
		}
		return err
	})
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	if bodyNum != uint64(tx.Type)+1 {
		return fmt.Errorf("%w: %s transaction carries body %d", wire.ErrMalformed, tx.Type, bodyNum)
	}
	return sethBody{tx}.Unmarshal(body)
}

// Permission bits of an EVM account.
const (
	PermRoot uint64 = 1 << iota
	PermSend
	PermCall
	PermCreateContract
	PermCreateAccount

	PermAll = PermRoot | PermSend | PermCall | PermCreateContract | PermCreateAccount
)

// EvmPermissions has a bit in SetBit for every permission explicitly set, and
// the value of that permission in Perms. Layout: perms = 1, set_bit = 2.
type EvmPermissions struct {
	Perms  uint64
	SetBit uint64
}

func (p *EvmPermissions) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Uint64(1, p.Perms)
	e.Uint64(2, p.SetBit)
	return e.Bytes()
}

func (p *EvmPermissions) Unmarshal(b []byte) error {
	*p = EvmPermissions{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			p.Perms, err = f.Uint64()
		case 2:
			p.SetBit, err = f.Uint64()
		}
		return err
	})
}

// EvmStateAccount: address = 1, balance = 2 (int64), code = 3,
// nonce = 4 (int64), permissions = 5.
type EvmStateAccount struct {
	Address     []byte
	Balance     *big.Int
	Code        []byte
	Nonce       uint64
	Permissions EvmPermissions
}

func (a *EvmStateAccount) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, a.Address)
	if a.Balance != nil {
		if !a.Balance.IsInt64() {
			return nil, fmt.Errorf("%w: balance %s", ErrOutOfRange, a.Balance)
		}
		e.Int64(2, a.Balance.Int64())
	}
	e.Raw(3, a.Code)
	e.Int64(4, int64(a.Nonce))
	e.Message(5, &a.Permissions)
	return e.Bytes()
}

func (a *EvmStateAccount) Unmarshal(b []byte) error {
	*a = EvmStateAccount{Balance: new(big.Int)}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			a.Address, err = f.Raw()
		case 2:
			var v int64
			v, err = f.Int64()
			a.Balance.SetInt64(v)
		case 3:
			a.Code, err = f.Raw()
		case 4:
			var v int64
			v, err = f.Int64()
			a.Nonce = uint64(v)
		case 5:
			err = f.Message(&a.Permissions)
		}
		return err
	})
}

// EvmStorage: key = 1, value = 2.
type EvmStorage struct {
	Key   common.Hash
	Value common.Hash
}

func (s *EvmStorage) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, s.Key[:])
	e.Raw(2, s.Value[:])
	return e.Bytes()
}

func (s *EvmStorage) Unmarshal(b []byte) error {
	*s = EvmStorage{}
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num != 1 && f.Num != 2 {
			return nil
		}
		v, err := f.Raw()
		if err != nil {
			return err
		}
		if f.Num == 1 {
			s.Key = common.BytesToHash(v)
		} else {
			s.Value = common.BytesToHash(v)
		}
		return nil
	})
}

// EvmEntry is the value stored at an account's state address. Layout:
// account = 1, storage = 2.
type EvmEntry struct {
	Account *EvmStateAccount
	Storage []*EvmStorage
}

func (en *EvmEntry) Marshal() ([]byte, error) {
	var e wire.Encoder
	if en.Account != nil {
		e.Message(1, en.Account)
	}
	for _, s := range en.Storage {
		e.Message(2, s)
	}
	return e.Bytes()
}

func (en *EvmEntry) Unmarshal(b []byte) error {
	*en = EvmEntry{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			en.Account = new(EvmStateAccount)
			err = f.Message(en.Account)
		case 2:
			s := new(EvmStorage)
			if err = f.Message(s); err == nil {
				en.Storage = append(en.Storage, s)
			}
		}
		return err
	})
}

func DecodeEvmEntry(b []byte) (*EvmEntry, error) {
	entry := new(EvmEntry)
	if err := entry.Unmarshal(b); err != nil {
		return nil, err
	}
	return entry, nil
}

// StorageAt returns the value stored under key, zero if absent.
func (en *EvmEntry) StorageAt(key common.Hash) common.Hash {
	for _, s := range en.Storage {
		if s.Key == key {
			return s.Value
		}
	}
	return common.Hash{}
}

// SethLogData is the data of a LogEventType event. Layout: address = 1,
// topics = 2, data = 3.
type SethLogData struct {
	Address []byte
	Topics  []common.Hash
	Data    []byte
}

func (d *SethLogData) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, d.Address)
	topics := make([][]byte, len(d.Topics))
	for i := range d.Topics {
		topics[i] = d.Topics[i][:]
	}
	e.RawList(2, topics)
	e.Raw(3, d.Data)
	return e.Bytes()
}

func (d *SethLogData) Unmarshal(b []byte) error {
	*d = SethLogData{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			d.Address, err = f.Raw()
		case 2:
			var topic []byte
			if topic, err = f.Raw(); err == nil {
				d.Topics = append(d.Topics, common.BytesToHash(topic))
			}
		case 3:
			d.Data, err = f.Raw()
		}
		return err
	})
}

// SethTransactionReceipt: contract_address = 1, gas_used = 2,
// return_value = 3.
type SethTransactionReceipt struct {
	ContractAddress []byte
	GasUsed         uint64
	ReturnValue     []byte
}

func (r *SethTransactionReceipt) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, r.ContractAddress)
	e.Uint64(2, r.GasUsed)
	e.Raw(3, r.ReturnValue)
	return e.Bytes()
}

func (r *SethTransactionReceipt) Unmarshal(b []byte) error {
	*r = SethTransactionReceipt{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			r.ContractAddress, err = f.Raw()
		case 2:
			r.GasUsed, err = f.Uint64()
		case 3:
			r.ReturnValue, err = f.Raw()
		}
		return err
	})
}
