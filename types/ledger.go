package types

import (
	"github.com/sawtooth-seth/rpc/wire"
)

// Ledger-native records as served by the validator, in the protobuf layout
// of its block, batch and transaction schemas. Identifiers are the hex
// encoded 64-byte header signatures of the record they name.

// BlockHeader: block_num = 1, previous_block_id = 2, signer_public_key = 3,
// batch_ids = 4, consensus = 5, state_root_hash = 6.
type BlockHeader struct {
	BlockNum        uint64
	PreviousBlockID string
	SignerPublicKey string
	BatchIDs        []string
	Consensus       []byte
	StateRootHash   string
}

func (h *BlockHeader) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Uint64(1, h.BlockNum)
	e.String(2, h.PreviousBlockID)
	e.String(3, h.SignerPublicKey)
	e.Strings(4, h.BatchIDs)
	e.Raw(5, h.Consensus)
	e.String(6, h.StateRootHash)
	return e.Bytes()
}

func (h *BlockHeader) Unmarshal(b []byte) error {
	*h = BlockHeader{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			h.BlockNum, err = f.Uint64()
		case 2:
			h.PreviousBlockID, err = f.String()
		case 3:
			h.SignerPublicKey, err = f.String()
		case 4:
			err = f.AppendString(&h.BatchIDs)
		case 5:
			h.Consensus, err = f.Raw()
		case 6:
			h.StateRootHash, err = f.String()
		}
		return err
	})
}

// Block: header = 1, header_signature = 2, batches = 3.
type Block struct {
	Header          []byte // encoded BlockHeader
	HeaderSignature string
	Batches         []*Batch
}

func (b *Block) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, b.Header)
	e.String(2, b.HeaderSignature)
	for _, batch := range b.Batches {
		e.Message(3, batch)
	}
	return e.Bytes()
}

func (b *Block) Unmarshal(raw []byte) error {
	*b = Block{}
	return wire.Walk(raw, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			b.Header, err = f.Raw()
		case 2:
			b.HeaderSignature, err = f.String()
		case 3:
			batch := new(Batch)
			if err = f.Message(batch); err == nil {
				b.Batches = append(b.Batches, batch)
			}
		}
		return err
	})
}

func (b *Block) DecodeHeader() (*BlockHeader, error) {
	header := new(BlockHeader)
	if err := header.Unmarshal(b.Header); err != nil {
		return nil, err
	}
	return header, nil
}

// Transactions returns the transactions of all batches in block order.
func (b *Block) Transactions() []*Transaction {
	var txs []*Transaction
	for _, batch := range b.Batches {
		txs = append(txs, batch.Transactions...)
	}
	return txs
}

// BatchHeader: signer_public_key = 1, transaction_ids = 2.
type BatchHeader struct {
	SignerPublicKey string
	TransactionIDs  []string
}

func (h *BatchHeader) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, h.SignerPublicKey)
	e.Strings(2, h.TransactionIDs)
	return e.Bytes()
}

func (h *BatchHeader) Unmarshal(b []byte) error {
	*h = BatchHeader{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			h.SignerPublicKey, err = f.String()
		case 2:
			err = f.AppendString(&h.TransactionIDs)
		}
		return err
	})
}

// Batch: header = 1, header_signature = 2, transactions = 3, trace = 4.
type Batch struct {
	Header          []byte // encoded BatchHeader
	HeaderSignature string
	Transactions    []*Transaction
	Trace           bool
}

func (b *Batch) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, b.Header)
	e.String(2, b.HeaderSignature)
	for _, tx := range b.Transactions {
		e.Message(3, tx)
	}
	e.Bool(4, b.Trace)
	return e.Bytes()
}

func (b *Batch) Unmarshal(raw []byte) error {
	*b = Batch{}
	return wire.Walk(raw, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			b.Header, err = f.Raw()
		case 2:
			b.HeaderSignature, err = f.String()
		case 3:
			tx := new(Transaction)
			if err = f.Message(tx); err == nil {
				b.Transactions = append(b.Transactions, tx)
			}
		case 4:
			b.Trace, err = f.Bool()
		}
		return err
	})
}

func (b *Batch) DecodeHeader() (*BatchHeader, error) {
	header := new(BatchHeader)
	if err := header.Unmarshal(b.Header); err != nil {
		return nil, err
	}
	return header, nil
}

// TransactionHeader: batcher_public_key = 1, dependencies = 2,
// family_name = 3, family_version = 4, inputs = 5, nonce = 6, outputs = 7,
// payload_sha512 = 9, signer_public_key = 10.
type TransactionHeader struct {
	BatcherPublicKey string
	Dependencies     []string
	FamilyName       string
	FamilyVersion    string
	Inputs           []string
	Nonce            string
	Outputs          []string
	PayloadSha512    string
	SignerPublicKey  string
}

func (h *TransactionHeader) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, h.BatcherPublicKey)
	e.Strings(2, h.Dependencies)
	e.String(3, h.FamilyName)
	e.String(4, h.FamilyVersion)
	e.Strings(5, h.Inputs)
	e.String(6, h.Nonce)
	e.Strings(7, h.Outputs)
	e.String(9, h.PayloadSha512)
	e.String(10, h.SignerPublicKey)
	return e.Bytes()
}

func (h *TransactionHeader) Unmarshal(b []byte) error {
	*h = TransactionHeader{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			h.BatcherPublicKey, err = f.String()
		case 2:
			err = f.AppendString(&h.Dependencies)
		case 3:
			h.FamilyName, err = f.String()
		case 4:
			h.FamilyVersion, err = f.String()
		case 5:
			err = f.AppendString(&h.Inputs)
		case 6:
			h.Nonce, err = f.String()
		case 7:
			err = f.AppendString(&h.Outputs)
		case 9:
			h.PayloadSha512, err = f.String()
		case 10:
			h.SignerPublicKey, err = f.String()
		}
		return err
	})
}

// Transaction: header = 1, header_signature = 2, payload = 3.
type Transaction struct {
	Header          []byte // encoded TransactionHeader
	HeaderSignature string
	Payload         []byte
}

func (t *Transaction) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Raw(1, t.Header)
	e.String(2, t.HeaderSignature)
	e.Raw(3, t.Payload)
	return e.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	*t = Transaction{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			t.Header, err = f.Raw()
		case 2:
			t.HeaderSignature, err = f.String()
		case 3:
			t.Payload, err = f.Raw()
		}
		return err
	})
}

func (t *Transaction) DecodeHeader() (*TransactionHeader, error) {
	header := new(TransactionHeader)
	if err := header.Unmarshal(t.Header); err != nil {
		return nil, err
	}
	return header, nil
}

// DecodePayload decodes the seth payload carried by the transaction.
func (t *Transaction) DecodePayload() (*SethTransaction, error) {
	payload := new(SethTransaction)
	if err := payload.Unmarshal(t.Payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Event: event_type = 1, attributes = 2, data = 3.
type Event struct {
	EventType  string
	Attributes []*EventAttribute
	Data       []byte
}

// EventAttribute: key = 1, value = 2.
type EventAttribute struct {
	Key   string
	Value string
}

func (a *EventAttribute) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, a.Key)
	e.String(2, a.Value)
	return e.Bytes()
}

func (a *EventAttribute) Unmarshal(b []byte) error {
	*a = EventAttribute{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			a.Key, err = f.String()
		case 2:
			a.Value, err = f.String()
		}
		return err
	})
}

func (ev *Event) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, ev.EventType)
	for _, a := range ev.Attributes {
		e.Message(2, a)
	}
	e.Raw(3, ev.Data)
	return e.Bytes()
}

func (ev *Event) Unmarshal(b []byte) error {
	*ev = Event{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			ev.EventType, err = f.String()
		case 2:
			a := new(EventAttribute)
			if err = f.Message(a); err == nil {
				ev.Attributes = append(ev.Attributes, a)
			}
		case 3:
			ev.Data, err = f.Raw()
		}
		return err
	})
}

func (ev *Event) Attribute(key string) (string, bool) {
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// TransactionReceipt: state_changes = 1 (not read here), events = 2,
// data = 3, transaction_id = 4.
type TransactionReceipt struct {
	TransactionID string
	Events        []*Event
	Data          [][]byte // the first element is an encoded SethTransactionReceipt
}

func (r *TransactionReceipt) Marshal() ([]byte, error) {
	var e wire.Encoder
	for _, ev := range r.Events {
		e.Message(2, ev)
	}
	e.RawList(3, r.Data)
	e.String(4, r.TransactionID)
	return e.Bytes()
}

func (r *TransactionReceipt) Unmarshal(b []byte) error {
	*r = TransactionReceipt{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 2:
			ev := new(Event)
			if err = f.Message(ev); err == nil {
				r.Events = append(r.Events, ev)
			}
		case 3:
			err = f.AppendRaw(&r.Data)
		case 4:
			r.TransactionID, err = f.String()
		}
		return err
	})
}

// SethReceipt decodes the family specific part of the receipt, if any.
func (r *TransactionReceipt) SethReceipt() (*SethTransactionReceipt, error) {
	receipt := new(SethTransactionReceipt)
	if len(r.Data) == 0 {
		return receipt, nil
	}
	if err := receipt.Unmarshal(r.Data[0]); err != nil {
		return nil, err
	}
	return receipt, nil
}
