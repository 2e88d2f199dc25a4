package messages

import (
	"fmt"

	"github.com/sawtooth-seth/rpc/types"
	"github.com/sawtooth-seth/rpc/wire"
)

// Each client response carries its own status enum. Values follow the
// validator's client_*.proto files, which keep OK = 1, INTERNAL_ERROR = 2,
// NO_RESOURCE = 5 and INVALID_ID = 8 stable wherever they appear.

// Status is the status of the block, transaction and receipt responses.
type Status int32

const (
	StatusUnset         Status = 0
	StatusOK            Status = 1
	StatusInternalError Status = 2
	StatusNotReady      Status = 3
	StatusNoRoot        Status = 4
	StatusNoResource    Status = 5
	StatusInvalidPaging Status = 6
	StatusInvalidSort   Status = 7
	StatusInvalidID     Status = 8
)

var statusNames = map[Status]string{
	StatusUnset:         "STATUS_UNSET",
	StatusOK:            "OK",
	StatusInternalError: "INTERNAL_ERROR",
	StatusNotReady:      "NOT_READY",
	StatusNoRoot:        "NO_ROOT",
	StatusNoResource:    "NO_RESOURCE",
	StatusInvalidPaging: "INVALID_PAGING",
	StatusInvalidSort:   "INVALID_SORT",
	StatusInvalidID:     "INVALID_ID",
}

func (s Status) String() string { return enumName(statusNames, s) }

// Err returns nil for StatusOK. NO_RESOURCE maps to types.ErrNotFound, any
// other status to a plain error naming it.
func (s Status) Err() error {
	return statusErr(s == StatusOK, s == StatusNoResource, s.String())
}

// StateStatus is the status of ClientStateGetResponse.
type StateStatus int32

const (
	StateStatusUnset          StateStatus = 0
	StateStatusOK             StateStatus = 1
	StateStatusInternalError  StateStatus = 2
	StateStatusNotReady       StateStatus = 3
	StateStatusNoRoot         StateStatus = 4
	StateStatusNoResource     StateStatus = 5
	StateStatusInvalidAddress StateStatus = 6
	StateStatusInvalidRoot    StateStatus = 7
)

var stateStatusNames = map[StateStatus]string{
	StateStatusUnset:          "STATUS_UNSET",
	StateStatusOK:             "OK",
	StateStatusInternalError:  "INTERNAL_ERROR",
	StateStatusNotReady:       "NOT_READY",
	StateStatusNoRoot:         "NO_ROOT",
	StateStatusNoResource:     "NO_RESOURCE",
	StateStatusInvalidAddress: "INVALID_ADDRESS",
	StateStatusInvalidRoot:    "INVALID_ROOT",
}

func (s StateStatus) String() string { return enumName(stateStatusNames, s) }

func (s StateStatus) Err() error {
	return statusErr(s == StateStatusOK, s == StateStatusNoResource, s.String())
}

// BatchStatus is the status of ClientBatchSubmitResponse.
type BatchStatus int32

const (
	BatchStatusUnset         BatchStatus = 0
	BatchStatusOK            BatchStatus = 1
	BatchStatusInternalError BatchStatus = 2
	BatchStatusInvalidBatch  BatchStatus = 3
	BatchStatusQueueFull     BatchStatus = 4
)

var batchStatusNames = map[BatchStatus]string{
	BatchStatusUnset:         "STATUS_UNSET",
	BatchStatusOK:            "OK",
	BatchStatusInternalError: "INTERNAL_ERROR",
	BatchStatusInvalidBatch:  "INVALID_BATCH",
	BatchStatusQueueFull:     "QUEUE_FULL",
}

func (s BatchStatus) String() string { return enumName(batchStatusNames, s) }

func (s BatchStatus) Err() error {
	return statusErr(s == BatchStatusOK, false, s.String())
}

// PeersStatus is the status of ClientPeersGetResponse.
type PeersStatus int32

const (
	PeersStatusUnset PeersStatus = 0
	PeersStatusOK    PeersStatus = 1
	PeersStatusError PeersStatus = 2
)

var peersStatusNames = map[PeersStatus]string{
	PeersStatusUnset: "STATUS_UNSET",
	PeersStatusOK:    "OK",
	PeersStatusError: "ERROR",
}

func (s PeersStatus) String() string { return enumName(peersStatusNames, s) }

func (s PeersStatus) Err() error {
	return statusErr(s == PeersStatusOK, false, s.String())
}

func enumName[T ~int32](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(v))
}

func statusErr(ok, notFound bool, name string) error {
	switch {
	case ok:
		return nil
	case notFound:
		return fmt.Errorf("validator: %w", types.ErrNotFound)
	default:
		return fmt.Errorf("validator responded with status %s", name)
	}
}

func readStatus[T ~int32](f wire.Field, s *T) error {
	v, err := f.Int64()
	*s = T(v)
	return err
}

// ClientBatchSubmitRequest: batches = 1.
type ClientBatchSubmitRequestPayload struct {
	Batches []*types.Batch
}

func (p *ClientBatchSubmitRequestPayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	for _, batch := range p.Batches {
		e.Message(1, batch)
	}
	return e.Bytes()
}

func (p *ClientBatchSubmitRequestPayload) Unmarshal(b []byte) error {
	*p = ClientBatchSubmitRequestPayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		if f.Num == 1 {
			batch := new(types.Batch)
			if err = f.Message(batch); err == nil {
				p.Batches = append(p.Batches, batch)
			}
		}
		return err
	})
}

// ClientBatchSubmitResponse: status = 1.
type ClientBatchSubmitResponsePayload struct {
	Status BatchStatus
}

func (p *ClientBatchSubmitResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	return e.Bytes()
}

func (p *ClientBatchSubmitResponsePayload) Unmarshal(b []byte) error {
	*p = ClientBatchSubmitResponsePayload{}
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			return readStatus(f, &p.Status)
		}
		return nil
	})
}

// ClientStateGetRequest reads one state address, state_root = 1,
// address = 3. An empty StateRoot reads the state of the chain head.
type ClientStateGetRequestPayload struct {
	StateRoot string
	Address   string
}

func (p *ClientStateGetRequestPayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, p.StateRoot)
	e.String(3, p.Address)
	return e.Bytes()
}

func (p *ClientStateGetRequestPayload) Unmarshal(b []byte) error {
	*p = ClientStateGetRequestPayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			p.StateRoot, err = f.String()
		case 3:
			p.Address, err = f.String()
		}
		return err
	})
}

// ClientStateGetResponse: status = 1, value = 2, state_root = 3.
type ClientStateGetResponsePayload struct {
	Status    StateStatus
	Value     []byte
	StateRoot string
}

func (p *ClientStateGetResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	e.Raw(2, p.Value)
	e.String(3, p.StateRoot)
	return e.Bytes()
}

func (p *ClientStateGetResponsePayload) Unmarshal(b []byte) error {
	*p = ClientStateGetResponsePayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			err = readStatus(f, &p.Status)
		case 2:
			p.Value, err = f.Raw()
		case 3:
			p.StateRoot, err = f.String()
		}
		return err
	})
}

// ClientPagingControls: start = 1, limit = 2.
type ClientPagingControls struct {
	Start string
	Limit int32
}

func (p *ClientPagingControls) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, p.Start)
	e.Int64(2, int64(p.Limit))
	return e.Bytes()
}

func (p *ClientPagingControls) Unmarshal(b []byte) error {
	*p = ClientPagingControls{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			p.Start, err = f.String()
		case 2:
			var v int64
			v, err = f.Int64()
			p.Limit = int32(v)
		}
		return err
	})
}

// ClientBlockListRequest lists blocks from HeadID (chain head when empty)
// backwards. Layout: head_id = 1, block_ids = 2, paging = 3.
type ClientBlockListRequestPayload struct {
	HeadID   string
	BlockIDs []string
	Paging   ClientPagingControls
}

func (p *ClientBlockListRequestPayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, p.HeadID)
	e.Strings(2, p.BlockIDs)
	e.Message(3, &p.Paging)
	return e.Bytes()
}

func (p *ClientBlockListRequestPayload) Unmarshal(b []byte) error {
	*p = ClientBlockListRequestPayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			p.HeadID, err = f.String()
		case 2:
			err = f.AppendString(&p.BlockIDs)
		case 3:
			err = f.Message(&p.Paging)
		}
		return err
	})
}

// ClientBlockListResponse: status = 1, blocks = 2, head_id = 3.
type ClientBlockListResponsePayload struct {
	Status Status
	Blocks []*types.Block
	HeadID string
}

func (p *ClientBlockListResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	for _, block := range p.Blocks {
		e.Message(2, block)
	}
	e.String(3, p.HeadID)
	return e.Bytes()
}

func (p *ClientBlockListResponsePayload) Unmarshal(b []byte) error {
	*p = ClientBlockListResponsePayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			err = readStatus(f, &p.Status)
		case 2:
			block := new(types.Block)
			if err = f.Message(block); err == nil {
				p.Blocks = append(p.Blocks, block)
			}
		case 3:
			p.HeadID, err = f.String()
		}
		return err
	})
}

// ClientBlockGetByIdRequest: block_id = 1.
type ClientBlockGetByIDRequestPayload struct {
	BlockID string
}

func (p *ClientBlockGetByIDRequestPayload) Marshal() ([]byte, error) {
	return marshalString(p.BlockID)
}

func (p *ClientBlockGetByIDRequestPayload) Unmarshal(b []byte) error {
	return unmarshalString(b, &p.BlockID)
}

// ClientBlockGetByNumRequest: block_num = 1.
type ClientBlockGetByNumRequestPayload struct {
	BlockNum uint64
}

func (p *ClientBlockGetByNumRequestPayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Uint64(1, p.BlockNum)
	return e.Bytes()
}

func (p *ClientBlockGetByNumRequestPayload) Unmarshal(b []byte) error {
	*p = ClientBlockGetByNumRequestPayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		if f.Num == 1 {
			p.BlockNum, err = f.Uint64()
		}
		return err
	})
}

// ClientBlockGetByTransactionIdRequest: transaction_id = 1.
type ClientBlockGetByTransactionIDRequestPayload struct {
	TransactionID string
}

func (p *ClientBlockGetByTransactionIDRequestPayload) Marshal() ([]byte, error) {
	return marshalString(p.TransactionID)
}

func (p *ClientBlockGetByTransactionIDRequestPayload) Unmarshal(b []byte) error {
	return unmarshalString(b, &p.TransactionID)
}

// ClientBlockGetResponse: status = 1, block = 2.
type ClientBlockGetResponsePayload struct {
	Status Status
	Block  *types.Block
}

func (p *ClientBlockGetResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	if p.Block != nil {
		e.Message(2, p.Block)
	}
	return e.Bytes()
}

func (p *ClientBlockGetResponsePayload) Unmarshal(b []byte) error {
	*p = ClientBlockGetResponsePayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			err = readStatus(f, &p.Status)
		case 2:
			p.Block = new(types.Block)
			err = f.Message(p.Block)
		}
		return err
	})
}

// ClientTransactionGetRequest: transaction_id = 1.
type ClientTransactionGetRequestPayload struct {
	TransactionID string
}

func (p *ClientTransactionGetRequestPayload) Marshal() ([]byte, error) {
	return marshalString(p.TransactionID)
}

func (p *ClientTransactionGetRequestPayload) Unmarshal(b []byte) error {
	return unmarshalString(b, &p.TransactionID)
}

// ClientTransactionGetResponse: status = 1, transaction = 2.
type ClientTransactionGetResponsePayload struct {
	Status      Status
	Transaction *types.Transaction
}

func (p *ClientTransactionGetResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	if p.Transaction != nil {
		e.Message(2, p.Transaction)
	}
	return e.Bytes()
}

func (p *ClientTransactionGetResponsePayload) Unmarshal(b []byte) error {
	*p = ClientTransactionGetResponsePayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			err = readStatus(f, &p.Status)
		case 2:
			p.Transaction = new(types.Transaction)
			err = f.Message(p.Transaction)
		}
		return err
	})
}

// ClientReceiptGetRequest: transaction_ids = 1.
type ClientReceiptGetRequestPayload struct {
	TransactionIDs []string
}

func (p *ClientReceiptGetRequestPayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Strings(1, p.TransactionIDs)
	return e.Bytes()
}

func (p *ClientReceiptGetRequestPayload) Unmarshal(b []byte) error {
	*p = ClientReceiptGetRequestPayload{}
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			return f.AppendString(&p.TransactionIDs)
		}
		return nil
	})
}

// ClientReceiptGetResponse: status = 1, receipts = 2.
type ClientReceiptGetResponsePayload struct {
	Status   Status
	Receipts []*types.TransactionReceipt
}

func (p *ClientReceiptGetResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	for _, receipt := range p.Receipts {
		e.Message(2, receipt)
	}
	return e.Bytes()
}

func (p *ClientReceiptGetResponsePayload) Unmarshal(b []byte) error {
	*p = ClientReceiptGetResponsePayload{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			err = readStatus(f, &p.Status)
		case 2:
			receipt := new(types.TransactionReceipt)
			if err = f.Message(receipt); err == nil {
				p.Receipts = append(p.Receipts, receipt)
			}
		}
		return err
	})
}

// ClientPeersGetRequest has no fields.
type ClientPeersGetRequestPayload struct{}

func (*ClientPeersGetRequestPayload) Marshal() ([]byte, error) { return []byte{}, nil }

func (*ClientPeersGetRequestPayload) Unmarshal(b []byte) error { return skipAll(b) }

// ClientPeersGetResponse: status = 1, peers = 2.
type ClientPeersGetResponsePayload struct {
	Status PeersStatus
	Peers  []string
}

func (p *ClientPeersGetResponsePayload) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.Int64(1, int64(p.Status))
	e.Strings(2, p.Peers)
	return e.Bytes()
}

func (p *ClientPeersGetResponsePayload) Unmarshal(b []byte) error {
	*p = ClientPeersGetResponsePayload{}
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			return readStatus(f, &p.Status)
		case 2:
			return f.AppendString(&p.Peers)
		}
		return nil
	})
}

// PingRequest has no fields.
type PingRequestPayload struct{}

func (*PingRequestPayload) Marshal() ([]byte, error) { return []byte{}, nil }

func (*PingRequestPayload) Unmarshal(b []byte) error { return skipAll(b) }

// PingResponse has no fields.
type PingResponsePayload struct{}

func (*PingResponsePayload) Marshal() ([]byte, error) { return []byte{}, nil }

func (*PingResponsePayload) Unmarshal(b []byte) error { return skipAll(b) }

func marshalString(s string) ([]byte, error) {
	var e wire.Encoder
	e.String(1, s)
	return e.Bytes()
}

func unmarshalString(b []byte, s *string) error {
	*s = ""
	return wire.Walk(b, func(f wire.Field) (err error) {
		if f.Num == 1 {
			*s, err = f.String()
		}
		return err
	})
}

func skipAll(b []byte) error {
	return wire.Walk(b, func(wire.Field) error { return nil })
}
