package messages

import (
	"errors"
	"fmt"

	"github.com/sawtooth-seth/rpc/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope field numbers, shared with the validator's Message schema.
const (
	fieldMessageType   protowire.Number = 1
	fieldCorrelationID protowire.Number = 2
	fieldContent       protowire.Number = 3
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope is the unit exchanged with the validator.
type Envelope struct {
	Type          MessageType
	CorrelationID string
	Content       []byte
}

// Marshal encodes the envelope in protobuf wire format. Zero fields are
// omitted, as proto3 does.
func (e *Envelope) Marshal() []byte {
	var b []byte
	if e.Type != Default {
		b = protowire.AppendTag(b, fieldMessageType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Type))
	}
	if e.CorrelationID != "" {
		b = protowire.AppendTag(b, fieldCorrelationID, protowire.BytesType)
		b = protowire.AppendString(b, e.CorrelationID)
	}
	if len(e.Content) > 0 {
		b = protowire.AppendTag(b, fieldContent, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Content)
	}
	return b
}

// UnmarshalEnvelope decodes an envelope, skipping unknown fields.
func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	e := new(Envelope)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldMessageType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: message type: %v", ErrMalformedEnvelope, protowire.ParseError(n))
			}
			e.Type = MessageType(v)
			b = b[n:]
		case num == fieldCorrelationID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: correlation id: %v", ErrMalformedEnvelope, protowire.ParseError(n))
			}
			e.CorrelationID = v
			b = b[n:]
		case num == fieldContent && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: content: %v", ErrMalformedEnvelope, protowire.ParseError(n))
			}
			e.Content = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformedEnvelope, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return e, nil
}

// Encode serializes a payload for an envelope's content. Payloads are the
// records of this package and types, anything else is rejected.
func Encode(payload interface{}) ([]byte, error) {
	m, ok := payload.(wire.Message)
	if !ok {
		return nil, fmt.Errorf("%T has no protobuf layout", payload)
	}
	return m.Marshal()
}

// Decode deserializes an envelope's content into payload.
func Decode(content []byte, payload interface{}) error {
	m, ok := payload.(wire.Message)
	if !ok {
		return fmt.Errorf("%T has no protobuf layout", payload)
	}
	return m.Unmarshal(content)
}
