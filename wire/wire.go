// Package wire reads and writes the protobuf wire format the validator
// speaks, field by field. Records describe their own layout through
// Marshal and Unmarshal; this package only knows about tags and values.
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformed = errors.New("malformed protobuf message")

// Message is a record with a protobuf layout.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// Encoder appends fields. Scalar zero values are omitted, as proto3 does.
type Encoder struct {
	b   []byte
	err error
}

// Bytes returns the encoded message, or the first error met while encoding
// a nested message.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.b == nil {
		return []byte{}, nil
	}
	return e.b, nil
}

func (e *Encoder) Uint64(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

// Int64 writes v as a proto3 int64, two's complement for negatives.
func (e *Encoder) Int64(num protowire.Number, v int64) {
	e.Uint64(num, uint64(v))
}

func (e *Encoder) Bool(num protowire.Number, v bool) {
	if v {
		e.Uint64(num, 1)
	}
}

func (e *Encoder) String(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *Encoder) Raw(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

// Strings writes a repeated string field, keeping empty elements.
func (e *Encoder) Strings(num protowire.Number, list []string) {
	for _, s := range list {
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendString(e.b, s)
	}
}

// RawList writes a repeated bytes field, keeping empty elements.
func (e *Encoder) RawList(num protowire.Number, list [][]byte) {
	for _, v := range list {
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendBytes(e.b, v)
	}
}

// Message writes m as a nested message. A nil m is left out, an empty one
// is written so the reader sees it as present.
func (e *Encoder) Message(num protowire.Number, m Message) {
	if m == nil || e.err != nil {
		return
	}
	v, err := m.Marshal()
	if err != nil {
		e.err = err
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

// Field is one decoded field. Only the value matching Type is set.
type Field struct {
	Num  protowire.Number
	Type protowire.Type

	varint uint64
	bytes  []byte
}

func (f Field) mismatch(want protowire.Type) error {
	return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrMalformed, f.Num, f.Type, want)
}

func (f Field) Uint64() (uint64, error) {
	if f.Type != protowire.VarintType {
		return 0, f.mismatch(protowire.VarintType)
	}
	return f.varint, nil
}

func (f Field) Int64() (int64, error) {
	v, err := f.Uint64()
	return int64(v), err
}

func (f Field) Bool() (bool, error) {
	v, err := f.Uint64()
	return v != 0, err
}

func (f Field) String() (string, error) {
	if f.Type != protowire.BytesType {
		return "", f.mismatch(protowire.BytesType)
	}
	return string(f.bytes), nil
}

// Raw returns a copy of a length delimited value.
func (f Field) Raw() ([]byte, error) {
	if f.Type != protowire.BytesType {
		return nil, f.mismatch(protowire.BytesType)
	}
	return append([]byte{}, f.bytes...), nil
}

// AppendString adds one element of a repeated string field to list.
func (f Field) AppendString(list *[]string) error {
	s, err := f.String()
	if err == nil {
		*list = append(*list, s)
	}
	return err
}

// AppendRaw adds one element of a repeated bytes field to list.
func (f Field) AppendRaw(list *[][]byte) error {
	v, err := f.Raw()
	if err == nil {
		*list = append(*list, v)
	}
	return err
}

// Message decodes a nested message into m.
func (f Field) Message(m Message) error {
	if f.Type != protowire.BytesType {
		return f.mismatch(protowire.BytesType)
	}
	return m.Unmarshal(f.bytes)
}

// Walk calls fn for every field of b in order. Fields fn does not know are
// its to ignore; Walk only guarantees each value is well formed.
func Walk(b []byte, fn func(f Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
