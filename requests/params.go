package requests

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sawtooth-seth/rpc/types"
)

// Params are the positional parameters of a call.
type Params struct {
	raw []json.RawMessage
}

// ParseParams accepts a JSON array, or nothing at all.
func ParseParams(raw json.RawMessage) (Params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Params{}, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return Params{}, fmt.Errorf("%w: params must be an array", types.ErrValidation)
	}
	return Params{raw: list}, nil
}

// NewParams builds params from Go values, for callers outside JSON-RPC.
func NewParams(values ...interface{}) (Params, error) {
	list := make([]json.RawMessage, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return Params{}, err
		}
		list[i] = b
	}
	return Params{raw: list}, nil
}

func (p Params) Len() int { return len(p.raw) }

// Get decodes the parameter at i into v. It must be present.
func (p Params) Get(i int, v interface{}) error {
	ok, err := p.Optional(i, v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing parameter %d", types.ErrValidation, i)
	}
	return nil
}

// Optional decodes the parameter at i into v when present and not null.
func (p Params) Optional(i int, v interface{}) (bool, error) {
	raw := p.Raw(i)
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: parameter %d: %v", types.ErrValidation, i, err)
	}
	return true, nil
}

// Raw returns the parameter at i, nil when absent or null.
func (p Params) Raw(i int) json.RawMessage {
	if i >= len(p.raw) {
		return nil
	}
	raw := bytes.TrimSpace(p.raw[i])
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return raw
}
