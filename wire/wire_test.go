package wire_test

import (
	"testing"

	"github.com/sawtooth-seth/rpc/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair is { string name = 1; uint64 count = 2; pair inner = 3; }.
type pair struct {
	Name  string
	Count uint64
	Inner *pair
}

func (p *pair) Marshal() ([]byte, error) {
	var e wire.Encoder
	e.String(1, p.Name)
	e.Uint64(2, p.Count)
	if p.Inner != nil {
		e.Message(3, p.Inner)
	}
	return e.Bytes()
}

func (p *pair) Unmarshal(b []byte) error {
	*p = pair{}
	return wire.Walk(b, func(f wire.Field) (err error) {
		switch f.Num {
		case 1:
			p.Name, err = f.String()
		case 2:
			p.Count, err = f.Uint64()
		case 3:
			p.Inner = new(pair)
			err = f.Message(p.Inner)
		}
		return err
	})
}

func TestEncoderLayout(t *testing.T) {
	b, err := (&pair{Name: "a", Count: 300}).Marshal()
	require.NoError(t, err)
	// tag 1 bytes, len 1, 'a'; tag 2 varint, 300 as 0xac 0x02.
	assert.Equal(t, []byte{0x0a, 0x01, 'a', 0x10, 0xac, 0x02}, b)

	b, err = (&pair{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, b)

	// An empty nested message is still present.
	b, err = (&pair{Inner: &pair{}}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1a, 0x00}, b)
}

func TestWalkSkipsUnknownFields(t *testing.T) {
	// field 9 as fixed64, then field 1.
	b := []byte{0x49, 1, 2, 3, 4, 5, 6, 7, 8, 0x0a, 0x01, 'z'}
	var p pair
	require.NoError(t, p.Unmarshal(b))
	assert.Equal(t, "z", p.Name)

	var nested pair
	require.NoError(t, nested.Unmarshal([]byte{0x1a, 0x00}))
	assert.NotNil(t, nested.Inner)
}

func TestWalkRejectsMalformedInput(t *testing.T) {
	var p pair
	assert.ErrorIs(t, p.Unmarshal([]byte{0x0a, 0x05, 'a'}), wire.ErrMalformed)
	// field 1 sent as a varint.
	assert.ErrorIs(t, p.Unmarshal([]byte{0x08, 0x01}), wire.ErrMalformed)
}
