package requests_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "validator said 0xdeadbeef at /var/lib/sawtooth"

func echo(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var s string
	if err := params.Get(0, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func newExecutor(t *testing.T, methods ...requests.Method) *requests.Executor {
	registry, err := requests.NewRegistry(methods)
	require.NoError(t, err)
	return requests.NewExecutor(registry, &requests.Backend{}, log.TestingLogger())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := requests.NewRegistry(
		[]requests.Method{{Name: "eth_a", Handler: echo}},
		[]requests.Method{{Name: "eth_b", Handler: echo}, {Name: "eth_a", Handler: echo}},
	)
	assert.Error(t, err)

	_, err = requests.NewRegistry([]requests.Method{{Name: "eth_nil"}})
	assert.Error(t, err)

	registry, err := requests.NewRegistry(
		[]requests.Method{{Name: "net_version", Handler: echo}},
		[]requests.Method{{Name: "eth_a", Handler: echo}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"eth_a", "net_version"}, registry.Names())
	assert.Equal(t, 2, registry.Len())
}

func TestRunSuccess(t *testing.T) {
	e := newExecutor(t, requests.Method{Name: "test_echo", Handler: echo})
	result, rpcErr := e.Run(context.Background(), "test_echo", json.RawMessage(`["hi"]`))
	require.Nil(t, rpcErr)
	assert.Equal(t, "hi", result)
}

func TestRunUnknownMethod(t *testing.T) {
	e := newExecutor(t)
	_, rpcErr := e.Run(context.Background(), "eth_mystery", nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, requests.CodeMethodNotFound, rpcErr.Code)
}

func TestRunInvalidParams(t *testing.T) {
	e := newExecutor(t, requests.Method{Name: "test_echo", Handler: echo})
	for _, raw := range []string{`{"a":1}`, `[]`, `[1]`, `"x"`} {
		_, rpcErr := e.Run(context.Background(), "test_echo", json.RawMessage(raw))
		require.NotNil(t, rpcErr, raw)
		assert.Equal(t, requests.CodeFailure, rpcErr.Code, raw)
		assert.Equal(t, "Invalid parameters", rpcErr.Message, raw)
	}
}

func TestRunSanitizesFailures(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"summary":   {requests.Fail("Couldn't get balance", errors.New(secret)), "Couldn't get balance"},
		"timeout":   {fmt.Errorf("%w: %s", types.ErrTimeout, secret), "Validator timed out"},
		"transport": {fmt.Errorf("%w: %s", types.ErrTransport, secret), "Validator unavailable"},
		"signing":   {fmt.Errorf("%w: %s", types.ErrSigning, secret), "Signing failed"},
		"locked":    {fmt.Errorf("%w: %s", types.ErrAccountLocked, secret), "Account locked"},
		"filter":    {types.ErrFilterNotFound, "Filter not found"},
		"unknown":   {errors.New(secret), "Internal error"},
		"wrapped":   {fmt.Errorf("outer: %w", requests.Fail("Couldn't send", errors.New(secret))), "Couldn't send"},
	}
	for name, c := range cases {
		err := c.err
		e := newExecutor(t, requests.Method{Name: "test_fail", Handler: func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
			return nil, err
		}})
		result, rpcErr := e.Run(context.Background(), "test_fail", nil)
		assert.Nil(t, result, name)
		require.NotNil(t, rpcErr, name)
		assert.Equal(t, requests.CodeFailure, rpcErr.Code, name)
		assert.Equal(t, c.want, rpcErr.Message, name)

		b, err := json.Marshal(rpcErr)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "deadbeef", name)
		assert.NotContains(t, string(b), "data", name)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	e := newExecutor(t, requests.Method{Name: "test_panic", Handler: func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
		panic(secret)
	}})
	_, rpcErr := e.Run(context.Background(), "test_panic", nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, "Internal error", rpcErr.Message)
}

func TestParams(t *testing.T) {
	params, err := requests.ParseParams(json.RawMessage(`["0x1", null]`))
	require.NoError(t, err)
	assert.Equal(t, 2, params.Len())

	var s string
	require.NoError(t, params.Get(0, &s))
	assert.Equal(t, "0x1", s)

	ok, err := params.Optional(1, &s)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = params.Optional(5, &s)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, params.Get(1, &s), types.ErrValidation)

	var n int
	assert.ErrorIs(t, params.Get(0, &n), types.ErrValidation)

	empty, err := requests.ParseParams(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	built, err := requests.NewParams("a", 2)
	require.NoError(t, err)
	require.NoError(t, built.Get(1, &n))
	assert.Equal(t, 2, n)
}

func TestFailure(t *testing.T) {
	cause := errors.New("boom")
	f := requests.Fail("Couldn't do it", cause)
	assert.ErrorIs(t, f, cause)
	assert.Equal(t, "Couldn't do it: boom", f.Error())
	assert.Equal(t, "Couldn't do it", requests.Summarize(fmt.Errorf("ctx: %w", f)))
}
