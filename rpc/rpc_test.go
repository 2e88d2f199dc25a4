package rpc_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/rpc"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gauge struct {
	active atomic.Int32
	max    atomic.Int32
}

func (g *gauge) enter() {
	n := g.active.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.active.Add(-1) }

func testMethods(g *gauge) []requests.Method {
	return []requests.Method{
		{Name: "test_echo", Handler: func(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
			var s string
			if err := params.Get(0, &s); err != nil {
				return nil, err
			}
			return s, nil
		}},
		{Name: "test_null", Handler: func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
			return nil, nil
		}},
		{Name: "test_secret", Handler: func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
			return nil, fmt.Errorf("%w: key 4c0883a6 rejected", types.ErrValidation)
		}},
		{Name: "test_slow", Handler: func(context.Context, *requests.Backend, requests.Params) (interface{}, error) {
			g.enter()
			defer g.leave()
			time.Sleep(20 * time.Millisecond)
			return true, nil
		}},
	}
}

func newRPC(t *testing.T, config rpc.Config) (*rpc.RPC, *gauge) {
	g := &gauge{}
	registry, err := requests.NewRegistry(testMethods(g))
	require.NoError(t, err)
	logger := log.TestingLogger()
	executor := requests.NewExecutor(registry, &requests.Backend{Logger: logger}, logger)
	return rpc.NewRPC(logger, &config, executor), g
}

func serve(t *testing.T, config rpc.Config) (*httptest.Server, *gauge) {
	r, g := newRPC(t, config)
	server := httptest.NewServer(r.Handler())
	t.Cleanup(server.Close)
	return server, g
}

func post(t *testing.T, url, body string) (int, string) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

func TestSingleCall(t *testing.T) {
	server, _ := serve(t, rpc.DefaultConfig)

	status, body := post(t, server.URL, `{"jsonrpc":"2.0","id":7,"method":"test_echo","params":["hi"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":"hi"}`, body)

	_, body = post(t, server.URL, `{"jsonrpc":"2.0","id":"a","method":"test_null"}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"a","result":null}`, body)
}

func TestErrors(t *testing.T) {
	server, _ := serve(t, rpc.DefaultConfig)

	cases := []struct {
		name, request, response string
	}{
		{"parse", `{"jsonrpc":`, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`},
		{"no method", `{"jsonrpc":"2.0","id":1}`, `{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid request"}}`},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"test_null"}`, `{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid request"}}`},
		{"not an object", `"test_null"`, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid request"}}`},
		{"empty batch", `[]`, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Empty batch"}}`},
		{"unknown method", `{"jsonrpc":"2.0","id":2,"method":"eth_mine"}`, `{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}}`},
		{"sanitized", `{"jsonrpc":"2.0","id":3,"method":"test_secret"}`, `{"jsonrpc":"2.0","id":3,"error":{"code":-32069,"message":"Invalid parameters"}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, body := post(t, server.URL, c.request)
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, c.response, body)
		})
	}
}

func TestBatchKeepsOrder(t *testing.T) {
	server, _ := serve(t, rpc.DefaultConfig)
	_, body := post(t, server.URL, `[
		{"jsonrpc":"2.0","id":1,"method":"test_echo","params":["one"]},
		{"jsonrpc":"2.0","id":2,"method":"eth_mine"},
		{"jsonrpc":"2.0","id":3,"method":"test_echo","params":["three"]}
	]`)
	assert.JSONEq(t, `[
		{"jsonrpc":"2.0","id":1,"result":"one"},
		{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}},
		{"jsonrpc":"2.0","id":3,"result":"three"}
	]`, body)
}

func TestWorkersBoundConcurrency(t *testing.T) {
	config := rpc.DefaultConfig
	config.Workers = 2
	server, g := serve(t, config)

	calls := make([]string, 8)
	for i := range calls {
		calls[i] = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"test_slow"}`, i)
	}
	status, _ := post(t, server.URL, "["+strings.Join(calls, ",")+"]")
	assert.Equal(t, http.StatusOK, status)
	assert.LessOrEqual(t, g.max.Load(), int32(2))
	assert.GreaterOrEqual(t, g.max.Load(), int32(1))
}

func TestRateLimit(t *testing.T) {
	config := rpc.DefaultConfig
	config.RateLimit = 0.001
	config.RateBurst = 1
	server, _ := serve(t, config)

	status, _ := post(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"test_null"}`)
	assert.Equal(t, http.StatusOK, status)
	status, body := post(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"test_null"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32005,"message":"Request rate limit exceeded"}}`, body)
}

func TestMetricsAndHealth(t *testing.T) {
	server, _ := serve(t, rpc.DefaultConfig)
	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	config := rpc.DefaultConfig
	config.Metrics = false
	quiet, _ := serve(t, config)
	resp, err = http.Get(quiet.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartStop(t *testing.T) {
	config := rpc.DefaultConfig
	config.ListenAddress = "127.0.0.1:0"
	r, _ := newRPC(t, config)
	require.NoError(t, r.Start())
	defer r.Stop()

	_, body := post(t, "http://"+r.Addr().String(), `{"jsonrpc":"2.0","id":1,"method":"test_echo","params":["up"]}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":"up"}`, body)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	server, g := serve(t, rpc.DefaultConfig)

	status, body := post(t, server.URL, `{"jsonrpc":"2.0","method":"test_slow"}`)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)
	assert.Equal(t, int32(1), g.max.Load())

	_, body = post(t, server.URL, `[
		{"jsonrpc":"2.0","method":"test_echo","params":["dropped"]},
		{"jsonrpc":"2.0","id":2,"method":"test_echo","params":["kept"]},
		{"jsonrpc":"2.0","method":"eth_mine"}
	]`)
	assert.JSONEq(t, `[{"jsonrpc":"2.0","id":2,"result":"kept"}]`, body)

	status, body = post(t, server.URL, `[{"jsonrpc":"2.0","method":"test_null"},{"jsonrpc":"2.0","method":"test_null"}]`)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	// A null id is still an id.
	_, body = post(t, server.URL, `{"jsonrpc":"2.0","id":null,"method":"test_null"}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"result":null}`, body)
}

func TestRateLimitOnlyCoversCalls(t *testing.T) {
	config := rpc.DefaultConfig
	config.RateLimit = 0.001
	config.RateBurst = 1
	server, _ := serve(t, config)

	status, _ := post(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"test_null"}`)
	assert.Equal(t, http.StatusOK, status)
	for _, path := range []string{"/healthz", "/metrics", "/healthz"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	status, _ = post(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"test_null"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
