package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/sawtooth-seth/rpc/client"
	"github.com/sawtooth-seth/rpc/client/clienttest"
	"github.com/sawtooth-seth/rpc/events"
	"github.com/sawtooth-seth/rpc/messages"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startClient(t *testing.T, transport client.Transport, timeout time.Duration) *client.ValidatorClient {
	c := client.NewValidatorClient(log.TestingLogger(), transport, timeout)
	require.NoError(t, c.Start())
	t.Cleanup(func() {
		if c.IsRunning() {
			c.Stop()
		}
	})
	return c
}

// next reads the next envelope sent by the client.
func next(t *testing.T, pipe *client.Pipe) *messages.Envelope {
	select {
	case frame := <-pipe.Outbound():
		env, err := messages.UnmarshalEnvelope(frame)
		require.NoError(t, err)
		return env
	case <-time.After(time.Second):
		require.FailNow(t, "client sent nothing")
		return nil
	}
}

func reply(t *testing.T, pipe *client.Pipe, to *messages.Envelope, msgType messages.MessageType, payload interface{}) {
	content, err := messages.Encode(payload)
	require.NoError(t, err)
	env := &messages.Envelope{Type: msgType, CorrelationID: to.CorrelationID, Content: content}
	require.NoError(t, pipe.Deliver(env.Marshal()))
}

func TestRequest(t *testing.T) {
	validator := clienttest.NewValidator()
	defer validator.Close()
	clienttest.Handle(validator, messages.ClientStateGetRequest, messages.ClientStateGetResponse,
		func(req *messages.ClientStateGetRequestPayload) *messages.ClientStateGetResponsePayload {
			return &messages.ClientStateGetResponsePayload{Status: messages.StateStatusOK, Value: []byte(req.Address)}
		})
	c := startClient(t, validator.Pipe, time.Second)

	var resp messages.ClientStateGetResponsePayload
	err := c.Request(context.Background(),
		messages.ClientStateGetRequest, &messages.ClientStateGetRequestPayload{Address: "abc"},
		messages.ClientStateGetResponse, &resp)
	require.NoError(t, err)
	assert.Equal(t, messages.StateStatusOK, resp.Status)
	assert.Equal(t, []byte("abc"), resp.Value)
	assert.Zero(t, c.Pending())
}

func TestRequestRejectsWrongReplyType(t *testing.T) {
	validator := clienttest.NewValidator()
	defer validator.Close()
	clienttest.Handle(validator, messages.ClientPeersGetRequest, messages.ClientStateGetResponse,
		func(*messages.ClientPeersGetRequestPayload) *messages.ClientStateGetResponsePayload {
			return &messages.ClientStateGetResponsePayload{}
		})
	c := startClient(t, validator.Pipe, time.Second)

	var resp messages.ClientPeersGetResponsePayload
	err := c.Request(context.Background(),
		messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{},
		messages.ClientPeersGetResponse, &resp)
	assert.Error(t, err)
}

func TestConcurrentSendsGetUniqueIDs(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, time.Second)

	const n = 100
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[h.CorrelationID()] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, ids, n)
	assert.Equal(t, n, c.Pending())
}

func TestOutOfOrderRepliesReachTheirCallers(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, time.Second)

	const n = 20
	handles := make([]*client.Handle, n)
	for i := range handles {
		var err error
		handles[i], err = c.Send(messages.ClientBlockGetByNumRequest, &messages.ClientBlockGetByNumRequestPayload{BlockNum: uint64(i)})
		require.NoError(t, err)
	}
	requests := make([]*messages.Envelope, n)
	for i := range requests {
		requests[i] = next(t, pipe)
	}
	// Answer in reverse, echoing the requested number as the status.
	for i := n - 1; i >= 0; i-- {
		var req messages.ClientBlockGetByNumRequestPayload
		require.NoError(t, messages.Decode(requests[i].Content, &req))
		reply(t, pipe, requests[i], messages.ClientBlockGetResponse,
			&messages.ClientBlockGetResponsePayload{Status: messages.Status(req.BlockNum)})
	}
	for i, h := range handles {
		env, err := c.AwaitReply(context.Background(), h, 0)
		require.NoError(t, err)
		var resp messages.ClientBlockGetResponsePayload
		require.NoError(t, messages.Decode(env.Content, &resp))
		assert.Equal(t, messages.Status(i), resp.Status)
	}
}

func TestTimeoutThenLateReplyIsDiscarded(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, 50*time.Millisecond)

	late, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	require.NoError(t, err)
	lateReq := next(t, pipe)

	_, err = c.AwaitReply(context.Background(), late, 0)
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.Zero(t, c.Pending())

	// The late reply must not reach the next request.
	h, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	require.NoError(t, err)
	req := next(t, pipe)
	reply(t, pipe, lateReq, messages.ClientPeersGetResponse, &messages.ClientPeersGetResponsePayload{Peers: []string{"late"}})
	reply(t, pipe, req, messages.ClientPeersGetResponse, &messages.ClientPeersGetResponsePayload{Peers: []string{"fresh"}})

	env, err := c.AwaitReply(context.Background(), h, time.Second)
	require.NoError(t, err)
	var resp messages.ClientPeersGetResponsePayload
	require.NoError(t, messages.Decode(env.Content, &resp))
	assert.Equal(t, []string{"fresh"}, resp.Peers)
	assert.Zero(t, c.Pending())

	_, err = c.AwaitReply(context.Background(), late, time.Millisecond)
	assert.ErrorIs(t, err, client.ErrAwaited)
}

func TestContextCancel(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, time.Minute)

	h, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.AwaitReply(ctx, h, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.Pending())
}

func TestDisconnectFailsPendingAndLaterSends(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, time.Minute)

	disconnected := make(chan error, 1)
	events.ValidatorDisconnected.Subscribe(t.Name(), func(err error) { disconnected <- err })
	defer events.ValidatorDisconnected.Unsubscribe(t.Name())

	handles := make([]*client.Handle, 3)
	for i := range handles {
		var err error
		handles[i], err = c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
		require.NoError(t, err)
	}
	pipe.Close()

	for _, h := range handles {
		_, err := c.AwaitReply(context.Background(), h, 0)
		assert.ErrorIs(t, err, types.ErrTransport)
	}
	select {
	case err := <-disconnected:
		assert.Error(t, err)
	case <-time.After(time.Second):
		assert.Fail(t, "no disconnect event")
	}

	_, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	assert.ErrorIs(t, err, types.ErrTransport)
}

func TestSendBeforeStart(t *testing.T) {
	c := client.NewValidatorClient(log.NewNopLogger(), client.NewPipe(), time.Second)
	_, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	assert.ErrorIs(t, err, types.ErrTransport)
}

func TestPingIsAnswered(t *testing.T) {
	pipe := client.NewPipe()
	startClient(t, pipe, time.Second)

	ping := &messages.Envelope{Type: messages.PingRequest, CorrelationID: "validator-ping"}
	require.NoError(t, pipe.Deliver(ping.Marshal()))
	pong := next(t, pipe)
	assert.Equal(t, messages.PingResponse, pong.Type)
	assert.Equal(t, "validator-ping", pong.CorrelationID)
}

func TestUnmatchedEnvelopesAreDiscarded(t *testing.T) {
	validator := clienttest.NewValidator()
	defer validator.Close()
	clienttest.Handle(validator, messages.ClientPeersGetRequest, messages.ClientPeersGetResponse,
		func(*messages.ClientPeersGetRequestPayload) *messages.ClientPeersGetResponsePayload {
			return &messages.ClientPeersGetResponsePayload{Peers: []string{"tcp://peer:8800"}}
		})
	c := startClient(t, validator.Pipe, time.Second)

	stray := &messages.Envelope{Type: messages.ClientPeersGetResponse, CorrelationID: "nobody"}
	require.NoError(t, validator.Pipe.Deliver(stray.Marshal()))
	require.NoError(t, validator.Pipe.Deliver([]byte{0xff}))

	var resp messages.ClientPeersGetResponsePayload
	err := c.Request(context.Background(),
		messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{},
		messages.ClientPeersGetResponse, &resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"tcp://peer:8800"}, resp.Peers)
	assert.Equal(t, 1, validator.Received(messages.ClientPeersGetRequest))
}

func TestStopFailsPending(t *testing.T) {
	pipe := client.NewPipe()
	c := startClient(t, pipe, time.Minute)
	h, err := c.Send(messages.ClientPeersGetRequest, &messages.ClientPeersGetRequestPayload{})
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	_, err = c.AwaitReply(context.Background(), h, 0)
	assert.ErrorIs(t, err, types.ErrTransport)
	assert.False(t, errors.Is(err, types.ErrTimeout))
}
