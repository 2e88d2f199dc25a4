package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/libs/service"
	"github.com/google/uuid"
	"github.com/sawtooth-seth/rpc/events"
	"github.com/sawtooth-seth/rpc/messages"
	"github.com/sawtooth-seth/rpc/types"
)

const DefaultTimeout = 10 * time.Second

var (
	ErrAwaited = errors.New("reply already awaited")
	errStopped = errors.New("client stopped")
)

type result struct {
	env *messages.Envelope
	err error
}

// slot receives exactly one result: whoever removes it from the pending
// table owns the send.
type slot struct {
	ch chan result
}

// Handle identifies a request sent with Send.
type Handle struct {
	id      string
	msgType messages.MessageType
	slot    *slot
	awaited atomic.Bool
}

func (h *Handle) CorrelationID() string { return h.id }

// ValidatorClient multiplexes concurrent requests over a single validator
// connection. A *ValidatorClient is shared by pointer; copies of the pointer
// use the same connection and pending table.
type ValidatorClient struct {
	service.BaseService
	transport Transport
	timeout   time.Duration
	metrics   *clientMetrics

	mu      sync.Mutex
	pending map[string]*slot
	// err is the reason the client cannot send, nil while connected.
	err error

	done chan struct{}
}

func NewValidatorClient(logger log.Logger, transport Transport, timeout time.Duration) *ValidatorClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &ValidatorClient{
		transport: transport,
		timeout:   timeout,
		metrics:   newClientMetrics(),
		pending:   make(map[string]*slot),
		err:       errNotConnected,
	}
	c.BaseService = *service.NewBaseService(logger.With("module", "validator"), "ValidatorClient", c)
	return c
}

func (c *ValidatorClient) OnStart() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.transport.Dial(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()

	c.done = make(chan struct{})
	go c.receiveLoop()
	c.Logger.Info("connected to validator")
	events.ValidatorConnected.Send(struct{}{})
	return nil
}

func (c *ValidatorClient) OnStop() {
	c.mu.Lock()
	c.err = errStopped
	c.mu.Unlock()
	if err := c.transport.Close(); err != nil {
		c.Logger.Error("closing validator transport", "err", err)
	}
	if c.done != nil {
		<-c.done
	}
}

// Send transmits payload and returns without waiting for the reply.
func (c *ValidatorClient) Send(msgType messages.MessageType, payload interface{}) (*Handle, error) {
	content, err := messages.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msgType, err)
	}

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	id := uuid.NewString()
	for c.pending[id] != nil {
		id = uuid.NewString()
	}
	s := &slot{ch: make(chan result, 1)}
	c.pending[id] = s
	c.mu.Unlock()
	c.metrics.pending.Inc()

	frame := (&messages.Envelope{Type: msgType, CorrelationID: id, Content: content}).Marshal()
	if err := c.transport.Send(frame); err != nil {
		c.take(id)
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	return &Handle{id: id, msgType: msgType, slot: s}, nil
}

// take removes the slot for id from the pending table. Only the caller that
// gets a non-nil slot may complete it.
func (c *ValidatorClient) take(id string) *slot {
	c.mu.Lock()
	s, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		c.metrics.pending.Dec()
	}
	return s
}

// AwaitReply blocks until the reply for h arrives, timeout elapses (zero
// selects the client default), ctx ends, or the connection drops. A handle
// can be awaited once.
func (c *ValidatorClient) AwaitReply(ctx context.Context, h *Handle, timeout time.Duration) (*messages.Envelope, error) {
	if h.awaited.Swap(true) {
		return nil, ErrAwaited
	}
	if timeout <= 0 {
		timeout = c.timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-h.slot.ch:
		return r.env, r.err
	case <-timer.C:
		if c.take(h.id) != nil {
			return nil, fmt.Errorf("%w: %s after %s", types.ErrTimeout, h.msgType, timeout)
		}
	case <-ctx.Done():
		if c.take(h.id) != nil {
			return nil, ctx.Err()
		}
	}
	// The slot was taken by a delivery first, so its result is on the way.
	r := <-h.slot.ch
	return r.env, r.err
}

// Request sends req and decodes the reply into resp, which must be of
// respType.
func (c *ValidatorClient) Request(ctx context.Context, reqType messages.MessageType, req interface{}, respType messages.MessageType, resp interface{}) (err error) {
	start := time.Now()
	defer func() { c.observe(reqType, start, err) }()

	h, err := c.Send(reqType, req)
	if err != nil {
		return err
	}
	env, err := c.AwaitReply(ctx, h, 0)
	if err != nil {
		return err
	}
	if env.Type != respType {
		return fmt.Errorf("validator answered %s with %s", reqType, env.Type)
	}
	return messages.Decode(env.Content, resp)
}

func (c *ValidatorClient) observe(msgType messages.MessageType, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, types.ErrTimeout):
		outcome = "timeout"
	case errors.Is(err, types.ErrTransport):
		outcome = "transport"
	default:
		outcome = "error"
	}
	c.metrics.requests.WithLabelValues(msgType.String(), outcome).Inc()
	c.metrics.duration.WithLabelValues(msgType.String()).Observe(time.Since(start).Seconds())
}

// Pending returns the number of requests awaiting a reply.
func (c *ValidatorClient) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *ValidatorClient) receiveLoop() {
	defer close(c.done)
	for {
		frame, err := c.transport.Recv()
		if err != nil {
			c.disconnect(err)
			return
		}
		env, err := messages.UnmarshalEnvelope(frame)
		if err != nil {
			c.Logger.Error("dropping undecodable envelope", "err", err)
			c.metrics.unmatched.Inc()
			continue
		}
		if env.Type == messages.PingRequest {
			c.pong(env)
			continue
		}
		s := c.take(env.CorrelationID)
		if s == nil {
			c.Logger.Info("discarding unmatched envelope", "type", env.Type, "correlation_id", env.CorrelationID)
			c.metrics.unmatched.Inc()
			continue
		}
		s.ch <- result{env: env}
	}
}

func (c *ValidatorClient) pong(ping *messages.Envelope) {
	content, _ := messages.Encode(&messages.PingResponsePayload{})
	frame := (&messages.Envelope{Type: messages.PingResponse, CorrelationID: ping.CorrelationID, Content: content}).Marshal()
	if err := c.transport.Send(frame); err != nil {
		c.Logger.Error("answering validator ping", "err", err)
	}
}

// disconnect fails every pending request and refuses new ones.
func (c *ValidatorClient) disconnect(cause error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = cause
	}
	reason := c.err
	pending := c.pending
	c.pending = make(map[string]*slot)
	c.mu.Unlock()

	for _, s := range pending {
		c.metrics.pending.Dec()
		s.ch <- result{err: fmt.Errorf("%w: %v", types.ErrTransport, reason)}
	}
	if errors.Is(reason, errStopped) {
		c.Logger.Info("validator connection closed", "failed_requests", len(pending))
		return
	}
	c.Logger.Error("validator connection lost", "err", cause, "failed_requests", len(pending))
	events.ValidatorDisconnected.Send(cause)
}
