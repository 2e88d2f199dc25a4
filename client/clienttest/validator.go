// Package clienttest provides a scripted validator for exercising the
// validator client and everything built on it.
package clienttest

import (
	"sync"

	"github.com/sawtooth-seth/rpc/client"
	"github.com/sawtooth-seth/rpc/messages"
)

type responder func(env *messages.Envelope) (*messages.Envelope, bool)

// Validator answers requests arriving on a client.Pipe. Requests without a
// registered handler are recorded and left unanswered.
type Validator struct {
	Pipe *client.Pipe

	mu       sync.Mutex
	handlers map[messages.MessageType]responder
	received map[messages.MessageType]int

	wg sync.WaitGroup
}

// NewValidator starts a validator serving pipe until it is closed.
func NewValidator() *Validator {
	v := &Validator{
		Pipe:     client.NewPipe(),
		handlers: make(map[messages.MessageType]responder),
		received: make(map[messages.MessageType]int),
	}
	v.wg.Add(1)
	go v.serve()
	return v
}

// Handle registers fn to answer reqType requests with respType replies.
// A nil reply from fn leaves the request unanswered.
func Handle[Req, Resp any](v *Validator, reqType, respType messages.MessageType, fn func(req *Req) *Resp) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handlers[reqType] = func(env *messages.Envelope) (*messages.Envelope, bool) {
		req := new(Req)
		if err := messages.Decode(env.Content, req); err != nil {
			return nil, false
		}
		resp := fn(req)
		if resp == nil {
			return nil, false
		}
		content, err := messages.Encode(resp)
		if err != nil {
			return nil, false
		}
		return &messages.Envelope{Type: respType, CorrelationID: env.CorrelationID, Content: content}, true
	}
}

// Received returns how many reqType requests arrived so far.
func (v *Validator) Received(reqType messages.MessageType) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.received[reqType]
}

// Close drops the connection, as a crashed validator would.
func (v *Validator) Close() {
	v.Pipe.Close()
	v.wg.Wait()
}

func (v *Validator) serve() {
	defer v.wg.Done()
	for {
		select {
		case frame := <-v.Pipe.Outbound():
			env, err := messages.UnmarshalEnvelope(frame)
			if err != nil {
				continue
			}
			v.mu.Lock()
			v.received[env.Type]++
			handler := v.handlers[env.Type]
			v.mu.Unlock()
			if handler == nil {
				continue
			}
			if reply, ok := handler(env); ok {
				if v.Pipe.Deliver(reply.Marshal()) != nil {
					return
				}
			}
		case <-v.Pipe.Closed():
			return
		}
	}
}
