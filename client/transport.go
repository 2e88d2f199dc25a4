package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
)

// Transport carries envelope frames to and from the validator.
// Send may be called concurrently with Recv; Recv has a single caller.
type Transport interface {
	Dial(ctx context.Context) error
	Send(frame []byte) error
	Recv() ([]byte, error)
	Close() error
}

// ZMQTransport is a DEALER socket connected to the validator's ROUTER
// endpoint.
type ZMQTransport struct {
	endpoint string

	mu     sync.Mutex
	socket zmq4.Socket
	cancel context.CancelFunc
}

func NewZMQTransport(endpoint string) *ZMQTransport {
	return &ZMQTransport{endpoint: endpoint}
}

func (t *ZMQTransport) Dial(ctx context.Context) error {
	// The socket outlives the dial context.
	socketCtx, cancel := context.WithCancel(context.Background())
	socket := zmq4.NewDealer(socketCtx, zmq4.WithID(zmq4.SocketIdentity(uuid.NewString())))
	errc := make(chan error, 1)
	go func() { errc <- socket.Dial(t.endpoint) }()
	select {
	case err := <-errc:
		if err != nil {
			cancel()
			socket.Close()
			return err
		}
	case <-ctx.Done():
		cancel()
		socket.Close()
		return ctx.Err()
	}
	t.mu.Lock()
	t.socket, t.cancel = socket, cancel
	t.mu.Unlock()
	return nil
}

func (t *ZMQTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.socket == nil {
		return errNotConnected
	}
	return t.socket.Send(zmq4.NewMsg(frame))
}

func (t *ZMQTransport) Recv() ([]byte, error) {
	t.mu.Lock()
	socket := t.socket
	t.mu.Unlock()
	if socket == nil {
		return nil, errNotConnected
	}
	msg, err := socket.Recv()
	if err != nil {
		return nil, err
	}
	if len(msg.Frames) == 1 {
		return msg.Frames[0], nil
	}
	return bytes.Join(msg.Frames, nil), nil
}

func (t *ZMQTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.socket == nil {
		return nil
	}
	err := t.socket.Close()
	t.cancel()
	t.socket = nil
	return err
}

func (t *ZMQTransport) String() string { return t.endpoint }

var (
	errNotConnected = errors.New("not connected")
	ErrPipeClosed   = errors.New("pipe closed")
)

const pipeBuffer = 128

// Pipe is an in-memory Transport. The test side plays the validator through
// Outbound and Deliver.
type Pipe struct {
	toPeer   chan []byte
	toClient chan []byte
	closed   chan struct{}
	once     sync.Once
}

func NewPipe() *Pipe {
	return &Pipe{
		toPeer:   make(chan []byte, pipeBuffer),
		toClient: make(chan []byte, pipeBuffer),
		closed:   make(chan struct{}),
	}
}

func (p *Pipe) Dial(ctx context.Context) error {
	select {
	case <-p.closed:
		return ErrPipeClosed
	default:
		return nil
	}
}

func (p *Pipe) Send(frame []byte) error {
	select {
	case <-p.closed:
		return ErrPipeClosed
	default:
	}
	select {
	case p.toPeer <- frame:
		return nil
	case <-p.closed:
		return ErrPipeClosed
	}
}

func (p *Pipe) Recv() ([]byte, error) {
	select {
	case frame := <-p.toClient:
		return frame, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// Outbound yields the frames sent by the client.
func (p *Pipe) Outbound() <-chan []byte { return p.toPeer }

// Closed is closed once either side closes the pipe.
func (p *Pipe) Closed() <-chan struct{} { return p.closed }

// Deliver hands frame to the client as if the validator sent it.
func (p *Pipe) Deliver(frame []byte) error {
	select {
	case p.toClient <- frame:
		return nil
	case <-p.closed:
		return ErrPipeClosed
	}
}
