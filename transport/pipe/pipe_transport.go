package pipe

import (
	"context"
	"sync"

	"lite-web-server/transport"

	"github.com/benbjohnson/clock"
)

type pipeRequest struct {
	conn     *pipe
	accepted chan struct{}
}

// PipeTransport is a namespace of in-memory listeners.
type PipeTransport struct {
	listeners map[string]*pipeListener
	clock     clock.Clock

	mu sync.Mutex
}

func NewPipeTransport(clock clock.Clock) *PipeTransport {
	return &PipeTransport{
		listeners: make(map[string]*pipeListener),
		clock:     clock,
	}
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

// Dial connects to the listener on addr.
// It returns [transport.ErrNetUnreachable] if nothing listens there.
func (pt *PipeTransport) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[addr.String()]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	p1, p2 := NewPair("dialer", addr.String(), pt.clock)

	req := pipeRequest{
		conn:     p2,
		accepted: make(chan struct{}, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	// Accept signals right after taking the request.
	<-req.accepted

	return p1, nil
}

func (pt *PipeTransport) Listen(addr Addr) (transport.ConnListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr.String()]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	pl := newPipeListener(addr, pt)
	pt.listeners[addr.String()] = pl

	return pl, nil
}

type pipeListener struct {
	addr Addr

	transport *PipeTransport

	requests chan pipeRequest
	closed   chan struct{}
	once     sync.Once
}

var _ transport.ConnListener = (*pipeListener)(nil)

func newPipeListener(addr Addr, pt *PipeTransport) *pipeListener {
	return &pipeListener{
		addr:      addr,
		transport: pt,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
}

func (pl *pipeListener) Addr() transport.Addr { return pl.addr }

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case request := <-pl.requests:
		request.accepted <- struct{}{}
		return request.conn, nil
	}
}

func (pl *pipeListener) Close() error {
	err := transport.ErrConnListenerClosed
	pl.once.Do(func() {
		close(pl.closed)

		pl.transport.mu.Lock()
		delete(pl.transport.listeners, pl.addr.String())
		pl.transport.mu.Unlock()

		err = nil
	})

	return err
}
