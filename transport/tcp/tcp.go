// Package tcp adapts the operating system's TCP sockets to [transport.Conn].
package tcp

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"lite-web-server/transport"

	"github.com/pkg/errors"
)

// Listen binds every interface on port. Port 0 picks an ephemeral one.
func Listen(port uint16) (*Listener, error) {
	return ListenAddr(net.JoinHostPort("", strconv.FormatUint(uint64(port), 10)))
}

// ListenAddr binds address in "host:port" form.
func ListenAddr(address string) (*Listener, error) {
	ln, err := net.Listen(string(transport.TCP), address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, errors.Wrap(transport.ErrAddrAlreadyInUse, address)
		}
		return nil, errors.Wrapf(err, "listening on %s", address)
	}

	return &Listener{ln: ln.(*net.TCPListener)}, nil
}

type Listener struct {
	ln *net.TCPListener

	mu sync.Mutex // serializes Accept so deadlines set for one call don't leak into another.
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() transport.Addr { return l.ln.Addr() }

// Accept waits for the next connection.
// Cancelling ctx interrupts the wait.
func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	woken := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(woken)
		// Wake up the blocking accept.
		_ = l.ln.SetDeadline(time.Unix(1, 0))
	})
	defer func() {
		if !stop() {
			<-woken
			_ = l.ln.SetDeadline(time.Time{})
		}
	}()

	c, err := l.ln.AcceptTCP()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, transport.ErrConnListenerClosed
		}
		return nil, errors.Wrap(err, "accepting connection")
	}

	if ctx.Err() != nil {
		// Accepted while being cancelled.
		c.Close()
		return nil, ctx.Err()
	}

	return newConn(c), nil
}

func (l *Listener) Close() error {
	if err := l.ln.Close(); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return transport.ErrConnListenerClosed
		}
		return errors.Wrap(err, "closing listener")
	}
	return nil
}

type Dialer struct {
	d net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	c, err := d.d.DialContext(ctx, string(transport.TCP), addr.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		switch {
		case errors.Is(err, syscall.ECONNREFUSED):
			return nil, errors.Wrap(transport.ErrConnRefused, addr.String())
		case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
			return nil, errors.Wrap(transport.ErrNetUnreachable, addr.String())
		}
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	return newConn(c.(*net.TCPConn)), nil
}

type conn struct {
	c *net.TCPConn

	once     sync.Once
	closeErr error
}

var _ transport.Conn = (*conn)(nil)

func newConn(c *net.TCPConn) *conn {
	return &conn{c: c}
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.c.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.c.Write(p)
	return n, convertErr(err)
}

func (c *conn) Close() error {
	c.once.Do(func() {
		if err := c.c.Close(); err != nil {
			c.closeErr = errors.Wrap(err, "closing connection")
		}
	})
	return c.closeErr
}

func (c *conn) LocalAddr() transport.Addr  { return c.c.LocalAddr() }
func (c *conn) RemoteAddr() transport.Addr { return c.c.RemoteAddr() }

func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.c.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.c.SetWriteDeadline(t) }

// convertErr maps socket errors onto the transport ones.
func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	case errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	}
	return err
}
