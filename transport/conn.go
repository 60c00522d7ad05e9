package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
	ErrConnRefused        = errors.New("connection refused")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
)

// Conn is a bidirectional byte stream.
//
// Read returns [ErrConnClosed] once either side has closed the connection
// and [ErrDeadLineExceeded] when the read deadline passes. The same goes
// for Write.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() Addr
	RemoteAddr() Addr

	// Zero value means no deadline.
	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnListener interface {
	// Accept blocks until a connection arrives, ctx is done or
	// the listener is closed, which yields [ErrConnListenerClosed].
	Accept(ctx context.Context) (Conn, error)
	Close() error
	Addr() Addr
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}
