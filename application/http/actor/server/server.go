package server

import (
	"context"
	"log/slog"
	"sync"

	"lite-web-server/application/http"
	"lite-web-server/application/http/status"
	"lite-web-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	ErrMessageTooLarge     = errors.New("request exceeds maximum message size")
	ErrHeaderBlockTooLarge = errors.New("request header block exceeds maximum message size")
)

// Server accepts connections and serves each of them on its own goroutine.
type Server struct {
	l transport.ConnListener

	cancel func()
	done   chan struct{}
	wg     sync.WaitGroup

	logger *slog.Logger
	opts   Options

	dispatcher *Dispatcher
	clock      clock.Clock
}

func New(
	l transport.ConnListener,
	dispatcher *Dispatcher,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Server {
	return &Server{
		l:          l,
		logger:     logger,
		opts:       opts.withDefaults(),
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Start begins accepting connections.
// The server stops when ctx is done or Close is called.
func (s *Server) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("server started", "addr", s.l.Addr())

	go func() {
		defer close(s.done)
		for {
			conn, err := s.acceptConn(ctx)
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled),
					errors.Is(err, transport.ErrConnListenerClosed):
				default:
					s.logger.Error(
						"unexpected error when accepting connection",
						"error", err.Error(),
					)
				}
				cancel()
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				conn.start(ctx)
			}()
		}
	}()
}

func (s *Server) acceptConn(ctx context.Context) (*conn, error) {
	con, err := s.l.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listening for connection")
	}

	logger := s.logger.With("conn", con.RemoteAddr().String())
	logger.Debug("connection accepted")

	return &conn{
		con:     con,
		session: NewSession(http.SendFunc(con.Write), con.RemoteAddr(), s.dispatcher, logger, s.opts),
		logger:  logger,
		clock:   s.clock,
		opts:    s.opts,
	}, nil
}

// Close stops accepting, wakes up idle connections and waits for them to end.
func (s *Server) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.wg.Wait()

	if err := s.l.Close(); err != nil && !errors.Is(err, transport.ErrConnListenerClosed) {
		return errors.Wrap(err, "closing listener")
	}

	s.logger.Info("server stopped")
	return nil
}

type conn struct {
	con     transport.Conn
	session *Session

	clock  clock.Clock
	logger *slog.Logger
	opts   Options
}

func (c *conn) start(ctx context.Context) {
	defer func() {
		c.logger.Debug("closing connection")
		if err := c.con.Close(); err != nil {
			c.logger.Error("error when closing connection", "error", err)
		}
	}()

	// Wake up a pending read as soon as the server shuts down.
	stop := context.AfterFunc(ctx, func() {
		c.con.SetReadDeadLine(c.clock.Now())
	})
	defer stop()

	err := c.serve(ctx)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		// no-op.
	case errors.Is(err, transport.ErrConnClosed):
		c.logger.Debug("connection closed by peer")
	case errors.Is(err, http.ErrMalformed):
		c.logger.Warn("malformed request", "error", err)
	case errors.Is(err, http.ErrTooManyHeaders),
		errors.Is(err, ErrLengthRequired),
		errors.Is(err, ErrVersionNotSupported),
		errors.Is(err, ErrHeaderBlockTooLarge),
		errors.Is(err, ErrMessageTooLarge):
		c.logger.Warn("request rejected", "error", err)
	default:
		c.logger.Error("unknown error occured", "error", err)
	}
}

// serve reads requests until the session stops keeping the connection alive.
// Bytes are accumulated until they make up a whole request.
func (c *conn) serve(ctx context.Context) error {
	buf := make([]byte, 0, c.opts.ReadSize)
	chunk := make([]byte, c.opts.ReadSize)

	for {
		if err := c.waitForRequest(ctx, chunk, &buf); err != nil {
			return err
		}

		for len(buf) > 0 {
			n, err := c.session.OnReceive(ctx, buf)
			if errors.Is(err, http.ErrIncomplete) {
				break
			}
			if err != nil {
				return err
			}
			if !c.session.KeepAlive() {
				return nil
			}

			// The request is done with; keep what came after it.
			buf = buf[:copy(buf, buf[n:])]
		}

		if uint(len(buf)) > c.opts.MaxMessageSize {
			return c.rejectTooLarge(ctx, buf)
		}
	}
}

// waitForRequest appends the next bytes from the connection to buf.
// Expired polls are retried until ctx is done.
func (c *conn) waitForRequest(ctx context.Context, chunk []byte, buf *[]byte) error {
	for {
		c.con.SetReadDeadLine(c.clock.Now().Add(c.opts.PollInterval))
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.con.Read(chunk)
		if err != nil {
			if errors.Is(err, transport.ErrDeadLineExceeded) {
				continue
			}
			return errors.Wrap(err, "reading request")
		}
		if n == 0 {
			// Zero-byte read means the peer is gone.
			return transport.ErrConnClosed
		}

		*buf = append(*buf, chunk[:n]...)
		return nil
	}
}

// rejectTooLarge answers 431 while the header block is still open and 413
// once only the body is missing.
func (c *conn) rejectTooLarge(ctx context.Context, buf []byte) error {
	st, cause := status.PayloadTooLarge, ErrMessageTooLarge
	if http.HeaderBlockLength(buf) == http.Incomplete {
		st, cause = status.RequestHeaderFieldsTooLarge, ErrHeaderBlockTooLarge
	}

	hctx := newHandleContext(ctx, c.con.RemoteAddr(), c.session.enc, c.logger, true)
	if err := hctx.RespondHeader(st.Code); err != nil {
		return errors.Wrapf(err, "replying %d", st.Code)
	}

	return errors.Wrapf(cause, "%d > %d", len(buf), c.opts.MaxMessageSize)
}
