package server

import (
	"context"
	"io"
	"log/slog"

	"lite-web-server/application/http"
	"lite-web-server/application/http/status"
	"lite-web-server/application/http/transfer"
	"lite-web-server/transport"

	"github.com/pkg/errors"
)

// Event tells a handler why it is called.
type Event int

const (
	EventHTTPRequest Event = 100
	EventHTTPReply   Event = 101
	EventHTTPChunk   Event = 102
	EventSSICall     Event = 105
)

func (e Event) String() string {
	switch e {
	case EventHTTPRequest:
		return "http-request"
	case EventHTTPReply:
		return "http-reply"
	case EventHTTPChunk:
		return "http-chunk"
	case EventSSICall:
		return "ssi-call"
	}
	return "unknown"
}

// Handler serves requests for a registered path.
// It replies through the context; the returned error is only logged.
type Handler interface {
	Handle(c *HandleContext, ev Event, request *http.Message) error
}

type HandlerFunc func(c *HandleContext, ev Event, request *http.Message) error

func (f HandlerFunc) Handle(c *HandleContext, ev Event, request *http.Message) error {
	return f(c, ev, request)
}

var (
	ErrAlreadyReplied = errors.New("response is already sent")
	ErrNoReply        = errors.New("handler did not reply")
)

type HandleContext struct {
	ctx context.Context

	remoteAddr transport.Addr
	enc        *http.ResponseEncoder
	logger     *slog.Logger

	closeConn bool
	replied   bool
	sent      int

	chunks *ChunkWriter
}

func newHandleContext(
	ctx context.Context,
	remoteAddr transport.Addr,
	enc *http.ResponseEncoder,
	logger *slog.Logger,
	closeConn bool,
) *HandleContext {
	return &HandleContext{
		ctx:        ctx,
		remoteAddr: remoteAddr,
		enc:        enc,
		logger:     logger,
		closeConn:  closeConn,
	}
}

func (c *HandleContext) doHandle(h Handler, ev Event, request *http.Message) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("handler panicked: %v", e)
		}
		if c.chunks != nil && !c.chunks.closed {
			// Nothing can follow a body that was never ended.
			c.logger.Warn("chunked body left open")
			c.closeConn = true
		}
	}()

	if err := h.Handle(c, ev, request); err != nil {
		return err
	}

	if !c.replied {
		return ErrNoReply
	}

	return nil
}

func (c *HandleContext) Context() context.Context  { return c.ctx }
func (c *HandleContext) RemoteAddr() transport.Addr { return c.remoteAddr }
func (c *HandleContext) Logger() *slog.Logger       { return c.logger }

// Close makes the connection close after the reply.
// It has to be called before replying to show up on the reply's headers.
func (c *HandleContext) Close() { c.closeConn = true }

// KeepAlive reports whether the connection stays open after the reply.
func (c *HandleContext) KeepAlive() bool { return !c.closeConn }

// Replied reports whether a response has been sent.
func (c *HandleContext) Replied() bool { return c.replied }

// Sent returns the number of bytes handed to the transport.
func (c *HandleContext) Sent() int { return c.sent }

// Reply sends res. Only one reply is allowed per request.
func (c *HandleContext) Reply(res http.Response) error {
	if c.replied {
		return ErrAlreadyReplied
	}
	c.replied = true

	if res.Close {
		c.closeConn = true
	}
	res.Close = c.closeConn

	n, err := c.enc.Encode(res)
	c.sent += n
	if err != nil {
		// Half sent response cannot be followed by another one.
		c.closeConn = true
		return errors.Wrap(err, "sending response")
	}

	c.logger.Debug("response sent",
		"status", res.StatusCode,
		"reason", status.Reason(res.StatusCode),
		"bytes", n,
	)

	return nil
}

// Respond sends a response with body.
func (c *HandleContext) Respond(code uint, contentType string, body []byte) error {
	return c.Reply(http.Response{
		StatusCode:  code,
		ContentType: contentType,
		Body:        body,
	})
}

// RespondHeader sends a response with an empty html body.
func (c *HandleContext) RespondHeader(code uint) error {
	return c.Respond(code, http.ContentTypeHTML, nil)
}

// RespondChunked sends the header of a chunked response.
// The body is streamed through the returned writer, one chunk per write.
// Closing it ends the body; a handler that returns without closing it
// gets its connection closed.
func (c *HandleContext) RespondChunked(code uint, contentType string) (*ChunkWriter, error) {
	if err := c.Reply(http.Response{
		StatusCode:  code,
		ContentType: contentType,
		Chunked:     true,
	}); err != nil {
		return nil, err
	}

	c.chunks = &ChunkWriter{
		cw:  transfer.NewChunkedWriter(http.SendFunc(c.countingSend)),
		ctx: c,
	}
	return c.chunks, nil
}

func (c *HandleContext) countingSend(p []byte) (int, error) {
	n, err := c.enc.Send(p)
	c.sent += n
	if err != nil {
		c.closeConn = true
	}
	return n, err
}

// ChunkWriter streams the body of a chunked response.
type ChunkWriter struct {
	cw     *transfer.ChunkedWriter
	ctx    *HandleContext
	closed bool
}

var _ io.WriteCloser = (*ChunkWriter)(nil)

// SetExtensions attaches chunk extensions to the next chunk written,
// the last chunk included.
func (w *ChunkWriter) SetExtensions(extensions [][2]string) { w.cw.SetExtensions(extensions) }

func (w *ChunkWriter) Write(p []byte) (int, error) {
	n, err := w.cw.Write(p)
	if err != nil {
		return n, err
	}

	w.ctx.logger.Debug("chunk sent", "event", EventHTTPChunk, "bytes", n)
	return n, nil
}

func (w *ChunkWriter) Close() error {
	w.closed = true
	return w.cw.Close()
}
