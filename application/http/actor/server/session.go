package server

import (
	"bytes"
	"context"
	"log/slog"

	"lite-web-server/application/http"
	"lite-web-server/application/http/status"
	"lite-web-server/transport"

	"github.com/pkg/errors"
)

var (
	ErrLengthRequired      = errors.New("request body length is unknown")
	ErrVersionNotSupported = errors.New("http version not supported")
)

// Session is the per connection state between reads.
// It is not safe for concurrent use.
type Session struct {
	remoteAddr transport.Addr

	enc        *http.ResponseEncoder
	dispatcher *Dispatcher
	logger     *slog.Logger
	parseOpts  http.ParseOptions

	keepAlive bool
}

func NewSession(
	send http.SendFunc,
	remoteAddr transport.Addr,
	dispatcher *Dispatcher,
	logger *slog.Logger,
	opts Options,
) *Session {
	return &Session{
		remoteAddr: remoteAddr,
		enc:        http.NewResponseEncoder(send, opts.Encode),
		dispatcher: dispatcher,
		logger:     logger,
		parseOpts:  opts.Parse,
		keepAlive:  true,
	}
}

// KeepAlive reports whether the connection should be kept
// after the last request.
func (s *Session) KeepAlive() bool { return s.keepAlive }

// OnReceive handles the request at the start of buf and returns
// the number of bytes it took.
//
// [http.ErrIncomplete] means buf holds only a part of the request and
// should be retried with more bytes. Any other error ends the connection.
// A request for an unregistered path is answered 404 and is not an error.
func (s *Session) OnReceive(ctx context.Context, buf []byte) (int, error) {
	request, err := http.ParseRequest(buf, s.parseOpts)
	switch {
	case errors.Is(err, http.ErrIncomplete):
		return 0, err
	case errors.Is(err, http.ErrTooManyHeaders):
		return 0, s.reject(ctx, status.RequestHeaderFieldsTooLarge, err)
	case err != nil:
		s.keepAlive = false
		return 0, errors.Wrap(err, "parsing request")
	}

	if ver, err := request.Version(); err != nil || ver.Major != 1 {
		return 0, s.reject(ctx, status.HTTPVersionNotSupported,
			errors.Wrapf(ErrVersionNotSupported, "%q", request.Bytes(request.Proto)))
	}

	// A body without Content-Length is whatever has been buffered so far.
	n := len(buf)
	if request.BodyLength != http.Unbounded {
		if !request.Complete() {
			return 0, http.ErrIncomplete
		}
		n = int(request.Length)
	} else if _, ok := request.Header("Transfer-Encoding"); ok {
		// Chunked request bodies are not decoded.
		return 0, s.reject(ctx, status.LengthRequired,
			errors.Wrapf(ErrLengthRequired, "%s with Transfer-Encoding", request.Bytes(request.Method)))
	}

	if v, ok := request.Header("Connection"); ok && bytes.EqualFold(bytes.TrimSpace(v), []byte("close")) {
		s.keepAlive = false
	}

	s.logger.Debug("request received", "request", request)

	hctx := newHandleContext(ctx, s.remoteAddr, s.enc, s.logger, !s.keepAlive)
	err = s.dispatcher.Dispatch(hctx, request)
	if !hctx.KeepAlive() {
		s.keepAlive = false
	}

	switch {
	case err == nil:
	case errors.Is(err, http.ErrTransportFailure), errors.Is(err, http.ErrNoTransport):
		s.keepAlive = false
		return n, err
	case errors.Is(err, ErrNotFound):
		s.logger.Info("not found", "uri", string(request.Bytes(request.URI)))
	default:
		s.logger.Error("handler failed", "uri", string(request.Bytes(request.URI)), "error", err)
	}

	return n, nil
}

// reject answers a request that cannot be served and closes the connection.
func (s *Session) reject(ctx context.Context, st status.Status, cause error) error {
	s.keepAlive = false

	hctx := newHandleContext(ctx, s.remoteAddr, s.enc, s.logger, true)
	if err := hctx.RespondHeader(st.Code); err != nil {
		return errors.Wrapf(err, "replying %d to %s", st.Code, cause)
	}

	return cause
}
