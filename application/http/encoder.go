package http

import (
	"bytes"
	"strconv"
	"strings"

	"lite-web-server/application/http/status"
	"lite-web-server/application/util/rule"

	"github.com/pkg/errors"
)

// SendFunc hands bytes to the transport.
// It follows the contract of [io.Writer].
type SendFunc func(p []byte) (n int, err error)

func (f SendFunc) Write(p []byte) (n int, err error) { return f(p) }

type EncodeOptions struct {
	// ServerName and ServerVersion are written on the Host header
	// as "Host: <name> <version>".
	ServerName    string
	ServerVersion string

	// MaxHeaderBytes sets the limit of the staging buffer holding
	// status line and headers. Zero means no limit.
	MaxHeaderBytes uint
}

var DefaultEncodeOptions = EncodeOptions{
	ServerName:     "lws",
	ServerVersion:  "1.0.0",
	MaxHeaderBytes: 4096,
}

// Response is what a handler replies with.
type Response struct {
	StatusCode  uint
	ContentType string // omitted when empty.

	// ExtraHeaders is written verbatim after the content type.
	// Multiple lines must be separated by CRLF.
	ExtraHeaders string

	// Close announces that the connection is closed after this response.
	Close bool

	Body []byte

	// Chunked replaces Content-Length with "Transfer-Encoding: chunked".
	// Body is not sent; the caller streams chunks after Encode returns.
	Chunked bool
}

var (
	// ErrNoTransport is a configuration error: there is nothing to send through.
	ErrNoTransport      = errors.New("no transport configured")
	ErrTransportFailure = errors.New("transport failed to send")
	ErrHeaderTooLarge   = errors.New("response header exceeds staging buffer")
)

// TransportError is returned when the transport fails to take bytes.
// It matches [ErrTransportFailure] and unwraps to the transport's error.
type TransportError struct{ cause error }

func (e TransportError) Error() string {
	return ErrTransportFailure.Error() + ": " + e.cause.Error()
}

func (e TransportError) Is(target error) bool { return target == ErrTransportFailure }
func (e TransportError) Unwrap() error        { return e.cause }

type ResponseEncoder struct {
	send SendFunc
	buf  *bytes.Buffer // staging buffer for status line and headers.
	opts EncodeOptions
}

func NewResponseEncoder(send SendFunc, opts EncodeOptions) *ResponseEncoder {
	return &ResponseEncoder{
		send: send,
		buf:  bytes.NewBuffer(make([]byte, 0, opts.MaxHeaderBytes)),
		opts: opts,
	}
}

// Encode writes the status line and headers through the transport,
// then the body if there is any. It returns the number of bytes
// handed to the transport.
func (re *ResponseEncoder) Encode(res Response) (int, error) {
	if re.send == nil {
		return 0, ErrNoTransport
	}

	re.buf.Reset()

	re.encodeStatusLine(res.StatusCode)
	re.writeField("Host", re.opts.ServerName+" "+re.opts.ServerVersion)
	if res.Chunked {
		re.writeField("Transfer-Encoding", "chunked")
	} else {
		re.writeField("Content-Length", strconv.Itoa(len(res.Body)))
	}
	if res.ContentType != "" {
		re.writeField("Content-Type", res.ContentType)
	}
	if extra := strings.TrimRight(res.ExtraHeaders, "\r\n"); extra != "" {
		re.writeLine([]byte(extra))
	}
	if res.Close {
		re.writeField("Connection", "close")
	} else {
		re.writeField("Connection", "keep-alive")
	}
	// Empty line as all the headers are written.
	re.writeLine(nil)

	if limit := re.opts.MaxHeaderBytes; limit > 0 && uint(re.buf.Len()) > limit {
		return 0, errors.Wrapf(ErrHeaderTooLarge, "%d > %d", re.buf.Len(), limit)
	}

	n, err := re.Send(re.buf.Bytes())
	if err != nil {
		return 0, errors.Wrap(err, "sending header")
	}
	re.buf.Reset()

	if !res.Chunked && len(res.Body) > 0 {
		nn, err := re.Send(res.Body)
		n += nn
		if err != nil {
			return n, errors.Wrap(err, "sending body")
		}
	}

	return n, nil
}

// Send passes p to the transport as is.
func (re *ResponseEncoder) Send(p []byte) (int, error) {
	if re.send == nil {
		return 0, ErrNoTransport
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := re.send(p)
	if err != nil {
		return n, TransportError{cause: err}
	}
	if n <= 0 {
		return n, errors.Wrapf(ErrTransportFailure, "sent %d bytes", n)
	}

	return n, nil
}

func (re *ResponseEncoder) encodeStatusLine(code uint) {
	re.buf.WriteString(Proto)
	re.buf.WriteByte(rule.SP)
	re.buf.WriteString(strconv.FormatUint(uint64(code), 10))
	re.buf.WriteByte(rule.SP)
	re.buf.WriteString(status.Reason(code))
	re.buf.Write(rule.CRLF)
}

func (re *ResponseEncoder) writeField(name, value string) {
	re.buf.WriteString(name)
	re.buf.WriteString(": ")
	re.buf.WriteString(value)
	re.buf.Write(rule.CRLF)
}

func (re *ResponseEncoder) writeLine(line []byte) {
	re.buf.Write(line)
	re.buf.Write(rule.CRLF)
}
