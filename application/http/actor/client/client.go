// Package client sends raw requests and reads the responses back
// as parsed messages.
package client

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"

	"lite-web-server/application/http"
	"lite-web-server/application/util/rule"
	"lite-web-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var ErrResponseTooLarge = errors.New("response exceeds maximum message size")

type Client struct {
	dialer transport.ConnDialer
	logger *slog.Logger
	clock  clock.Clock
	opts   Options
}

func New(d transport.ConnDialer, logger *slog.Logger, clock clock.Clock, opts Options) *Client {
	return &Client{
		dialer: d,
		logger: logger,
		clock:  clock,
		opts:   opts.withDefaults(),
	}
}

// Dial opens a connection that requests can be sent over one by one.
func (c *Client) Dial(ctx context.Context, addr transport.Addr) (*Conn, error) {
	con, err := c.dialer.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	return &Conn{
		con:    con,
		host:   addr.String(),
		logger: c.logger.With("conn", addr.String()),
		clock:  c.clock,
		opts:   c.opts,
	}, nil
}

// Get requests path on a new connection that is closed afterwards.
func (c *Client) Get(ctx context.Context, addr transport.Addr, path string) (*http.Message, error) {
	conn, err := c.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.Get(ctx, path)
}

// Conn is a client side connection.
// It is not safe for concurrent use.
type Conn struct {
	con  transport.Conn
	host string

	// bytes received after the last response.
	pending []byte

	logger *slog.Logger
	clock  clock.Clock
	opts   Options
}

func (c *Conn) Close() error { return c.con.Close() }

func (c *Conn) Get(ctx context.Context, path string) (*http.Message, error) {
	request := "GET " + path + " " + http.Proto + "\r\nHost: " + c.host + "\r\n\r\n"
	return c.RoundTrip(ctx, []byte(request))
}

// RoundTrip writes request as is and reads one response.
// The returned message owns its buffer.
func (c *Conn) RoundTrip(ctx context.Context, request []byte) (*http.Message, error) {
	if _, err := c.con.Write(request); err != nil {
		return nil, errors.Wrap(err, "sending request")
	}

	res, err := c.readResponse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	c.logger.Debug("response received", "response", res)
	return res, nil
}

func (c *Conn) readResponse(ctx context.Context) (*http.Message, error) {
	buf := c.pending
	c.pending = nil
	chunk := make([]byte, c.opts.ReadSize)

	for {
		if len(buf) > 0 {
			res, err := http.ParseResponse(buf, c.opts.Parse)
			switch {
			case err == nil:
				if n, done := responseEnd(res, buf); done {
					// Keep what belongs to the next response.
					c.pending = append([]byte(nil), buf[n:]...)
					return http.ParseResponse(buf[:n:n], c.opts.Parse)
				}
			case !errors.Is(err, http.ErrIncomplete):
				return nil, err
			}
		}

		if uint(len(buf)) > c.opts.MaxMessageSize {
			return nil, errors.Wrapf(ErrResponseTooLarge, "%d > %d", len(buf), c.opts.MaxMessageSize)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.opts.ReadTimeout > 0 {
			c.con.SetReadDeadLine(c.clock.Now().Add(c.opts.ReadTimeout))
		}

		n, err := c.con.Read(chunk)
		if err != nil {
			if errors.Is(err, transport.ErrConnClosed) && len(buf) > 0 {
				// A body without length ends with the connection.
				res, perr := http.ParseResponse(buf, c.opts.Parse)
				if perr == nil && res.BodyLength == http.Unbounded && !isChunked(res) {
					return res, nil
				}
			}
			return nil, err
		}
		buf = append(buf, chunk[:n]...)
	}
}

func isChunked(res *http.Message) bool {
	v, ok := res.Header("Transfer-Encoding")
	return ok && bytes.EqualFold(v, []byte("chunked"))
}

// responseEnd returns the length of the response at the start of buf
// if all of it is buffered.
func responseEnd(res *http.Message, buf []byte) (int, bool) {
	if res.Complete() {
		return int(res.Length), true
	}
	if !isChunked(res) {
		return 0, false
	}

	// Walk the chunks up to the last one. No trailers are expected.
	pos := res.HeaderLength
	for {
		idx := bytes.Index(buf[pos:], rule.CRLF)
		if idx < 0 {
			return 0, false
		}

		line := buf[pos : pos+idx]
		if ext := bytes.IndexByte(line, ';'); ext >= 0 {
			line = line[:ext]
		}
		size, err := strconv.ParseUint(string(line), 16, 31)
		if err != nil {
			return 0, false
		}
		pos += idx + len(rule.CRLF)

		if size == 0 {
			end := pos + len(rule.CRLF)
			return end, end <= len(buf)
		}

		pos += int(size) + len(rule.CRLF)
		if pos > len(buf) {
			return 0, false
		}
	}
}
