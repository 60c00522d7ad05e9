package http

import (
	"bytes"
	"math"
	"strconv"

	"lite-web-server/application/util/rule"

	"github.com/pkg/errors"
)

// DefaultMaxHeaders is used when [ParseOptions.MaxHeaders] is zero.
const DefaultMaxHeaders = 20

type ParseOptions struct {
	// MaxHeaders sets the limit of header fields in a message.
	// Exceeding it fails the parse with [ErrTooManyHeaders].
	MaxHeaders uint
}

var DefaultParseOptions = ParseOptions{
	MaxHeaders: DefaultMaxHeaders,
}

func (o ParseOptions) maxHeaders() uint {
	if o.MaxHeaders == 0 {
		return DefaultMaxHeaders
	}
	return o.MaxHeaders
}

var (
	// ErrMalformed is unrecoverable. The connection it came from should be dropped.
	ErrMalformed = errors.New("malformed message")
	// ErrIncomplete means more bytes are needed.
	ErrIncomplete     = errors.New("incomplete message")
	ErrTooManyHeaders = errors.New("too many header fields")
)

func ParseRequest(buf []byte, opts ParseOptions) (*Message, error) {
	return Parse(buf, KindRequest, opts)
}

func ParseResponse(buf []byte, opts ParseOptions) (*Message, error) {
	return Parse(buf, KindResponse, opts)
}

// Parse parses the message at the start of buf.
// buf must not be modified while the returned message is in use.
//
// On success the header block is complete but the body may not be;
// see [Message.Complete].
func Parse(buf []byte, kind Kind, opts ParseOptions) (*Message, error) {
	n := HeaderBlockLength(buf)
	switch {
	case n == Malformed:
		return nil, errors.Wrap(ErrMalformed, "invalid character in header block")
	case n == Incomplete:
		return nil, ErrIncomplete
	}

	m := &Message{
		buf:          buf,
		Kind:         kind,
		HeaderLength: n,
		BodyLength:   Unbounded,
		Length:       Unbounded,
	}

	// Header block is fully buffered. Skip leading whitespaces.
	pos := 0
	for pos < n && rule.IsWhitespace(buf[pos]) {
		pos++
	}

	var err error
	switch kind {
	case KindRequest:
		pos, err = m.parseRequestLine(pos)
	case KindResponse:
		pos, err = m.parseStatusLine(pos)
	default:
		err = errors.Errorf("unknown message kind: %d", kind)
	}
	if err != nil {
		return nil, err
	}

	if err := m.parseHeaders(pos, opts.maxHeaders()); err != nil {
		return nil, err
	}

	// Only PUT and POST requests carry a body without saying so.
	// Other requests without Content-Length have none.
	// Responses without it are read until the connection closes.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
	if m.BodyLength == Unbounded && kind == KindRequest {
		method := m.Bytes(m.Method)
		if !bytes.Equal(method, []byte("PUT")) && !bytes.Equal(method, []byte("POST")) {
			m.BodyLength = 0
			m.Length = int64(n)
		}
	}

	return m, nil
}

func (m *Message) parseRequestLine(pos int) (int, error) {
	end := m.HeaderLength

	m.Method, pos = Scan(m.buf, pos, end, rule.DelimSP)
	m.URI, pos = Scan(m.buf, pos, end, rule.DelimSP)
	m.Proto, pos = Scan(m.buf, pos, end, rule.DelimCRLF)
	if m.URI.Offset <= m.Method.Offset || m.Proto.Offset <= m.URI.Offset {
		return 0, errors.Wrap(ErrMalformed, "request line is malformed")
	}

	if idx := bytes.IndexByte(m.Bytes(m.URI), '?'); idx >= 0 {
		m.QueryString = View{
			Offset: m.URI.Offset + idx + 1,
			Length: m.URI.Length - idx - 1,
		}
		m.URI.Length = idx
	}

	return pos, nil
}

func (m *Message) parseStatusLine(pos int) (int, error) {
	end := m.HeaderLength

	m.Proto, pos = Scan(m.buf, pos, end, rule.DelimSP)

	// Exactly three digits followed by SP.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4-2
	if end-pos < 4 || m.buf[pos+3] != rule.SP {
		return 0, errors.Wrap(ErrMalformed, "status line is malformed")
	}
	code := 0
	for _, c := range m.buf[pos : pos+3] {
		if !rule.IsDigit(rune(c)) {
			return 0, errors.Wrapf(ErrMalformed, "status code is malformed: %q", m.buf[pos:pos+3])
		}
		code = code*10 + int(c-'0')
	}
	if code < 100 || code >= 600 {
		return 0, errors.Wrapf(ErrMalformed, "status code out of range: %d", code)
	}
	m.StatusCode = code
	pos += 4

	m.StatusMessage, pos = Scan(m.buf, pos, end, rule.DelimCRLF)

	return pos, nil
}

func (m *Message) parseHeaders(pos int, limit uint) error {
	end := m.HeaderLength

	for {
		var name, value View
		name, pos = Scan(m.buf, pos, end, rule.DelimFieldName)
		value, pos = Scan(m.buf, pos, end, rule.DelimCRLF)

		// Trim trailing spaces in header value.
		for value.Length > 0 && m.buf[value.End()-1] == rule.SP {
			value.Length--
		}

		if name.IsEmpty() || value.IsEmpty() {
			return nil
		}

		if uint(len(m.Headers)) >= limit {
			return errors.Wrapf(ErrTooManyHeaders, "limit is %d", limit)
		}
		m.Headers = append(m.Headers, Header{Name: name, Value: value})

		if bytes.EqualFold(m.Bytes(name), []byte("Content-Length")) {
			l, err := parseContentLength(m.Bytes(value))
			if err != nil {
				return err
			}
			if l > math.MaxInt64-int64(m.HeaderLength) {
				return errors.Wrapf(ErrMalformed, "Content-Length too large: %d", l)
			}
			m.BodyLength = l
			m.Length = int64(m.HeaderLength) + l
		}
	}
}

// Any value greater than or equal to 0 is valid.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6-10
func parseContentLength(v []byte) (int64, error) {
	l, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil || l < 0 {
		return 0, errors.Wrapf(ErrMalformed, "invalid Content-Length: %q", v)
	}
	return l, nil
}
