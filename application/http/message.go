package http

import (
	"bytes"
	"log/slog"

	"lite-web-server/application/util/uri"
)

// Unbounded marks a body (and so a message) length that is not known
// from the header block. The body then runs until the peer closes.
const Unbounded int64 = -1

type Kind uint8

const (
	KindRequest Kind = 1 + iota
	KindResponse
)

type Header struct{ Name, Value View }

// Message is a parsed HTTP message.
// Every View in it refers to the buffer the message was parsed from,
// which the message keeps; the message is only valid as long as that
// buffer is left untouched.
type Message struct {
	buf  []byte
	Kind Kind

	// Request line.
	Method View
	URI    View // without query string.
	Proto  View // for both request and response.

	// Query string of the URI. The '?' belongs to neither URI nor QueryString.
	QueryString View

	// Status line.
	StatusCode    int
	StatusMessage View

	Headers []Header

	HeaderLength int
	BodyLength   int64
	Length       int64 // HeaderLength + BodyLength.
}

// Bytes resolves v against the message buffer.
func (m *Message) Bytes(v View) []byte { return v.Of(m.buf) }

// Header returns the value of the first field named name.
// Names are compared case-insensitively.
func (m *Message) Header(name string) ([]byte, bool) {
	for _, h := range m.Headers {
		if bytes.EqualFold(m.Bytes(h.Name), []byte(name)) {
			return m.Bytes(h.Value), true
		}
	}
	return nil, false
}

// Raw returns the message bytes that are buffered.
func (m *Message) Raw() []byte {
	if m.Length == Unbounded {
		return m.buf
	}
	return m.buf[:min(int64(len(m.buf)), m.Length)]
}

// Body returns the body bytes that are buffered.
func (m *Message) Body() []byte {
	end := int64(len(m.buf))
	if m.BodyLength != Unbounded {
		end = min(end, int64(m.HeaderLength)+m.BodyLength)
	}
	return m.buf[m.HeaderLength:end]
}

// Complete reports whether the whole message, body included, is buffered.
func (m *Message) Complete() bool {
	return m.Length != Unbounded && m.Length <= int64(len(m.buf))
}

func (m *Message) IsRequest() bool { return m.Kind == KindRequest }

func (m *Message) Version() (Version, error) { return ParseVersion(m.Bytes(m.Proto)) }

// Query decodes the query string.
func (m *Message) Query() (uri.Query, error) { return uri.ParseQuery(m.Bytes(m.QueryString)) }

// LogValue implements [slog.LogValuer].
func (m *Message) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	if m.IsRequest() {
		attrs = append(attrs,
			slog.String("method", string(m.Bytes(m.Method))),
			slog.String("uri", string(m.Bytes(m.URI))),
		)
		if !m.QueryString.IsEmpty() {
			attrs = append(attrs, slog.String("query", string(m.Bytes(m.QueryString))))
		}
	} else {
		attrs = append(attrs,
			slog.Int("status", m.StatusCode),
			slog.String("message", string(m.Bytes(m.StatusMessage))),
		)
	}
	attrs = append(attrs, slog.String("proto", string(m.Bytes(m.Proto))))

	headers := make([]any, 0, len(m.Headers))
	for _, h := range m.Headers {
		headers = append(headers, slog.String(string(m.Bytes(h.Name)), string(m.Bytes(h.Value))))
	}
	attrs = append(attrs, slog.Group("headers", headers...))

	return slog.GroupValue(attrs...)
}
