package uri

import (
	"strings"

	"lite-web-server/application/util/rule"

	"github.com/pkg/errors"
)

type decodeMode uint

const (
	decodePath decodeMode = 1 + iota
	decodeQuery
)

func unhex(h [2]byte) (c byte) {
	return (_hex_to_num(h[0]) << 4) | _hex_to_num(h[1])
}

func _hex_to_num(h byte) byte {
	switch {
	case '0' <= h && h <= '9':
		return h - '0'
	case 'a' <= h && h <= 'f':
		return h - 'a' + 10
	case 'A' <= h && h <= 'F':
		return h - 'A' + 10
	}
	return 0
}

var ErrBadPercentEncoding = errors.New("percent encoding not properly applied")

// UnescapePath decodes percent-encoded octets in a path segment.
func UnescapePath(s string) (string, error) { return unescape(s, decodePath) }

// UnescapeQuery decodes a query component.
// '+' is decoded into a space as form encoding does.
func UnescapeQuery(s string) (string, error) { return unescape(s, decodeQuery) }

func unescape(s string, mode decodeMode) (string, error) {
	if strings.IndexByte(s, '%') < 0 && (mode != decodeQuery || strings.IndexByte(s, '+') < 0) {
		return s, nil
	}

	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch {
		case c == '%':
			if idx+2 >= len(s) || !isPercentEncoded(s[idx:idx+3]) {
				bad := s[idx:min(len(s), idx+3)]
				return "", errors.Wrapf(ErrBadPercentEncoding, "%q", bad)
			}
			b.WriteByte(unhex([2]byte{s[idx+1], s[idx+2]}))
			idx += 2
		case c == '+' && mode == decodeQuery:
			b.WriteByte(rule.SP)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.1
func isPercentEncoded(s string) bool {
	if len(s) != 3 {
		return false
	}

	return s[0] == '%' &&
		rule.IsHex(rune(s[1])) &&
		rule.IsHex(rune(s[2]))
}
