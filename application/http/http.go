package http

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// Proto is the protocol written on every status line.
const Proto = "HTTP/1.1"

const (
	ContentTypeHTML        = "text/html"
	ContentTypePlain       = "text/plain"
	ContentTypeXML         = "application/xml"
	ContentTypeJSON        = "application/json"
	ContentTypePDF         = "application/pdf"
	ContentTypeJPEG        = "image/jpeg"
	ContentTypeBMP         = "image/bmp"
	ContentTypePNG         = "image/png"
	ContentTypeMPEG        = "video/mpeg"
	ContentTypeMP4         = "video/mp4"
	ContentTypeOctetStream = "application/octet-stream"
)

var ErrInvalidVersion = errors.New("invalid http version")

// Version is the protocol version of a message, as in "HTTP/<Major>.<Minor>".
type Version struct{ Major, Minor int }

// ParseVersion parses a protocol token such as "HTTP/1.1".
// Both numbers must be plain decimal digits.
func ParseVersion(b []byte) (Version, error) {
	rest, ok := bytes.CutPrefix(b, []byte("HTTP/"))
	if !ok {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "no prefix in %q", b)
	}

	major, minor, ok := bytes.Cut(rest, []byte{'.'})
	if !ok {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "no dot in %q", b)
	}

	var ver Version
	if ver.Major, ok = parseDigits(major); !ok {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "major version of %q", b)
	}
	if ver.Minor, ok = parseDigits(minor); !ok {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "minor version of %q", b)
	}

	return ver, nil
}

func parseDigits(b []byte) (int, bool) {
	if len(b) == 0 || len(b) > 3 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (ver Version) String() string {
	return "HTTP/" + strconv.Itoa(ver.Major) + "." + strconv.Itoa(ver.Minor)
}
