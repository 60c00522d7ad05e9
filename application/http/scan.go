package http

import "strings"

// View is a read-only reference to a range of a buffer.
// It never owns memory. Resolve it with [View.Of] against the buffer it was
// produced from; the result aliases that buffer.
type View struct {
	Offset int
	Length int
}

func (v View) Of(buf []byte) []byte {
	end := v.Offset + v.Length
	return buf[v.Offset:end:end]
}

func (v View) End() int      { return v.Offset + v.Length }
func (v View) IsEmpty() bool { return v.Length == 0 }

// Scan produces a view over the run of bytes of src starting at pos that are
// not in delims, then skips the run of delimiter bytes following it.
// It returns the view and the position after the delimiters.
// Bytes at or after end are never read. The view may be zero-length.
func Scan(src []byte, pos, end int, delims string) (View, int) {
	end = min(end, len(src))
	pos = min(max(pos, 0), end)

	v := View{Offset: pos}
	for pos < end && strings.IndexByte(delims, src[pos]) < 0 {
		pos++
	}
	v.Length = pos - v.Offset

	for pos < end && strings.IndexByte(delims, src[pos]) >= 0 {
		pos++
	}

	return v, pos
}
