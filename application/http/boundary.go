package http

import "lite-web-server/application/util/rule"

// Results of [HeaderBlockLength] other than a length.
const (
	Malformed  = -1
	Incomplete = 0
)

// HeaderBlockLength checks whether buf holds a whole header block
// (start line, header lines and the terminating empty line).
//
// It returns [Malformed] when a control character other than CR and LF shows
// up before the terminator, [Incomplete] when no terminator was found, and
// otherwise the length of the header block including the terminator.
// Both "\n\n" and "\n\r\n" terminate the block.
func HeaderBlockLength(buf []byte) int {
	for i, c := range buf {
		switch {
		case !rule.IsAllowedOnWire(c):
			return Malformed
		case c != rule.LF:
			continue
		case i+1 < len(buf) && buf[i+1] == rule.LF:
			return i + 2
		case i+2 < len(buf) && buf[i+1] == rule.CR && buf[i+2] == rule.LF:
			return i + 3
		}
	}

	return Incomplete
}
