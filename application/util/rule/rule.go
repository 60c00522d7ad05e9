package rule

func IsWhitespace(c byte) bool {
	for _, ws := range Whitespaces {
		if c == ws {
			return true
		}
	}
	return false
}

// IsPrint reports whether c is a printable ASCII character, space included.
func IsPrint(c byte) bool { return 0x20 <= c && c <= 0x7E }

// IsAllowedOnWire reports whether c may appear inside a header block.
// Bytes with the high bit set are passed through untouched.
func IsAllowedOnWire(c byte) bool {
	return IsPrint(c) || c == CR || c == LF || c >= 0x80
}

func IsAlpha(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
func IsDigit(r rune) bool { return '0' <= r && r <= '9' }
func IsHex(r rune) bool {
	return IsDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
