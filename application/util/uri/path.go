package uri

import "strings"

// LastSegment returns the final segment of path, percent-decoded.
// It returns false when the path has no non-empty final segment
// or the segment cannot be decoded.
func LastSegment(path string) (string, bool) {
	idx := strings.LastIndexByte(path, '/')
	seg := path[idx+1:]
	if seg == "" {
		return "", false
	}

	decoded, err := UnescapePath(seg)
	if err != nil || decoded == "" || strings.ContainsRune(decoded, '/') {
		return "", false
	}

	if decoded == "." || decoded == ".." {
		return "", false
	}

	return decoded, true
}
