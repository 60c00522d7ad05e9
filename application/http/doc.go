// Package http implements framing of Hypertext Transfer Protocol (HTTP/1.1)
// messages held in a byte buffer: locating the end of the header block,
// splitting it into zero-copy views, and formatting responses.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
