// Package uri implements the pieces of Uniform Resource Identifier (URI)
// handling needed on a request target: percent-decoding, query strings
// and path components.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986
package uri
