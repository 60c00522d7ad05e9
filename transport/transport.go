// Package transport defines the byte stream connections the server reads
// requests from and writes responses to.
package transport

type Protocol string

const (
	TCP  Protocol = "tcp"
	Pipe Protocol = "pipe"
)

// Addr is an endpoint of a connection.
// It is satisfied by [net.Addr].
type Addr interface {
	Network() string
	String() string
}
