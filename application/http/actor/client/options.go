package client

import (
	"time"

	"lite-web-server/application/http"
)

type Options struct {
	// ReadTimeout bounds the wait for each part of a response.
	// Zero means no limit.
	ReadTimeout time.Duration

	// MaxMessageSize limits the bytes buffered for one response.
	MaxMessageSize uint

	ReadSize uint

	Parse http.ParseOptions
}

const (
	DefaultMaxMessageSize = 8 << 20
	DefaultReadSize       = 4096
)

func (o Options) withDefaults() Options {
	if o.MaxMessageSize == 0 {
		o.MaxMessageSize = DefaultMaxMessageSize
	}
	if o.ReadSize == 0 {
		o.ReadSize = DefaultReadSize
	}
	return o
}
