package server

import (
	"time"

	"lite-web-server/application/http"
)

type Options struct {
	// PollInterval bounds each wait for incoming bytes.
	// An expired wait is retried, so it only sets how often
	// a connection notices the server shutting down.
	PollInterval time.Duration

	// MaxMessageSize limits the bytes buffered for a single request.
	// A larger request is answered 413 and its connection closed.
	MaxMessageSize uint

	// ReadSize is the size of a single read from the transport.
	ReadSize uint

	Parse  http.ParseOptions
	Encode http.EncodeOptions
}

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultMaxMessageSize = 1 << 20
	DefaultReadSize       = 4096
)

func DefaultOptions() Options {
	return Options{
		PollInterval:   DefaultPollInterval,
		MaxMessageSize: DefaultMaxMessageSize,
		ReadSize:       DefaultReadSize,
		Parse:          http.DefaultParseOptions,
		Encode:         http.DefaultEncodeOptions,
	}
}

// withDefaults fills zero values.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.MaxMessageSize == 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.ReadSize == 0 {
		o.ReadSize = d.ReadSize
	}
	if o.Encode == (http.EncodeOptions{}) {
		o.Encode = d.Encode
	}
	return o
}
