package server

import (
	"github.com/pkg/errors"
)

var (
	ErrEmptyPath  = errors.New("path must not be empty")
	ErrNilHandler = errors.New("handler must not be nil")
)

type endpoint struct {
	path    string
	handler Handler // nil marks a free slot.
}

// Registry maps exact request paths onto handlers.
//
// It is not safe for concurrent use. Populate it before the server starts;
// it is only read afterwards.
type Registry struct {
	endpoints []endpoint
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds h to path.
// Registering a path twice replaces the handler in place.
// Otherwise the first free slot is reused or a new one is appended.
func (r *Registry) Register(path string, h Handler) error {
	if path == "" {
		return ErrEmptyPath
	}
	if h == nil {
		return errors.Wrap(ErrNilHandler, path)
	}

	free := -1
	for i, e := range r.endpoints {
		if e.handler == nil {
			if free < 0 {
				free = i
			}
			continue
		}
		if e.path == path {
			r.endpoints[i].handler = h
			return nil
		}
	}

	if free >= 0 {
		r.endpoints[free] = endpoint{path: path, handler: h}
		return nil
	}

	r.endpoints = append(r.endpoints, endpoint{path: path, handler: h})
	return nil
}

func (r *Registry) HandleFunc(path string, f HandlerFunc) error {
	if f == nil {
		return errors.Wrap(ErrNilHandler, path)
	}
	return r.Register(path, f)
}

// Unregister frees the slot of path. It reports whether path was registered.
func (r *Registry) Unregister(path string) bool {
	for i, e := range r.endpoints {
		if e.handler != nil && e.path == path {
			r.endpoints[i] = endpoint{}
			return true
		}
	}
	return false
}

// Lookup finds the handler whose path equals path byte by byte.
func (r *Registry) Lookup(path []byte) (Handler, bool) {
	for _, e := range r.endpoints {
		if e.handler != nil && e.path == string(path) {
			return e.handler, true
		}
	}
	return nil, false
}

// Paths returns the registered paths in lookup order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		if e.handler != nil {
			paths = append(paths, e.path)
		}
	}
	return paths
}
