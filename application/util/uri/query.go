package uri

import (
	"bytes"

	"github.com/pkg/errors"
)

type Param struct{ Key, Value string }

// Query keeps parameters in the order they appeared.
type Query []Param

// ParseQuery decodes a raw query string (without the leading '?').
// Both '&' and ';' separate parameters. A parameter without '=' has an empty value.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
func ParseQuery(raw []byte) (Query, error) {
	q := make(Query, 0)
	for len(raw) > 0 {
		var part []byte
		if idx := bytes.IndexAny(raw, "&;"); idx >= 0 {
			part, raw = raw[:idx], raw[idx+1:]
		} else {
			part, raw = raw, nil
		}

		if len(part) == 0 {
			continue
		}

		k, v, _ := bytes.Cut(part, []byte{'='})

		key, err := UnescapeQuery(string(k))
		if err != nil {
			return nil, errors.Wrap(err, "decoding key")
		}
		value, err := UnescapeQuery(string(v))
		if err != nil {
			return nil, errors.Wrap(err, "decoding value")
		}

		q = append(q, Param{Key: key, Value: value})
	}

	return q, nil
}

// Get returns the first value of key.
func (q Query) Get(key string) (value string, ok bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (q Query) Values(key string) []string {
	values := make([]string, 0)
	for _, p := range q {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}
