package client

import (
	"maps"

	"github.com/lexfrei/go-apiclient/transport"
)

// Headers is a mutable header store. A single store may back several clients,
// in which case a change through any of them is seen by all. Header names are
// case-insensitive: setting "content-type" replaces "Content-Type".
//
// Headers is not safe for concurrent mutation.
type Headers struct {
	values map[string]string
}

// NewHeaders returns a store seeded with a copy of initial.
func NewHeaders(initial map[string]string) *Headers {
	h := &Headers{values: make(map[string]string, len(initial))}
	for key, value := range initial {
		h.Set(key, value)
	}
	return h
}

// Set stores value under key, replacing any previous value under any casing
// of key.
func (h *Headers) Set(key, value string) {
	transport.SetHeader(h.values, key, value)
}

// Delete removes key in any casing. Unknown keys are ignored.
func (h *Headers) Delete(key string) {
	transport.DeleteHeader(h.values, key)
}

// Get returns the value stored under key, ignoring case.
func (h *Headers) Get(key string) (string, bool) {
	return transport.LookupHeader(h.values, key)
}

// Len returns the number of stored headers.
func (h *Headers) Len() int {
	return len(h.values)
}

// Snapshot returns a copy of the current headers.
func (h *Headers) Snapshot() map[string]string {
	return maps.Clone(h.values)
}
