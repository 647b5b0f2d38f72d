// Package protocol holds the reader registry that the portfolio service fans
// out over.
package protocol

import (
	"github.com/calvinwei/defolio/internal/domain"
)

// Registry is an ordered collection of protocol readers. Order is preserved
// so position listings render in a stable protocol order.
type Registry struct {
	readers []domain.ProtocolReader
	byName  map[domain.Protocol]domain.ProtocolReader
}

// NewRegistry builds a registry from the given readers. Registering two
// readers for the same protocol keeps the first.
func NewRegistry(readers ...domain.ProtocolReader) *Registry {
	r := &Registry{
		byName: make(map[domain.Protocol]domain.ProtocolReader, len(readers)),
	}
	for _, reader := range readers {
		if reader == nil {
			continue
		}
		if _, exists := r.byName[reader.Protocol()]; exists {
			continue
		}
		r.readers = append(r.readers, reader)
		r.byName[reader.Protocol()] = reader
	}
	return r
}

// All returns the registered readers in registration order.
func (r *Registry) All() []domain.ProtocolReader {
	return r.readers
}

// Get returns the reader for a protocol, or domain.ErrNotFound.
func (r *Registry) Get(p domain.Protocol) (domain.ProtocolReader, error) {
	reader, ok := r.byName[p]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reader, nil
}

// Protocols returns the registered protocol identifiers in order.
func (r *Registry) Protocols() []domain.Protocol {
	out := make([]domain.Protocol, len(r.readers))
	for i, reader := range r.readers {
		out[i] = reader.Protocol()
	}
	return out
}
