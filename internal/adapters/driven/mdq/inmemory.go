package mdq

import (
	"context"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// InMemoryLookup is a static metadata source for tests and local setups.
type InMemoryLookup struct {
	entities map[string]map[string][]domain.Endpoint
}

// NewInMemoryLookup creates an empty in-memory metadata source.
func NewInMemoryLookup() *InMemoryLookup {
	return &InMemoryLookup{entities: make(map[string]map[string][]domain.Endpoint)}
}

// AddIdP registers an IdP's SSO endpoint for a binding.
func (m *InMemoryLookup) AddIdP(entityID, binding, location string) {
	if m.entities[entityID] == nil {
		m.entities[entityID] = make(map[string][]domain.Endpoint)
	}
	m.entities[entityID][binding] = append(m.entities[entityID][binding], domain.Endpoint{Location: location})
}

// SSOEndpoints implements ports.MetadataLookup.
func (m *InMemoryLookup) SSOEndpoints(_ context.Context, entityID string) (map[string][]domain.Endpoint, error) {
	endpoints, ok := m.entities[entityID]
	if !ok {
		return nil, ports.ErrEntityNotFound
	}
	return endpoints, nil
}

var _ ports.MetadataLookup = (*InMemoryLookup)(nil)
