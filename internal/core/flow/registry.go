package flow

import (
	"github.com/SvHu/svs/internal/core/domain"
)

// Registry holds the two service-provider personas. It is built once at
// startup; missing personas are a configuration error and never surface at
// request time.
type Registry struct {
	durable   *SP
	ephemeral *SP
}

// NewRegistry builds a registry from both personas. Both are required.
func NewRegistry(durable, ephemeral *SP) (*Registry, error) {
	if durable == nil || ephemeral == nil {
		return nil, domain.ConfigError("both the durable and the ephemeral persona must be configured")
	}
	if durable.Persona().Kind != domain.PersonaDurable {
		return nil, domain.ConfigError("durable registry slot holds a non-durable persona")
	}
	if ephemeral.Persona().Kind != domain.PersonaEphemeral {
		return nil, domain.ConfigError("ephemeral registry slot holds a non-ephemeral persona")
	}
	return &Registry{durable: durable, ephemeral: ephemeral}, nil
}

// Select returns the SP persona for a requested scope. Total and
// deterministic: the durable persona iff the scope contains the persistent
// token, the ephemeral persona otherwise.
func (r *Registry) Select(scope domain.Scope) *SP {
	if domain.PersonaForScope(scope) == domain.PersonaDurable {
		return r.durable
	}
	return r.ephemeral
}
