package domain

// PersonaKind selects between the two identifier policies this broker speaks
// SAML under. It is a closed set: there is exactly one persona per kind.
type PersonaKind int

const (
	// PersonaDurable is the SP identity used when the RP asked for a
	// durable (persistent) user identifier.
	PersonaDurable PersonaKind = iota
	// PersonaEphemeral is the SP identity used for everything else.
	PersonaEphemeral
)

// String returns the configuration key for the persona kind.
func (k PersonaKind) String() string {
	if k == PersonaDurable {
		return ScopePersistent
	}
	return ScopeTransient
}

// PersonaForScope maps a requested scope to the persona kind that must serve
// it. Total and deterministic: persistent scope selects the durable persona,
// everything else the ephemeral one.
func PersonaForScope(scope Scope) PersonaKind {
	if scope.RequiresDurableID() {
		return PersonaDurable
	}
	return PersonaEphemeral
}

// ACSEndpoint is one assertion-consumer endpoint of a persona. The order of
// endpoints in a persona is significant: the first one is the default used
// for outbound requests.
type ACSEndpoint struct {
	URL     string
	Binding string
}

// Persona is one configured SAML Service Provider identity. Both personas are
// built once at startup from validated configuration and never mutated, so
// they may be shared freely across concurrent transactions.
type Persona struct {
	Kind             PersonaKind
	EntityID         string
	NameIDFormat     string
	AllowUnsolicited bool
	ForceAuthn       bool
	ACS              []ACSEndpoint
}

// NameIDPolicy is the requested NameID policy derived from a persona. It is
// derived once per persona and immutable afterwards.
type NameIDPolicy struct {
	Format      string
	AllowCreate bool
}

// NameIDPolicy returns the policy this persona requests from IdPs.
// AllowCreate stays false: the broker never asks an IdP to mint identifiers.
func (p *Persona) NameIDPolicy() NameIDPolicy {
	return NameIDPolicy{Format: p.NameIDFormat, AllowCreate: false}
}

// ResponseEndpoint returns the endpoint authentication responses must come
// back to: the first configured assertion-consumer endpoint.
func (p *Persona) ResponseEndpoint() ACSEndpoint {
	if len(p.ACS) == 0 {
		return ACSEndpoint{}
	}
	return p.ACS[0]
}

// AcceptsBinding reports whether any configured assertion-consumer endpoint
// receives responses on the given binding. A response arriving on any other
// binding is invalid for this persona.
func (p *Persona) AcceptsBinding(binding string) bool {
	for _, acs := range p.ACS {
		if acs.Binding == binding {
			return true
		}
	}
	return false
}
