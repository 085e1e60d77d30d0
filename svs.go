// Package svs is the orchestration core of a SAML identity federation
// broker: it builds and dispatches authentication requests toward academic
// identity providers, routes the user through a discovery service, and
// resolves the returned assertion into a durable or ephemeral user
// identifier for the RP-facing layer.
package svs

import (
	"github.com/SvHu/svs/internal/adapters/driving/broker"
	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/flow"
)

// Re-export the broker wiring surface
type Config = broker.Config
type PersonaConfig = broker.PersonaConfig
type ACSConfig = broker.ACSConfig
type BuildOptions = broker.BuildOptions
type Backend = broker.Backend

var (
	LoadConfig = broker.LoadConfig
	Build      = broker.Build
)

// Re-export the flow types RP-facing callers interact with
type Result = flow.Result
type HTTPInstruction = flow.HTTPInstruction

// Re-export the domain vocabulary
type Scope = domain.Scope
type PersonaKind = domain.PersonaKind
type FederationIdentity = domain.FederationIdentity
type TransactionContext = domain.TransactionContext

const (
	PersonaDurable   = domain.PersonaDurable
	PersonaEphemeral = domain.PersonaEphemeral

	ScopePersistent = domain.ScopePersistent
	ScopeTransient  = domain.ScopeTransient

	BindingHTTPPost     = domain.BindingHTTPPost
	BindingHTTPRedirect = domain.BindingHTTPRedirect
)

var (
	PersonaForScope   = domain.PersonaForScope
	CanonicalEntityID = domain.CanonicalEntityID
	FederationMember  = domain.FederationMember
)
