package flow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// Result is the positive outcome of one completed transaction, handed back
// to the RP-facing layer.
type Result struct {
	UserID       string
	Affiliation  bool
	Identity     *domain.FederationIdentity
	AuthnInstant time.Time
	IdPEntityID  string
}

// Backend is the RP-facing surface of the broker: discovery redirect,
// discovery return, and assertion consumption. All cross-step continuity is
// carried by the external transaction store and the opaque relay state, so a
// Backend is stateless per transaction and safe for concurrent use.
type Backend struct {
	registry        *Registry
	affiliations    ports.AffiliationProvider
	transactions    ports.TransactionStore
	federationParam string
	logger          *zap.Logger
	metrics         ports.MetricsRecorder
}

// BackendConfig collects the collaborators of a Backend.
type BackendConfig struct {
	Registry     *Registry
	Affiliations ports.AffiliationProvider
	Transactions ports.TransactionStore
	// FederationParam is the query parameter on discovery-returned entity
	// ids that tags federation membership. Defaults to "inedugain".
	FederationParam string
	Logger          *zap.Logger
	Metrics         ports.MetricsRecorder
}

// NewBackend builds the RP-facing backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if cfg.Registry == nil {
		return nil, domain.ConfigError("persona registry is required")
	}
	if cfg.Affiliations == nil {
		return nil, domain.ConfigError("affiliation provider is required")
	}
	param := cfg.FederationParam
	if param == "" {
		param = domain.DefaultFederationParam
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		registry:        cfg.Registry,
		affiliations:    cfg.Affiliations,
		transactions:    cfg.Transactions,
		federationParam: param,
		logger:          logger,
		metrics:         cfg.Metrics,
	}, nil
}

// Transaction resolves an opaque transaction token through the external
// store. Only usable when a TransactionStore was wired.
func (b *Backend) Transaction(token string) (*domain.TransactionContext, error) {
	if b.transactions == nil {
		return nil, domain.ServiceError("no transaction store configured", nil)
	}
	return b.transactions.Get(token)
}

// RedirectToDiscovery sends the user to the discovery service with the
// transaction state attached to the return endpoint.
func (b *Backend) RedirectToDiscovery(state string, scope domain.Scope) (*HTTPInstruction, error) {
	sp := b.registry.Select(scope)
	loc, err := sp.DiscoveryRedirect(state)
	if err != nil {
		return nil, err
	}
	return SeeOther(loc.String()), nil
}

// HandleDiscoveryReturn validates the IdP chosen at the discovery service
// and, when acceptable, produces the instruction that sends the user to the
// IdP. A non-member IdP aborts before any authentication request is built.
func (b *Backend) HandleDiscoveryReturn(ctx context.Context, rawEntityID string, tx *domain.TransactionContext) (*HTTPInstruction, error) {
	if rawEntityID == "" {
		return nil, domain.ServiceError("no identity provider chosen at discovery service", nil)
	}

	idpEntityID := domain.CanonicalEntityID(rawEntityID)
	member, defaulted := domain.FederationMember(rawEntityID, b.federationParam)
	if !member {
		b.logger.Warn("non-federation idp returned from discovery",
			zap.String("idp", idpEntityID),
			zap.String("transaction_id", tx.TransactionID),
			zap.String("client_id", tx.ClientID),
		)
		return nil, domain.NonFederationMemberError(idpEntityID)
	}
	if defaulted {
		// Absent membership tag accepted by legacy default; keep it visible.
		b.logger.Warn("federation membership assumed, tag absent",
			zap.String("idp", idpEntityID),
			zap.String("transaction_id", tx.TransactionID),
		)
	}

	b.logger.Info("idp chosen",
		zap.String("idp", idpEntityID),
		zap.String("transaction_id", tx.TransactionID),
		zap.String("client_id", tx.ClientID),
	)

	sp := b.registry.Select(tx.Scope)
	return sp.RedirectToIdP(ctx, idpEntityID, tx.TransactionID)
}

// HandleAssertionConsumer resolves a raw authentication response into the
// final transaction result: validated identity, affiliation decision, and
// the released user identifier. Negative outcomes (failed authentication,
// missing affiliation, unresolvable identity) come back as AppErrors whose
// Negative() is true; everything else is a transaction abort.
func (b *Backend) HandleAssertionConsumer(ctx context.Context, rawResponse, binding string, tx *domain.TransactionContext) (*Result, error) {
	sp := b.registry.Select(tx.Scope)

	identity, err := sp.ResolveIdentity(ctx, rawResponse, binding)
	if err != nil {
		b.recordResolution(err)
		return nil, err
	}

	b.logger.Info("saml response accepted",
		zap.String("idp", identity.IdPEntityID),
		zap.String("name_id_format", identity.NameID.Format),
		zap.String("transaction_id", tx.TransactionID),
		zap.String("client_id", tx.ClientID),
	)

	affiliated := b.affiliations.Func(tx.Scope)(identity)
	if !affiliated {
		err := domain.AffiliationDeniedError(identity.IdPEntityID)
		b.recordResolution(err)
		return nil, err
	}

	var userID string
	if tx.Scope.RequiresDurableID() {
		userID = domain.DeriveDurableIdentifier(identity)
		if userID == "" {
			err := domain.IdentityUnresolvableError(identity.IdPEntityID)
			b.recordResolution(err)
			return nil, err
		}
	} else {
		userID, err = domain.NewEphemeralID()
		if err != nil {
			return nil, domain.ServiceError("could not generate ephemeral identifier", err)
		}
	}

	if b.metrics != nil {
		b.metrics.RecordResolution("resolved")
	}
	return &Result{
		UserID:       userID,
		Affiliation:  true,
		Identity:     identity,
		AuthnInstant: identity.AuthnInstant,
		IdPEntityID:  identity.IdPEntityID,
	}, nil
}

func (b *Backend) recordResolution(err error) {
	if b.metrics == nil {
		return
	}
	if appErr, ok := err.(*domain.AppError); ok {
		b.metrics.RecordResolution(appErr.Code.String())
		return
	}
	b.metrics.RecordResolution(domain.ErrCodeServiceError.String())
}
