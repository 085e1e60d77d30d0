package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// requestIDExpiry bounds how long an issued request id is accepted in
// InResponseTo validation.
const requestIDExpiry = 10 * time.Minute

// SP drives the SAML protocol flow for one service-provider persona: it
// builds discovery queries, constructs and encodes authentication requests,
// and resolves authentication responses. An SP is immutable after
// construction and safe for concurrent use.
type SP struct {
	persona      *domain.Persona
	codec        ports.MessageCodec
	metadata     ports.MetadataLookup
	requests     ports.RequestStore
	disco        ports.DiscoveryService
	discoveryURL string
	returnURL    *url.URL
	logger       *zap.Logger
	metrics      ports.MetricsRecorder
}

// SPConfig collects the collaborators of an SP.
type SPConfig struct {
	Persona      *domain.Persona
	Codec        ports.MessageCodec
	Metadata     ports.MetadataLookup
	Requests     ports.RequestStore
	Discovery    ports.DiscoveryService
	DiscoveryURL string
	// ReturnURL is the endpoint the discovery service sends the user back to.
	ReturnURL string
	Logger    *zap.Logger
	Metrics   ports.MetricsRecorder
}

// NewSP builds the flow service for one persona. All collaborators except
// Logger and Metrics are required.
func NewSP(cfg SPConfig) (*SP, error) {
	if cfg.Persona == nil {
		return nil, domain.ConfigError("persona is required")
	}
	if cfg.Codec == nil || cfg.Metadata == nil || cfg.Requests == nil || cfg.Discovery == nil {
		return nil, domain.ConfigError("codec, metadata, request store and discovery service are required")
	}
	ret, err := url.Parse(cfg.ReturnURL)
	if err != nil || cfg.ReturnURL == "" {
		return nil, domain.ConfigError("a valid discovery return URL is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SP{
		persona:      cfg.Persona,
		codec:        cfg.Codec,
		metadata:     cfg.Metadata,
		requests:     cfg.Requests,
		disco:        cfg.Discovery,
		discoveryURL: cfg.DiscoveryURL,
		returnURL:    ret,
		logger:       logger,
		metrics:      cfg.Metrics,
	}, nil
}

// Persona returns the persona this SP speaks under.
func (s *SP) Persona() *domain.Persona {
	return s.persona
}

// ConstructAuthnRequest builds the logical authentication-request parameters
// for the given IdP: it looks up the IdP's SSO endpoints, selects the
// outbound binding by the POST-over-Redirect preference, and assembles a
// fresh descriptor. When acsURL is non-empty the response binding is pinned
// to the persona's own configured response binding, independent of the
// outbound binding.
func (s *SP) ConstructAuthnRequest(ctx context.Context, idpEntityID string, policy domain.NameIDPolicy, acsURL string) (*domain.AuthnRequestDescriptor, string, error) {
	endpoints, err := s.metadata.SSOEndpoints(ctx, idpEntityID)
	if err != nil {
		if errors.Is(err, ports.ErrEntityNotFound) {
			return nil, "", domain.UnknownIdPError(idpEntityID)
		}
		return nil, "", domain.MetadataUnavailableError(err)
	}
	if len(endpoints) == 0 {
		return nil, "", domain.UnknownIdPError(idpEntityID)
	}

	binding, ok := domain.SelectBinding(endpoints)
	if !ok {
		return nil, "", domain.UnsupportedBindingError(idpEntityID)
	}

	desc := &domain.AuthnRequestDescriptor{
		ID:           domain.NewRequestID(),
		Version:      "2.0",
		IssueInstant: time.Now().UTC(),
		Issuer:       s.persona.EntityID,
		Destination:  endpoints[binding][0].Location,
		Binding:      binding,
		NameIDPolicy: policy,
		ForceAuthn:   s.persona.ForceAuthn,
	}
	if acsURL != "" {
		desc.ACSURL = acsURL
		desc.ResponseBinding = s.persona.ResponseEndpoint().Binding
	}
	return desc, binding, nil
}

// RedirectToIdP constructs, signs and encodes the authentication request for
// the chosen IdP and produces the transport instruction that sends the user
// there: a see-other redirect for the redirect binding, an auto-submitting
// HTML form for POST. The relay state passes through unmodified.
func (s *SP) RedirectToIdP(ctx context.Context, idpEntityID, relayState string) (*HTTPInstruction, error) {
	desc, binding, err := s.ConstructAuthnRequest(ctx, idpEntityID, s.persona.NameIDPolicy(), s.persona.ResponseEndpoint().URL)
	if err != nil {
		return nil, err
	}

	if err := s.requests.Store(desc.ID, time.Now().Add(requestIDExpiry)); err != nil {
		return nil, domain.ServiceError("could not record request id", err)
	}

	encoded, err := s.codec.BuildAndEncode(desc, binding, relayState)
	if err != nil {
		return nil, domain.BindingEncodingError("could not encode authentication request", err)
	}

	s.logger.Info("saml authn request issued",
		zap.String("request_id", desc.ID),
		zap.String("idp", idpEntityID),
		zap.String("binding", binding),
		zap.String("transaction_id", relayState),
	)
	if s.metrics != nil {
		s.metrics.RecordAuthnRequest(binding)
	}

	if binding == domain.BindingHTTPRedirect {
		if encoded.Location == "" {
			return nil, domain.BindingEncodingError("redirect encoding produced no location", nil)
		}
		return SeeOther(encoded.Location), nil
	}
	return HTMLPage(encoded.Body), nil
}

// DiscoveryRedirect builds the discovery-service URL for this persona,
// carrying the transaction state on the configured return endpoint.
func (s *SP) DiscoveryRedirect(state string) (*url.URL, error) {
	ret := *s.returnURL
	q := ret.Query()
	q.Set("state", state)
	ret.RawQuery = q.Encode()

	loc, err := s.disco.RequestURL(s.discoveryURL, s.persona.EntityID, &ret)
	if err != nil {
		return nil, domain.ServiceError("could not build discovery request", err)
	}
	s.logger.Info("discovery redirect",
		zap.String("discovery_url", s.discoveryURL),
		zap.String("transaction_id", state),
	)
	if s.metrics != nil {
		s.metrics.RecordDiscoveryRedirect()
	}
	return loc, nil
}

// ParseDiscoveryReturn extracts the chosen IdP entity id from the discovery
// service's return query. Returns "" when none was chosen.
func (s *SP) ParseDiscoveryReturn(query url.Values) string {
	return s.disco.ParseReturn(query)
}

// ResolveIdentity validates a raw authentication response received on the
// given binding. An absent payload is the expected shape of an IdP-side
// authentication failure and yields authn_failure; a response arriving on a
// binding no assertion-consumer endpoint is configured for, and any
// validation failure from the message library, yield response_parse with the
// cause preserved.
func (s *SP) ResolveIdentity(ctx context.Context, rawResponse, binding string) (*domain.FederationIdentity, error) {
	if rawResponse == "" {
		s.logger.Info("authentication response missing, treating as authn failure")
		return nil, domain.AuthnFailureError()
	}

	if !s.persona.AcceptsBinding(binding) {
		s.logger.Error("authentication response on unconfigured binding",
			zap.String("binding", binding),
		)
		return nil, domain.ResponseParseError(fmt.Errorf("no assertion consumer endpoint accepts binding %q", binding))
	}

	identity, err := s.codec.ParseAndValidate(ctx, rawResponse, binding)
	if err != nil {
		s.logger.Error("authentication response rejected", zap.Error(err))
		return nil, domain.ResponseParseError(err)
	}
	return identity, nil
}
