// Package discovery implements the identity-provider discovery protocol
// request and return URLs. Only URL assembly happens here; the discovery
// user interface is a separate system.
package discovery

import (
	"errors"
	"net/url"

	"github.com/SvHu/svs/internal/core/ports"
)

// Query parameters of the identity-provider discovery protocol.
const (
	paramEntityID = "entityID"
	paramReturn   = "return"
)

// DefaultReturnIDParam is the query parameter the discovery service uses to
// carry the chosen IdP back on the return URL.
const DefaultReturnIDParam = "entityID"

// Service builds discovery requests and parses discovery returns.
type Service struct {
	returnIDParam string
}

// NewService creates a discovery helper using the protocol's default
// returnIDParam.
func NewService() *Service {
	return &Service{returnIDParam: DefaultReturnIDParam}
}

// NewServiceWithReturnIDParam creates a discovery helper for services
// configured with a non-default return parameter.
func NewServiceWithReturnIDParam(param string) *Service {
	return &Service{returnIDParam: param}
}

// RequestURL implements ports.DiscoveryService.
func (s *Service) RequestURL(discoveryURL, spEntityID string, returnURL *url.URL) (*url.URL, error) {
	if discoveryURL == "" {
		return nil, errors.New("discovery service URL is empty")
	}
	loc, err := url.Parse(discoveryURL)
	if err != nil {
		return nil, err
	}
	q := loc.Query()
	q.Set(paramEntityID, spEntityID)
	q.Set(paramReturn, returnURL.String())
	loc.RawQuery = q.Encode()
	return loc, nil
}

// ParseReturn implements ports.DiscoveryService. Returns "" when the
// discovery service sent the user back without a choice.
func (s *Service) ParseReturn(query url.Values) string {
	return query.Get(s.returnIDParam)
}

var _ ports.DiscoveryService = (*Service)(nil)
