package ports

import "net/url"

// DiscoveryService is the port interface for the identity-provider discovery
// protocol helper. It only assembles and parses URLs; the discovery UI itself
// is a separate system.
type DiscoveryService interface {
	// RequestURL builds the discovery-service URL carrying the SP entity id
	// and the return URL the service should send the user back to.
	RequestURL(discoveryURL, spEntityID string, returnURL *url.URL) (*url.URL, error)

	// ParseReturn extracts the chosen IdP entity id from the discovery
	// service's return query. Returns "" when no IdP was chosen.
	ParseReturn(query url.Values) string
}
