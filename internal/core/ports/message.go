package ports

import (
	"context"

	"github.com/SvHu/svs/internal/core/domain"
)

// EncodedMessage is the transport encoding of one outbound SAML message.
// For redirect bindings Location carries the full encoded URL; for POST
// bindings Body carries an auto-submitting HTML form.
type EncodedMessage struct {
	Location    string
	Body        []byte
	ContentType string
}

// MessageCodec is the port interface for the external SAML message library.
// It owns XML construction, signing application, transport encoding, and the
// full parse + signature/condition validation of responses. Implementations
// must be safe for concurrent use.
type MessageCodec interface {
	// BuildAndEncode serializes the descriptor, applies the configured
	// signing function if any, and applies the binding's transport encoding
	// with the opaque relay state attached unmodified.
	BuildAndEncode(desc *domain.AuthnRequestDescriptor, binding, relayState string) (*EncodedMessage, error)

	// ParseAndValidate parses a raw authentication response received on the
	// given binding and validates its signature and conditions. The error is
	// the library's own; the caller maps it to the broker taxonomy.
	ParseAndValidate(ctx context.Context, rawResponse string, binding string) (*domain.FederationIdentity, error)
}
