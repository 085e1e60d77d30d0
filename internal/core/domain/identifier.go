package domain

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// Federation attributes consulted, in order, when the asserted NameID cannot
// serve as the durable identifier.
const (
	AttrEduPersonTargetedID    = "eduPersonTargetedID"
	AttrEduPersonPrincipalName = "eduPersonPrincipalName"
)

// durableSources is the ordered derivation table for durable identifiers,
// evaluated top to bottom. Each source returns "" when it cannot supply an
// identifier.
var durableSources = []func(id *FederationIdentity) string{
	func(id *FederationIdentity) string {
		if id.NameID.Format == NameIDFormatPersistent {
			return id.NameID.Value
		}
		return ""
	},
	func(id *FederationIdentity) string { return id.Attribute(AttrEduPersonTargetedID) },
	func(id *FederationIdentity) string { return id.Attribute(AttrEduPersonPrincipalName) },
}

// DeriveDurableIdentifier resolves the durable user identifier from an
// asserted identity: the NameID text if it is persistent-format, else the
// first eduPersonTargetedID value, else the first eduPersonPrincipalName
// value. Returns "" when none applies; callers must treat that as "identity
// could not be established", a negative result rather than a hard error.
func DeriveDurableIdentifier(id *FederationIdentity) string {
	for _, source := range durableSources {
		if v := source(id); v != "" {
			return v
		}
	}
	return ""
}

// ephemeralIDBytes sizes the ephemeral identifier at 256 bits of randomness.
const ephemeralIDBytes = 32

// NewEphemeralID generates a fresh high-entropy identifier unique to one
// transaction. It is never derived from asserted data, so it cannot be
// correlated across sessions. Safe for concurrent use.
func NewEphemeralID() (string, error) {
	buf := make([]byte, ephemeralIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewRequestID generates a fresh unique id for an outbound authentication
// request. The "id-" prefix keeps the value a valid XML NCName. Safe for
// concurrent use.
func NewRequestID() string {
	return "id-" + uuid.NewString()
}
