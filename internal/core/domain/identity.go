package domain

import "time"

// NameID is the identifier an IdP asserted for the authenticated user.
type NameID struct {
	Value  string
	Format string
}

// FederationIdentity is the parsed, validated outcome of one IdP
// authentication response. It is produced once per successful response,
// consumed immediately to derive the final identifier and affiliation, and
// then discarded by this core.
type FederationIdentity struct {
	NameID       NameID
	Attributes   map[string][]string
	AuthnInstant time.Time
	IdPEntityID  string
}

// Attribute returns the first value of the named attribute, or "" when the
// attribute is absent or empty.
func (id *FederationIdentity) Attribute(name string) string {
	values := id.Attributes[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// TransactionContext is the slice of the externally stored transaction this
// core reads. It is never mutated here.
type TransactionContext struct {
	TransactionID string
	ClientID      string
	Scope         Scope
}

// AffiliationFunc decides, from an asserted identity, whether the user holds
// the affiliation the RP asked for. Implementations must be pure.
type AffiliationFunc func(identity *FederationIdentity) bool

// AuthnRequestDescriptor carries the logical parameters of one outbound
// authentication request. A descriptor exists only for the single redirect
// that delivers it; it is never persisted.
type AuthnRequestDescriptor struct {
	ID              string
	Version         string
	IssueInstant    time.Time
	Issuer          string
	Destination     string
	Binding         string
	NameIDPolicy    NameIDPolicy
	ACSURL          string
	ResponseBinding string
	ForceAuthn      bool
}
