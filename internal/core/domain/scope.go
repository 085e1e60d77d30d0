package domain

// NameID format URNs recognized by this broker. They match the SAML 2.0
// nameid-format identifiers used by crewjam/saml; they are redeclared here so
// the domain package stays dependency-free.
const (
	NameIDFormatPersistent = "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent"
	NameIDFormatTransient  = "urn:oasis:names:tc:SAML:2.0:nameid-format:transient"
	NameIDFormatEntity     = "urn:oasis:names:tc:SAML:2.0:nameid-format:entity"
)

// Scope tokens recognized when choosing an identifier policy. Everything else
// in the scope is opaque to this broker (affiliation tokens are interpreted by
// the affiliation provider, not here).
const (
	ScopePersistent = "persistent"
	ScopeTransient  = "transient"
)

// Scope is the opaque set of tokens requested by the relying party. It is
// supplied per transaction and never mutated.
type Scope []string

// Contains reports whether the scope includes the given token.
func (s Scope) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}

// RequiresDurableID reports whether the scope asks for a durable user
// identifier. Only the literal "persistent" token counts; any other scope
// gets an ephemeral identifier.
func (s Scope) RequiresDurableID() bool {
	return s.Contains(ScopePersistent)
}
