package domain

// SAML binding URNs. Redeclared from the SAML 2.0 bindings specification so
// the domain package stays dependency-free; the values match crewjam/saml.
const (
	BindingHTTPPost     = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST"
	BindingHTTPRedirect = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect"
)

// bindingPreference is the outbound binding policy, evaluated top to bottom.
// HTTP-POST comes first because it tolerates larger messages (signed requests
// in particular); the ordering is policy, not alphabet or IdP-declared order.
var bindingPreference = []string{
	BindingHTTPPost,
	BindingHTTPRedirect,
}

// SelectBinding picks the outbound binding for an IdP from the bindings its
// metadata offers. Returns false when the IdP offers neither supported
// binding.
func SelectBinding(offered map[string][]Endpoint) (string, bool) {
	for _, b := range bindingPreference {
		if len(offered[b]) > 0 {
			return b, true
		}
	}
	return "", false
}

// Endpoint is one single-sign-on service location from IdP metadata.
type Endpoint struct {
	Location string
}
