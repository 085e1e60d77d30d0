package domain

import "net/url"

// DefaultFederationParam is the query parameter on discovery-returned entity
// ids that tags federation membership.
const DefaultFederationParam = "inedugain"

// CanonicalEntityID strips the query string and fragment from a raw entity id
// as returned by the discovery service, retaining scheme, host and path. The
// discovery service is allowed to decorate entity ids with federation tags;
// those must never reach the metadata service or the IdP.
func CanonicalEntityID(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// FederationMember reports whether the raw entity id returned by discovery is
// tagged as a member of the target federation. The second return value is
// true when the tag was absent and the permissive legacy default applied;
// callers should log that case so operators can see how often it fires.
//
// An absent parameter counts as membership. This is a deliberate legacy
// compatibility default, kept as-is from the original service.
func FederationMember(raw, param string) (member, defaulted bool) {
	if param == "" {
		param = DefaultFederationParam
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false, false
	}
	// Blank values count as absent, matching query parsers that drop them.
	var tagged []string
	for _, v := range parsed.Query()[param] {
		if v != "" {
			tagged = append(tagged, v)
		}
	}
	if len(tagged) == 0 {
		return true, true
	}
	for _, v := range tagged {
		if v == "true" {
			return true, false
		}
	}
	return false, false
}
