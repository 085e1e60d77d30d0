// Package affiliation supplies the scope-keyed affiliation policy applied
// after a successful authentication response.
package affiliation

import (
	"strings"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// Attributes consulted for affiliation values.
const (
	attrAffiliation       = "eduPersonAffiliation"
	attrScopedAffiliation = "eduPersonScopedAffiliation"
)

// expansions maps each requestable affiliation token to the asserted values
// that satisfy it. "affiliated" is the catch-all used when the RP does not
// name a specific affiliation.
var expansions = map[string][]string{
	"student":    {"student"},
	"faculty":    {"faculty"},
	"staff":      {"staff"},
	"employee":   {"employee", "faculty", "staff"},
	"alum":       {"alum"},
	"member":     {"member", "student", "employee", "faculty", "staff"},
	"affiliated": {"member", "student", "employee", "faculty", "staff", "alum"},
}

// Provider derives affiliation functions from the requested scope.
type Provider struct{}

// NewProvider creates the default affiliation provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Func implements ports.AffiliationProvider. The returned function accepts
// an identity when any affiliation token in the scope is satisfied by the
// asserted eduPersonAffiliation or eduPersonScopedAffiliation values. A
// scope naming no affiliation token falls back to "affiliated".
func (p *Provider) Func(scope domain.Scope) domain.AffiliationFunc {
	var requested []string
	for _, token := range scope {
		if _, ok := expansions[token]; ok {
			requested = append(requested, token)
		}
	}
	if len(requested) == 0 {
		requested = []string{"affiliated"}
	}

	return func(identity *domain.FederationIdentity) bool {
		asserted := assertedAffiliations(identity)
		for _, token := range requested {
			for _, accepted := range expansions[token] {
				if asserted[accepted] {
					return true
				}
			}
		}
		return false
	}
}

// assertedAffiliations collects the user's affiliation values, lowercased,
// with the scope suffix of scoped values ("student@uni.example") stripped.
func assertedAffiliations(identity *domain.FederationIdentity) map[string]bool {
	values := make(map[string]bool)
	for _, v := range identity.Attributes[attrAffiliation] {
		values[strings.ToLower(v)] = true
	}
	for _, v := range identity.Attributes[attrScopedAffiliation] {
		if at := strings.IndexByte(v, '@'); at >= 0 {
			v = v[:at]
		}
		values[strings.ToLower(v)] = true
	}
	return values
}

// Ensure the implementation satisfies the port.
var _ ports.AffiliationProvider = (*Provider)(nil)
