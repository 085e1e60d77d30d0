//go:build unit

package affiliation

import (
	"testing"

	"github.com/SvHu/svs/internal/core/domain"
)

func identityWith(attrs map[string][]string) *domain.FederationIdentity {
	return &domain.FederationIdentity{Attributes: attrs}
}

func TestProvider_Func(t *testing.T) {
	p := NewProvider()

	tests := []struct {
		name  string
		scope domain.Scope
		attrs map[string][]string
		want  bool
	}{
		{
			"student scope matches student",
			domain.Scope{"student"},
			map[string][]string{"eduPersonAffiliation": {"student"}},
			true,
		},
		{
			"student scope rejects staff",
			domain.Scope{"student"},
			map[string][]string{"eduPersonAffiliation": {"staff"}},
			false,
		},
		{
			"employee expands to faculty",
			domain.Scope{"employee"},
			map[string][]string{"eduPersonAffiliation": {"faculty"}},
			true,
		},
		{
			"member expands to student",
			domain.Scope{"member"},
			map[string][]string{"eduPersonAffiliation": {"student"}},
			true,
		},
		{
			"no affiliation token falls back to affiliated",
			domain.Scope{"openid", "persistent"},
			map[string][]string{"eduPersonAffiliation": {"alum"}},
			true,
		},
		{
			"fallback rejects library walk-in",
			domain.Scope{"openid"},
			map[string][]string{"eduPersonAffiliation": {"library-walk-in"}},
			false,
		},
		{
			"scoped affiliation suffix stripped",
			domain.Scope{"student"},
			map[string][]string{"eduPersonScopedAffiliation": {"student@uni.example"}},
			true,
		},
		{
			"asserted values case-insensitive",
			domain.Scope{"student"},
			map[string][]string{"eduPersonAffiliation": {"Student"}},
			true,
		},
		{
			"any of several scope tokens suffices",
			domain.Scope{"faculty", "student"},
			map[string][]string{"eduPersonAffiliation": {"student"}},
			true,
		},
		{
			"no asserted affiliations",
			domain.Scope{"student"},
			map[string][]string{},
			false,
		},
		{
			"nil attributes",
			domain.Scope{"student"},
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := p.Func(tt.scope)
			if got := check(identityWith(tt.attrs)); got != tt.want {
				t.Errorf("Func(%v)(%v) = %v, want %v", tt.scope, tt.attrs, got, tt.want)
			}
		})
	}
}

func TestAssertedAffiliations(t *testing.T) {
	got := assertedAffiliations(identityWith(map[string][]string{
		"eduPersonAffiliation":       {"Student", "MEMBER"},
		"eduPersonScopedAffiliation": {"staff@uni.example", "alum"},
	}))

	for _, want := range []string{"student", "member", "staff", "alum"} {
		if !got[want] {
			t.Errorf("assertedAffiliations missing %q: %v", want, got)
		}
	}
	if got["staff@uni.example"] {
		t.Error("scope suffix not stripped")
	}
}
