//go:build unit

package svs

import "testing"

func TestReexports(t *testing.T) {
	if PersonaForScope(Scope{"persistent"}) != PersonaDurable {
		t.Error("PersonaForScope(persistent) != PersonaDurable")
	}
	if got := CanonicalEntityID("https://idp.example/sso?inedugain=true"); got != "https://idp.example/sso" {
		t.Errorf("CanonicalEntityID() = %q", got)
	}
	if member, _ := FederationMember("https://idp.example/sso?inedugain=false", ""); member {
		t.Error("FederationMember(inedugain=false) = true")
	}

	err := UnknownIdPError("https://idp.example/sso")
	if err.Code != ErrCodeUnknownIdP {
		t.Errorf("Code = %q", err.Code)
	}
	if err.Code.Negative() {
		t.Error("unknown_idp must not be a negative result")
	}
}
