//go:build unit

package flow

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/SvHu/svs/internal/core/domain"
)

func newTestBackend(t *testing.T, durableCodec, ephemeralCodec *fakeCodec, affiliations *fakeAffiliations) *Backend {
	t.Helper()

	metadata := &fakeMetadata{entities: idpOffering(domain.BindingHTTPPost, domain.BindingHTTPRedirect)}
	durable := newTestSP(t, durablePersona(), metadata, durableCodec)
	ephemeral := newTestSP(t, ephemeralPersona(), metadata, ephemeralCodec)

	registry, err := NewRegistry(durable, ephemeral)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	backend, err := NewBackend(BackendConfig{
		Registry:     registry,
		Affiliations: affiliations,
		Transactions: &fakeTransactions{contexts: map[string]*domain.TransactionContext{
			"token-1": {TransactionID: "tx-1", ClientID: "rp-1", Scope: domain.Scope{"persistent"}},
		}},
	})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	return backend
}

func assertedIdentity(nameIDFormat string, attrs map[string][]string) *domain.FederationIdentity {
	return &domain.FederationIdentity{
		NameID:       domain.NameID{Value: "asserted-name-id", Format: nameIDFormat},
		Attributes:   attrs,
		AuthnInstant: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		IdPEntityID:  "https://idp.example/sso",
	}
}

// Durable transaction end to end: discovery return sends the user to the
// IdP under the durable persona, and the response resolves to the asserted
// persistent NameID.
func TestBackend_DurableTransaction(t *testing.T) {
	durableCodec := &fakeCodec{
		body:     []byte("<html>form</html>"),
		identity: assertedIdentity(domain.NameIDFormatPersistent, map[string][]string{"eduPersonAffiliation": {"student"}}),
	}
	backend := newTestBackend(t, durableCodec, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-1", ClientID: "rp-1", Scope: domain.Scope{"persistent"}}

	instr, err := backend.HandleDiscoveryReturn(context.Background(), "https://idp.example/sso?inedugain=true", tx)
	if err != nil {
		t.Fatalf("HandleDiscoveryReturn() error = %v", err)
	}
	if instr.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200 POST form", instr.Status)
	}
	if durableCodec.lastDesc == nil {
		t.Fatal("durable persona codec never invoked")
	}
	if durableCodec.lastDesc.Issuer != "https://broker.example/persistent" {
		t.Errorf("Issuer = %q, want the durable persona", durableCodec.lastDesc.Issuer)
	}
	if durableCodec.lastRelayState != "tx-1" {
		t.Errorf("relay state = %q, want transaction id", durableCodec.lastRelayState)
	}

	result, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
	if err != nil {
		t.Fatalf("HandleAssertionConsumer() error = %v", err)
	}
	if result.UserID != "asserted-name-id" {
		t.Errorf("UserID = %q, want the persistent NameID", result.UserID)
	}
	if !result.Affiliation {
		t.Error("Affiliation = false, want true")
	}
	if result.IdPEntityID != "https://idp.example/sso" {
		t.Errorf("IdPEntityID = %q", result.IdPEntityID)
	}
	if result.AuthnInstant.IsZero() {
		t.Error("AuthnInstant not carried through")
	}
}

// Ephemeral transaction: a transient scope resolves to a generated
// identifier unrelated to anything asserted.
func TestBackend_EphemeralTransaction(t *testing.T) {
	ephemeralCodec := &fakeCodec{
		identity: assertedIdentity(domain.NameIDFormatTransient, map[string][]string{"eduPersonAffiliation": {"student"}}),
	}
	backend := newTestBackend(t, &fakeCodec{}, ephemeralCodec, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-2", ClientID: "rp-1", Scope: domain.Scope{"transient"}}

	first, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
	if err != nil {
		t.Fatalf("HandleAssertionConsumer() error = %v", err)
	}
	second, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
	if err != nil {
		t.Fatalf("HandleAssertionConsumer() error = %v", err)
	}

	if first.UserID == "" {
		t.Fatal("UserID is empty")
	}
	if first.UserID == "asserted-name-id" {
		t.Error("ephemeral UserID derived from asserted data")
	}
	if first.UserID == second.UserID {
		t.Error("ephemeral UserID repeated across transactions")
	}
}

// Non-member IdP: the transaction aborts before any authentication request
// is built.
func TestBackend_NonFederationMember(t *testing.T) {
	durableCodec := &fakeCodec{}
	backend := newTestBackend(t, durableCodec, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-3", ClientID: "rp-1", Scope: domain.Scope{"persistent"}}

	_, err := backend.HandleDiscoveryReturn(context.Background(), "https://idp.example/sso?inedugain=false", tx)
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.ErrCodeNonFederationMember {
		t.Fatalf("error = %v, want non_federation_member", err)
	}
	if appErr.IdPEntityID != "https://idp.example/sso" {
		t.Errorf("IdPEntityID = %q, want canonical id without the tag", appErr.IdPEntityID)
	}
	if durableCodec.lastDesc != nil {
		t.Error("authentication request built for a non-member IdP")
	}
}

// The decorated entity id from discovery never reaches the metadata lookup.
func TestBackend_DiscoveryReturnCanonicalizes(t *testing.T) {
	durableCodec := &fakeCodec{body: []byte("form")}
	backend := newTestBackend(t, durableCodec, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-4", ClientID: "rp-1", Scope: domain.Scope{"persistent"}}

	// idpOffering registers the IdP under the canonical id only; success
	// means the query-decorated form was stripped before lookup.
	if _, err := backend.HandleDiscoveryReturn(context.Background(), "https://idp.example/sso?inedugain=true&foo=bar#frag", tx); err != nil {
		t.Fatalf("HandleDiscoveryReturn() error = %v", err)
	}
}

func TestBackend_DiscoveryReturnEmptyChoice(t *testing.T) {
	backend := newTestBackend(t, &fakeCodec{}, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-5", Scope: domain.Scope{"transient"}}

	_, err := backend.HandleDiscoveryReturn(context.Background(), "", tx)
	if err == nil {
		t.Fatal("HandleDiscoveryReturn() error = nil, want error on empty choice")
	}
}

// Authentication failure: an empty response payload is a negative result.
func TestBackend_AuthnFailure(t *testing.T) {
	backend := newTestBackend(t, &fakeCodec{}, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-6", Scope: domain.Scope{"transient"}}

	_, err := backend.HandleAssertionConsumer(context.Background(), "", domain.BindingHTTPPost, tx)
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.ErrCodeAuthnFailure {
		t.Fatalf("error = %v, want authn_failure", err)
	}
	if !appErr.Negative() {
		t.Error("authn_failure must be negative")
	}
}

// Unresolvable identity: durable scope, but the IdP asserted nothing a
// durable identifier can be derived from.
func TestBackend_IdentityUnresolvable(t *testing.T) {
	durableCodec := &fakeCodec{
		identity: assertedIdentity(domain.NameIDFormatTransient, map[string][]string{"eduPersonAffiliation": {"student"}}),
	}
	backend := newTestBackend(t, durableCodec, &fakeCodec{}, &fakeAffiliations{accept: true})
	tx := &domain.TransactionContext{TransactionID: "tx-7", Scope: domain.Scope{"persistent"}}

	_, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.ErrCodeIdentityUnresolvable {
		t.Fatalf("error = %v, want identity_unresolvable", err)
	}
	if !appErr.Negative() {
		t.Error("identity_unresolvable must be negative")
	}
	if appErr.IdPEntityID != "https://idp.example/sso" {
		t.Errorf("IdPEntityID = %q, want asserting IdP for audit", appErr.IdPEntityID)
	}
}

func TestBackend_AffiliationDenied(t *testing.T) {
	durableCodec := &fakeCodec{
		identity: assertedIdentity(domain.NameIDFormatPersistent, map[string][]string{"eduPersonAffiliation": {"library-walk-in"}}),
	}
	backend := newTestBackend(t, durableCodec, &fakeCodec{}, &fakeAffiliations{accept: false})
	tx := &domain.TransactionContext{TransactionID: "tx-8", Scope: domain.Scope{"persistent"}}

	_, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.ErrCodeAffiliationDenied {
		t.Fatalf("error = %v, want affiliation_denied", err)
	}
	if !appErr.Negative() {
		t.Error("affiliation_denied must be negative")
	}
}

func TestBackend_RedirectToDiscovery(t *testing.T) {
	backend := newTestBackend(t, &fakeCodec{}, &fakeCodec{}, &fakeAffiliations{accept: true})

	instr, err := backend.RedirectToDiscovery("tx-9", domain.Scope{"persistent"})
	if err != nil {
		t.Fatalf("RedirectToDiscovery() error = %v", err)
	}
	if instr.Status != http.StatusSeeOther {
		t.Errorf("Status = %d, want 303", instr.Status)
	}
	if instr.Location == "" {
		t.Error("Location is empty")
	}
}

func TestBackend_Transaction(t *testing.T) {
	backend := newTestBackend(t, &fakeCodec{}, &fakeCodec{}, &fakeAffiliations{accept: true})

	tx, err := backend.Transaction("token-1")
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if tx.TransactionID != "tx-1" || tx.ClientID != "rp-1" {
		t.Errorf("Transaction() = %+v", tx)
	}

	if _, err := backend.Transaction("bogus"); err == nil {
		t.Error("Transaction(bogus) error = nil, want not found")
	}
}

// Concurrent transactions share the personas but nothing else; results must
// stay independent.
func TestBackend_ConcurrentTransactions(t *testing.T) {
	ephemeralCodec := &fakeCodec{
		identity: assertedIdentity(domain.NameIDFormatTransient, map[string][]string{"eduPersonAffiliation": {"member"}}),
	}
	backend := newTestBackend(t, &fakeCodec{}, ephemeralCodec, &fakeAffiliations{accept: true})

	const n = 50
	results := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			tx := &domain.TransactionContext{TransactionID: "tx", Scope: domain.Scope{"transient"}}
			result, err := backend.HandleAssertionConsumer(context.Background(), "cmVzcG9uc2U=", domain.BindingHTTPPost, tx)
			if err != nil {
				errs <- err
				return
			}
			results <- result.UserID
		}(i)
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		select {
		case err := <-errs:
			t.Fatalf("HandleAssertionConsumer() error = %v", err)
		case id := <-results:
			if seen[id] {
				t.Fatalf("duplicate ephemeral id across concurrent transactions")
			}
			seen[id] = true
		}
	}
}

func TestRegistry_Select(t *testing.T) {
	metadata := &fakeMetadata{}
	durable := newTestSP(t, durablePersona(), metadata, &fakeCodec{})
	ephemeral := newTestSP(t, ephemeralPersona(), metadata, &fakeCodec{})
	registry, err := NewRegistry(durable, ephemeral)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if got := registry.Select(domain.Scope{"persistent"}); got != durable {
		t.Error("Select(persistent) did not pick the durable persona")
	}
	if got := registry.Select(domain.Scope{"transient"}); got != ephemeral {
		t.Error("Select(transient) did not pick the ephemeral persona")
	}
	if got := registry.Select(nil); got != ephemeral {
		t.Error("Select(nil) did not default to the ephemeral persona")
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	metadata := &fakeMetadata{}
	durable := newTestSP(t, durablePersona(), metadata, &fakeCodec{})
	ephemeral := newTestSP(t, ephemeralPersona(), metadata, &fakeCodec{})

	if _, err := NewRegistry(nil, ephemeral); err == nil {
		t.Error("NewRegistry(nil, ephemeral) error = nil")
	}
	if _, err := NewRegistry(durable, nil); err == nil {
		t.Error("NewRegistry(durable, nil) error = nil")
	}
	if _, err := NewRegistry(ephemeral, durable); err == nil {
		t.Error("NewRegistry with swapped personas error = nil, want kind mismatch")
	}
}
