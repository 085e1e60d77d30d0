//go:build unit

package flow

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// fakeMetadata serves static SSO endpoints per entity id.
type fakeMetadata struct {
	entities map[string]map[string][]domain.Endpoint
	err      error
}

func (f *fakeMetadata) SSOEndpoints(_ context.Context, entityID string) (map[string][]domain.Endpoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	endpoints, ok := f.entities[entityID]
	if !ok {
		return nil, ports.ErrEntityNotFound
	}
	return endpoints, nil
}

// fakeCodec records the last build call and returns canned encodings and
// identities.
type fakeCodec struct {
	mu sync.Mutex

	lastDesc       *domain.AuthnRequestDescriptor
	lastBinding    string
	lastRelayState string

	encodeErr error
	location  string
	body      []byte

	identity *domain.FederationIdentity
	parseErr error
}

func (f *fakeCodec) BuildAndEncode(desc *domain.AuthnRequestDescriptor, binding, relayState string) (*ports.EncodedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDesc = desc
	f.lastBinding = binding
	f.lastRelayState = relayState
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	if binding == domain.BindingHTTPRedirect {
		return &ports.EncodedMessage{Location: f.location}, nil
	}
	return &ports.EncodedMessage{Body: f.body, ContentType: "text/html"}, nil
}

func (f *fakeCodec) ParseAndValidate(_ context.Context, _ string, _ string) (*domain.FederationIdentity, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.identity, nil
}

// fakeRequests is a minimal request id store.
type fakeRequests struct {
	mu     sync.Mutex
	stored []string
	err    error
}

func (f *fakeRequests) Store(requestID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, requestID)
	return nil
}

func (f *fakeRequests) Valid(requestID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range f.stored {
		if id == requestID {
			f.stored = append(f.stored[:i], f.stored[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeRequests) GetAll() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stored...)
}

// fakeDisco implements the discovery URL helper without a real service.
type fakeDisco struct{}

func (fakeDisco) RequestURL(discoveryURL, spEntityID string, returnURL *url.URL) (*url.URL, error) {
	loc, err := url.Parse(discoveryURL)
	if err != nil {
		return nil, err
	}
	q := loc.Query()
	q.Set("entityID", spEntityID)
	q.Set("return", returnURL.String())
	loc.RawQuery = q.Encode()
	return loc, nil
}

func (fakeDisco) ParseReturn(query url.Values) string {
	return query.Get("entityID")
}

// fakeAffiliations accepts or rejects everyone.
type fakeAffiliations struct {
	accept bool
}

func (f *fakeAffiliations) Func(_ domain.Scope) domain.AffiliationFunc {
	return func(_ *domain.FederationIdentity) bool { return f.accept }
}

// fakeTransactions resolves a fixed set of tokens.
type fakeTransactions struct {
	contexts map[string]*domain.TransactionContext
}

func (f *fakeTransactions) Get(token string) (*domain.TransactionContext, error) {
	tx, ok := f.contexts[token]
	if !ok {
		return nil, ports.ErrTransactionNotFound
	}
	return tx, nil
}

var errEncodeBoom = errors.New("encode boom")

func durablePersona() *domain.Persona {
	return &domain.Persona{
		Kind:         domain.PersonaDurable,
		EntityID:     "https://broker.example/persistent",
		NameIDFormat: domain.NameIDFormatPersistent,
		ForceAuthn:   true,
		ACS: []domain.ACSEndpoint{
			{URL: "https://broker.example/acs/persistent", Binding: domain.BindingHTTPPost},
		},
	}
}

func ephemeralPersona() *domain.Persona {
	return &domain.Persona{
		Kind:         domain.PersonaEphemeral,
		EntityID:     "https://broker.example/transient",
		NameIDFormat: domain.NameIDFormatTransient,
		ForceAuthn:   true,
		ACS: []domain.ACSEndpoint{
			{URL: "https://broker.example/acs/transient", Binding: domain.BindingHTTPPost},
		},
	}
}

func newTestSP(t *testing.T, persona *domain.Persona, metadata ports.MetadataLookup, codec ports.MessageCodec) *SP {
	t.Helper()
	sp, err := NewSP(SPConfig{
		Persona:      persona,
		Codec:        codec,
		Metadata:     metadata,
		Requests:     &fakeRequests{},
		Discovery:    fakeDisco{},
		DiscoveryURL: "https://disco.example/ds",
		ReturnURL:    "https://broker.example/disco/return",
	})
	if err != nil {
		t.Fatalf("NewSP() error = %v", err)
	}
	return sp
}
