package mdq

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/saml"
	"go.uber.org/zap"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// DefaultCacheTTL bounds how long a fetched entity descriptor is reused
// before the MDQ service is asked again.
const DefaultCacheTTL = 1 * time.Hour

// Client fetches per-entity SAML metadata from an MDQ service. Entity ids
// are addressed through the sha1 transform ("{sha1}" + hex digest of the
// entity id), and fetched descriptors are cached with a TTL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    ports.MetricsRecorder

	mu    sync.RWMutex
	cache map[string]cachedEntity
}

type cachedEntity struct {
	descriptor *saml.EntityDescriptor
	expires    time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger for lookup events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches a metrics recorder for lookup results.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCacheTTL overrides the descriptor cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithHTTPClient overrides the HTTP client. The default carries a 30 second
// timeout; callers additionally bound each lookup with the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an MDQ client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheTTL: DefaultCacheTTL,
		logger:   zap.NewNop(),
		cache:    make(map[string]cachedEntity),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sha1EntityTransform implements the MDQ sha1 identifier transform.
func sha1EntityTransform(entityID string) string {
	sum := sha1.Sum([]byte(entityID))
	return "{sha1}" + hex.EncodeToString(sum[:])
}

// SSOEndpoints returns the IdP's single-sign-on endpoints keyed by binding.
// Implements ports.MetadataLookup.
func (c *Client) SSOEndpoints(ctx context.Context, entityID string) (map[string][]domain.Endpoint, error) {
	ed, err := c.EntityDescriptor(ctx, entityID)
	if err != nil {
		return nil, err
	}

	endpoints := make(map[string][]domain.Endpoint)
	for _, desc := range ed.IDPSSODescriptors {
		for _, sso := range desc.SingleSignOnServices {
			endpoints[sso.Binding] = append(endpoints[sso.Binding], domain.Endpoint{Location: sso.Location})
		}
	}
	return endpoints, nil
}

// EntityDescriptor fetches (or returns the cached) full entity descriptor
// for an entity id. The message codec uses it for validation certificates.
func (c *Client) EntityDescriptor(ctx context.Context, entityID string) (*saml.EntityDescriptor, error) {
	c.mu.RLock()
	entry, ok := c.cache[entityID]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.descriptor, nil
	}

	ed, err := c.fetch(ctx, entityID)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordMetadataLookup(false)
		}
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordMetadataLookup(true)
	}

	c.mu.Lock()
	c.cache[entityID] = cachedEntity{descriptor: ed, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()
	return ed, nil
}

func (c *Client) fetch(ctx context.Context, entityID string) (*saml.EntityDescriptor, error) {
	loc := c.baseURL + "/entities/" + url.PathEscape(sha1EntityTransform(entityID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/samlmetadata+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("mdq fetch failed", zap.String("entity_id", entityID), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ports.ErrEntityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mdq service returned status %d for %q", resp.StatusCode, entityID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	ed, err := parseEntityDescriptor(data, entityID)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("mdq entity fetched",
		zap.String("entity_id", entityID),
		zap.Int("idp_descriptors", len(ed.IDPSSODescriptors)),
	)
	return ed, nil
}

// Ensure Client implements the metadata port.
var _ ports.MetadataLookup = (*Client)(nil)
