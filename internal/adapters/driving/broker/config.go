// Package broker assembles a runnable backend from configuration: it loads
// the two persona definitions, their key material, and the shared services,
// and wires the adapters to the core flow.
package broker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SvHu/svs/internal/core/domain"
)

// Config holds the broker configuration.
type Config struct {
	// BaseURL is the externally visible base URL of the broker (required).
	BaseURL string `yaml:"base_url"`

	// MDQURL is the base URL of the federation MDQ metadata service (required).
	MDQURL string `yaml:"mdq_url"`

	// DiscoveryURL is the URL of the federation discovery service (required).
	DiscoveryURL string `yaml:"discovery_url"`

	// FederationParam is the query parameter on discovery-returned entity
	// ids that tags federation membership. Defaults to "inedugain".
	FederationParam string `yaml:"federation_param,omitempty"`

	// Personas configures the two SP personas, keyed "persistent" and
	// "transient". Both are required.
	Personas map[string]PersonaConfig `yaml:"personas"`
}

// PersonaConfig configures one SP persona.
type PersonaConfig struct {
	// EntityID is the SAML entity id of this persona (required).
	EntityID string `yaml:"entity_id"`

	// ACS lists the assertion-consumer endpoints, first one first: the
	// first entry is the default response endpoint (at least one required).
	ACS []ACSConfig `yaml:"acs"`

	// DiscoReturnURL is the endpoint the discovery service sends the user
	// back to for this persona (required).
	DiscoReturnURL string `yaml:"disco_return_url"`

	// CertFile / KeyFile hold the persona's PEM key material. Required when
	// SignRequests is set; otherwise optional (used for assertion
	// decryption when present).
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`

	// SignRequests enables enveloped signing of outbound requests.
	SignRequests bool `yaml:"sign_requests,omitempty"`

	// ForceAuthn asks IdPs to re-authenticate even with a live session.
	// Defaults to true, matching the broker's validation purpose.
	ForceAuthn *bool `yaml:"force_authn,omitempty"`

	// AllowUnsolicited accepts responses that answer no recorded request.
	// Defaults to true: the broker cannot count on having issued the
	// original request.
	AllowUnsolicited *bool `yaml:"allow_unsolicited,omitempty"`
}

// ACSConfig is one assertion-consumer endpoint.
type ACSConfig struct {
	URL     string `yaml:"url"`
	Binding string `yaml:"binding"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration. Missing personas are fatal here, at
// startup, never at request time.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return domain.ConfigError("base_url is required")
	}
	if c.MDQURL == "" {
		return domain.ConfigError("mdq_url is required")
	}
	if c.DiscoveryURL == "" {
		return domain.ConfigError("discovery_url is required")
	}
	for _, key := range []string{domain.ScopePersistent, domain.ScopeTransient} {
		pc, ok := c.Personas[key]
		if !ok {
			return domain.ConfigError(fmt.Sprintf("persona %q is required", key))
		}
		if err := pc.validate(key); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PersonaConfig) validate(key string) error {
	if pc.EntityID == "" {
		return domain.ConfigError(fmt.Sprintf("persona %q: entity_id is required", key))
	}
	if len(pc.ACS) == 0 {
		return domain.ConfigError(fmt.Sprintf("persona %q: at least one acs endpoint is required", key))
	}
	for i, acs := range pc.ACS {
		if acs.URL == "" || acs.Binding == "" {
			return domain.ConfigError(fmt.Sprintf("persona %q: acs[%d] needs url and binding", key, i))
		}
	}
	if pc.DiscoReturnURL == "" {
		return domain.ConfigError(fmt.Sprintf("persona %q: disco_return_url is required", key))
	}
	if pc.SignRequests && (pc.CertFile == "" || pc.KeyFile == "") {
		return domain.ConfigError(fmt.Sprintf("persona %q: sign_requests needs cert_file and key_file", key))
	}
	return nil
}

// persona materializes the immutable domain persona for a config entry.
func (pc *PersonaConfig) persona(kind domain.PersonaKind) *domain.Persona {
	format := domain.NameIDFormatTransient
	if kind == domain.PersonaDurable {
		format = domain.NameIDFormatPersistent
	}
	forceAuthn := true
	if pc.ForceAuthn != nil {
		forceAuthn = *pc.ForceAuthn
	}
	allowUnsolicited := true
	if pc.AllowUnsolicited != nil {
		allowUnsolicited = *pc.AllowUnsolicited
	}
	acs := make([]domain.ACSEndpoint, 0, len(pc.ACS))
	for _, e := range pc.ACS {
		acs = append(acs, domain.ACSEndpoint{URL: e.URL, Binding: e.Binding})
	}
	return &domain.Persona{
		Kind:             kind,
		EntityID:         pc.EntityID,
		NameIDFormat:     format,
		AllowUnsolicited: allowUnsolicited,
		ForceAuthn:       forceAuthn,
		ACS:              acs,
	}
}
