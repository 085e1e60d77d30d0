package broker

import (
	"crypto/rsa"
	"crypto/x509"
	"time"

	"go.uber.org/zap"

	"github.com/SvHu/svs/internal/adapters/driven/affiliation"
	"github.com/SvHu/svs/internal/adapters/driven/discovery"
	"github.com/SvHu/svs/internal/adapters/driven/mdq"
	"github.com/SvHu/svs/internal/adapters/driven/message"
	"github.com/SvHu/svs/internal/adapters/driven/request"
	"github.com/SvHu/svs/internal/adapters/driven/signing"
	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/flow"
	"github.com/SvHu/svs/internal/core/ports"
)

// requestCleanupInterval is how often expired request ids are pruned.
const requestCleanupInterval = 5 * time.Minute

// Backend bundles the wired flow backend with the resources that need
// closing on shutdown.
type Backend struct {
	*flow.Backend

	stores []*request.InMemoryRequestStore
}

// Close releases background resources of the wired adapters.
func (b *Backend) Close() error {
	for _, s := range b.stores {
		_ = s.Close()
	}
	return nil
}

// BuildOptions carries the optional collaborators of Build.
type BuildOptions struct {
	Logger *zap.Logger
	// Metrics receives flow and metadata measurements; nil disables.
	Metrics ports.MetricsRecorder
	// Transactions resolves opaque transaction tokens; nil leaves token
	// resolution to the RP-facing layer.
	Transactions ports.TransactionStore
	// Affiliations overrides the default affiliation policy.
	Affiliations ports.AffiliationProvider
}

// Build wires a Backend from validated configuration. Everything built here
// is immutable afterwards and shared across concurrent transactions.
func Build(cfg *Config, opts BuildOptions) (*Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mdqClient := mdq.NewClient(cfg.MDQURL,
		mdq.WithLogger(logger.Named("mdq")),
		mdq.WithMetrics(opts.Metrics),
	)
	disco := discovery.NewService()

	affiliations := opts.Affiliations
	if affiliations == nil {
		affiliations = affiliation.NewProvider()
	}

	b := &Backend{}

	durable, err := b.buildSP(cfg, domain.PersonaDurable, mdqClient, disco, logger, opts.Metrics)
	if err != nil {
		return nil, err
	}
	ephemeral, err := b.buildSP(cfg, domain.PersonaEphemeral, mdqClient, disco, logger, opts.Metrics)
	if err != nil {
		return nil, err
	}

	registry, err := flow.NewRegistry(durable, ephemeral)
	if err != nil {
		return nil, err
	}

	backend, err := flow.NewBackend(flow.BackendConfig{
		Registry:        registry,
		Affiliations:    affiliations,
		Transactions:    opts.Transactions,
		FederationParam: cfg.FederationParam,
		Logger:          logger,
		Metrics:         opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	b.Backend = backend
	return b, nil
}

func (b *Backend) buildSP(cfg *Config, kind domain.PersonaKind, mdqClient *mdq.Client, disco ports.DiscoveryService, logger *zap.Logger, metrics ports.MetricsRecorder) (*flow.SP, error) {
	pc := cfg.Personas[kind.String()]
	persona := pc.persona(kind)

	var (
		key  *rsa.PrivateKey
		cert *x509.Certificate
		err  error
	)
	if pc.KeyFile != "" {
		if key, err = LoadPrivateKey(pc.KeyFile); err != nil {
			return nil, err
		}
	}
	if pc.CertFile != "" {
		if cert, err = LoadCertificate(pc.CertFile); err != nil {
			return nil, err
		}
	}

	var signer ports.RequestSigner
	if pc.SignRequests {
		signer = signing.NewXMLDsigSigner(key, cert)
	}

	requests := request.NewInMemoryRequestStoreWithCleanup(requestCleanupInterval)
	b.stores = append(b.stores, requests)

	codec, err := message.NewCodec(message.Config{
		Persona:     persona,
		Key:         key,
		Certificate: cert,
		Signer:      signer,
		Metadata:    mdqClient,
		Requests:    requests,
	})
	if err != nil {
		return nil, err
	}

	return flow.NewSP(flow.SPConfig{
		Persona:      persona,
		Codec:        codec,
		Metadata:     mdqClient,
		Requests:     requests,
		Discovery:    disco,
		DiscoveryURL: cfg.DiscoveryURL,
		ReturnURL:    pc.DiscoReturnURL,
		Logger:       logger.Named(kind.String()),
		Metrics:      metrics,
	})
}
