package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SvHu/svs/internal/core/ports"
)

// PrometheusMetricsRecorder records broker flow metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	discoveryRedirectsTotal prometheus.Counter
	authnRequestsTotal      *prometheus.CounterVec
	resolutionsTotal        *prometheus.CounterVec
	metadataLookupsTotal    *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a recorder registered with the
// default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a recorder with a custom
// registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	discoveryRedirectsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "svs_discovery_redirects_total",
		Help: "Total users redirected to the discovery service",
	})

	authnRequestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "svs_authn_requests_total",
		Help: "Total SAML authentication requests issued, by binding",
	}, []string{"binding"})

	resolutionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "svs_resolutions_total",
		Help: "Total authentication response resolutions, by outcome",
	}, []string{"outcome"})

	metadataLookupsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "svs_metadata_lookups_total",
		Help: "Total MDQ metadata lookups, by result",
	}, []string{"result"})

	reg.MustRegister(discoveryRedirectsTotal, authnRequestsTotal, resolutionsTotal, metadataLookupsTotal)

	return &PrometheusMetricsRecorder{
		discoveryRedirectsTotal: discoveryRedirectsTotal,
		authnRequestsTotal:      authnRequestsTotal,
		resolutionsTotal:        resolutionsTotal,
		metadataLookupsTotal:    metadataLookupsTotal,
	}
}

// RecordDiscoveryRedirect implements ports.MetricsRecorder.
func (r *PrometheusMetricsRecorder) RecordDiscoveryRedirect() {
	r.discoveryRedirectsTotal.Inc()
}

// RecordAuthnRequest implements ports.MetricsRecorder.
func (r *PrometheusMetricsRecorder) RecordAuthnRequest(binding string) {
	r.authnRequestsTotal.WithLabelValues(binding).Inc()
}

// RecordResolution implements ports.MetricsRecorder.
func (r *PrometheusMetricsRecorder) RecordResolution(outcome string) {
	r.resolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordMetadataLookup implements ports.MetricsRecorder.
func (r *PrometheusMetricsRecorder) RecordMetadataLookup(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.metadataLookupsTotal.WithLabelValues(result).Inc()
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
