package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordDiscoveryRedirect records one user sent to the discovery service.
	RecordDiscoveryRedirect()

	// RecordAuthnRequest records an authentication request issued to an IdP
	// over the chosen binding.
	RecordAuthnRequest(binding string)

	// RecordResolution records the outcome code of a response resolution
	// ("resolved", or the error code of the failure).
	RecordResolution(outcome string)

	// RecordMetadataLookup records an MDQ lookup attempt.
	RecordMetadataLookup(success bool)
}
