package metrics

import (
	"github.com/SvHu/svs/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordDiscoveryRedirect is a no-op.
func (n *NoopMetricsRecorder) RecordDiscoveryRedirect() {}

// RecordAuthnRequest is a no-op.
func (n *NoopMetricsRecorder) RecordAuthnRequest(binding string) {}

// RecordResolution is a no-op.
func (n *NoopMetricsRecorder) RecordResolution(outcome string) {}

// RecordMetadataLookup is a no-op.
func (n *NoopMetricsRecorder) RecordMetadataLookup(success bool) {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
