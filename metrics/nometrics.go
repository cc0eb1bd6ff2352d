package metrics

import "github.com/prebid/tcf-adgate/gdpr"

// NewNilMetrics returns a MetricsEngine that drops everything.
// The service can use this if it doesn't want to export metrics anywhere.
func NewNilMetrics() MetricsEngine {
	return &nilMetrics{}
}

type nilMetrics struct{}

func (m *nilMetrics) RecordClassification(config gdpr.AdConfiguration) {
}

func (m *nilMetrics) RecordExpiryCheck(expired bool) {
}

func (m *nilMetrics) RecordTimestampWarning() {
}

func (m *nilMetrics) RecordPreviousStatus(status gdpr.PreviousConsentStatus) {
}

func (m *nilMetrics) RecordIngest(status IngestStatus) {
}

func (m *nilMetrics) RecordStoreError(op StoreOperation) {
}

func (m *nilMetrics) RecordRequest(endpoint Endpoint, status RequestStatus) {
}

func (m *nilMetrics) RecordConnectionAccept(success bool) {
}

func (m *nilMetrics) RecordConnectionClose(success bool) {
}
