package metrics

import (
	"github.com/prebid/tcf-adgate/gdpr"
	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordClassification mock
func (me *MetricsEngineMock) RecordClassification(config gdpr.AdConfiguration) {
	me.Called(config)
}

// RecordExpiryCheck mock
func (me *MetricsEngineMock) RecordExpiryCheck(expired bool) {
	me.Called(expired)
}

// RecordTimestampWarning mock
func (me *MetricsEngineMock) RecordTimestampWarning() {
	me.Called()
}

// RecordPreviousStatus mock
func (me *MetricsEngineMock) RecordPreviousStatus(status gdpr.PreviousConsentStatus) {
	me.Called(status)
}

// RecordIngest mock
func (me *MetricsEngineMock) RecordIngest(status IngestStatus) {
	me.Called(status)
}

// RecordStoreError mock
func (me *MetricsEngineMock) RecordStoreError(op StoreOperation) {
	me.Called(op)
}

// RecordRequest mock
func (me *MetricsEngineMock) RecordRequest(endpoint Endpoint, status RequestStatus) {
	me.Called(endpoint, status)
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}
