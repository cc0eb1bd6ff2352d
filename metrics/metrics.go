package metrics

import "github.com/prebid/tcf-adgate/gdpr"

// StoreOperation labels the preferences write that failed.
type StoreOperation string

const (
	StoreOperationRemove StoreOperation = "remove"
	StoreOperationWrite  StoreOperation = "write"
)

// StoreOperations returns all possible store operations.
func StoreOperations() []StoreOperation {
	return []StoreOperation{
		StoreOperationRemove,
		StoreOperationWrite,
	}
}

// IngestStatus labels the outcome of storing a TC string.
type IngestStatus string

const (
	IngestStatusOK        IngestStatus = "ok"
	IngestStatusMalformed IngestStatus = "malformed"
	IngestStatusErr       IngestStatus = "err"
)

// IngestStatuses returns all possible ingest statuses.
func IngestStatuses() []IngestStatus {
	return []IngestStatus{
		IngestStatusOK,
		IngestStatusMalformed,
		IngestStatusErr,
	}
}

// Endpoint labels the HTTP endpoint that served a request.
type Endpoint string

const (
	EndpointCheck    Endpoint = "check"
	EndpointTCString Endpoint = "tcstring"
	EndpointStatus   Endpoint = "status"
)

// Endpoints returns all possible endpoints.
func Endpoints() []Endpoint {
	return []Endpoint{
		EndpointCheck,
		EndpointTCString,
		EndpointStatus,
	}
}

// RequestStatus labels the outcome of a request.
type RequestStatus string

const (
	RequestStatusOK       RequestStatus = "ok"
	RequestStatusBadInput RequestStatus = "badinput"
	RequestStatusErr      RequestStatus = "err"
)

// RequestStatuses returns all possible request statuses.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusOK,
		RequestStatusBadInput,
		RequestStatusErr,
	}
}

// MetricsEngine is a generic interface to record consent metrics into the desired backend.
type MetricsEngine interface {
	RecordClassification(config gdpr.AdConfiguration)
	RecordExpiryCheck(expired bool)
	RecordTimestampWarning()
	RecordPreviousStatus(status gdpr.PreviousConsentStatus)
	RecordIngest(status IngestStatus)
	RecordStoreError(op StoreOperation)
	RecordRequest(endpoint Endpoint, status RequestStatus)
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
}
