package prometheusmetrics

import (
	"strconv"

	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/gdpr"
	"github.com/prebid/tcf-adgate/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	classifications   *prometheus.CounterVec
	expiryChecks      *prometheus.CounterVec
	timestampWarnings prometheus.Counter
	previousStatuses  *prometheus.CounterVec
	ingests           *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
	requests          *prometheus.CounterVec
	connectionsOpened *prometheus.CounterVec
	connectionsClosed *prometheus.CounterVec
}

const (
	adConfigurationLabel = "ad_configuration"
	expiredLabel         = "expired"
	statusLabel          = "status"
	operationLabel       = "operation"
	endpointLabel        = "endpoint"
	successLabel         = "success"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.classifications = newCounter(cfg, metrics.Registry,
		"classifications",
		"Count of ad configuration classifications labeled by result.",
		[]string{adConfigurationLabel})

	metrics.expiryChecks = newCounter(cfg, metrics.Registry,
		"expiry_checks",
		"Count of TC string expiry checks labeled by whether the string was removed.",
		[]string{expiredLabel})

	metrics.timestampWarnings = newCounterWithoutLabels(cfg, metrics.Registry,
		"timestamp_warnings",
		"Count of TC string timestamps containing symbols outside the base64 alphabet.")

	metrics.previousStatuses = newCounter(cfg, metrics.Registry,
		"previous_statuses",
		"Count of previous consent status reads labeled by status.",
		[]string{statusLabel})

	metrics.ingests = newCounter(cfg, metrics.Registry,
		"tcstring_ingests",
		"Count of TC strings stored labeled by status.",
		[]string{statusLabel})

	metrics.storeErrors = newCounter(cfg, metrics.Registry,
		"store_errors",
		"Count of failed preferences writes labeled by operation.",
		[]string{operationLabel})

	metrics.requests = newCounter(cfg, metrics.Registry,
		"requests",
		"Count of HTTP requests labeled by endpoint and status.",
		[]string{endpointLabel, statusLabel})

	metrics.connectionsOpened = newCounter(cfg, metrics.Registry,
		"connections_opened",
		"Count of accepted connections labeled by success.",
		[]string{successLabel})

	metrics.connectionsClosed = newCounter(cfg, metrics.Registry,
		"connections_closed",
		"Count of closed connections labeled by success.",
		[]string{successLabel})

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func preloadLabelValues(m *Metrics) {
	for _, c := range gdpr.AdConfigurations() {
		m.classifications.WithLabelValues(c.String())
	}
	for _, expired := range []bool{true, false} {
		m.expiryChecks.WithLabelValues(strconv.FormatBool(expired))
	}
	for _, s := range []gdpr.PreviousConsentStatus{
		gdpr.PreviousStatusUnknown,
		gdpr.PreviousStatusNotRequired,
		gdpr.PreviousStatusRequired,
		gdpr.PreviousStatusObtained,
	} {
		m.previousStatuses.WithLabelValues(s.String())
	}
	for _, s := range metrics.IngestStatuses() {
		m.ingests.WithLabelValues(string(s))
	}
	for _, op := range metrics.StoreOperations() {
		m.storeErrors.WithLabelValues(string(op))
	}
	for _, e := range metrics.Endpoints() {
		for _, s := range metrics.RequestStatuses() {
			m.requests.WithLabelValues(string(e), string(s))
		}
	}
	for _, success := range []bool{true, false} {
		m.connectionsOpened.WithLabelValues(strconv.FormatBool(success))
		m.connectionsClosed.WithLabelValues(strconv.FormatBool(success))
	}
}

func (m *Metrics) RecordClassification(adConfig gdpr.AdConfiguration) {
	m.classifications.With(prometheus.Labels{
		adConfigurationLabel: adConfig.String(),
	}).Inc()
}

func (m *Metrics) RecordExpiryCheck(expired bool) {
	m.expiryChecks.With(prometheus.Labels{
		expiredLabel: strconv.FormatBool(expired),
	}).Inc()
}

func (m *Metrics) RecordTimestampWarning() {
	m.timestampWarnings.Inc()
}

func (m *Metrics) RecordPreviousStatus(status gdpr.PreviousConsentStatus) {
	m.previousStatuses.With(prometheus.Labels{
		statusLabel: status.String(),
	}).Inc()
}

func (m *Metrics) RecordIngest(status metrics.IngestStatus) {
	m.ingests.With(prometheus.Labels{
		statusLabel: string(status),
	}).Inc()
}

func (m *Metrics) RecordStoreError(op metrics.StoreOperation) {
	m.storeErrors.With(prometheus.Labels{
		operationLabel: string(op),
	}).Inc()
}

func (m *Metrics) RecordRequest(endpoint metrics.Endpoint, status metrics.RequestStatus) {
	m.requests.With(prometheus.Labels{
		endpointLabel: string(endpoint),
		statusLabel:   string(status),
	}).Inc()
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	m.connectionsOpened.With(prometheus.Labels{
		successLabel: strconv.FormatBool(success),
	}).Inc()
}

func (m *Metrics) RecordConnectionClose(success bool) {
	m.connectionsClosed.With(prometheus.Labels{
		successLabel: strconv.FormatBool(success),
	}).Inc()
}
