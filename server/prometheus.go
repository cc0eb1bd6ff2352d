package server

import (
	"net/http"
	"strconv"

	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newPrometheusServer(cfg *config.Configuration, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:    cfg.Host + ":" + strconv.Itoa(cfg.Metrics.Prometheus.Port),
		Handler: NewPrometheusHandler(cfg.Metrics.Prometheus, gatherer),
	}
}

// NewPrometheusHandler serves the metrics of gatherer in the Prometheus exposition format.
func NewPrometheusHandler(cfg config.PrometheusMetrics, gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:            loggerForPrometheus{},
		MaxRequestsInFlight: 5,
		Timeout:             cfg.Timeout(),
	})
}

type loggerForPrometheus struct{}

func (loggerForPrometheus) Println(v ...interface{}) {
	logger.Warnf("%v", v)
}
