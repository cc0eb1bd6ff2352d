package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/endpoints"
	"github.com/prebid/tcf-adgate/metrics"
	"github.com/prebid/tcf-adgate/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

type Router struct {
	*httprouter.Router
	MetricsEngine metrics.MetricsEngine
}

// New registers the consent endpoints. /metrics is served here unless a dedicated
// Prometheus port is configured or gatherer is nil.
func New(cfg *config.Configuration, svc endpoints.ConsentService, me metrics.MetricsEngine, gatherer prometheus.Gatherer, version, revision string) *Router {
	if me == nil {
		me = metrics.NewNilMetrics()
	}
	r := &Router{
		Router:        httprouter.New(),
		MetricsEngine: me,
	}

	r.GET("/consent/:user", endpoints.NewCheckEndpoint(svc, me))
	r.PUT("/consent/:user/tcstring", endpoints.NewTCStringEndpoint(svc, me))
	r.PUT("/consent/:user/status", endpoints.NewStatusEndpoint(svc, me))
	r.HandlerFunc("GET", "/version", endpoints.NewVersionEndpoint(version, revision))

	if gatherer != nil && cfg.Metrics.Prometheus.Port == 0 {
		r.Handler("GET", "/metrics", server.NewPrometheusHandler(cfg.Metrics.Prometheus, gatherer))
	}
	return r
}

// SupportCORS wraps handler so that consent can be read and written from web pages on any
// origin. Credentials are allowed, so the origin is reflected rather than answered with "*".
//
// For more info, see:
//
// - https://github.com/rs/cors/issues/55
// - https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS/Errors/CORSNotSupportingCredentials
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
