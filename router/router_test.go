package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/consent"
	prometheusmetrics "github.com/prebid/tcf-adgate/metrics/prometheus"
	"github.com/prebid/tcf-adgate/prefs/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConsentTCString = "CPuKGCPPuKGCPAKABBENCZCAAPLAAELAAAAAACtAACAAAA"

func newTestRouter(t *testing.T, prometheusPort int) (*Router, *prometheusmetrics.Metrics) {
	t.Helper()
	cfg := &config.Configuration{
		Port: 8000,
		Consent: config.Consent{
			VendorRequirement: "11",
			MaxAgeDays:        365000,
		},
	}
	cfg.Metrics.Prometheus = config.PrometheusMetrics{Port: prometheusPort, Namespace: "tcf", Subsystem: "adgate"}
	m := prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
	svc := consent.NewService(memory.NewStore(), cfg.Consent, m)
	return New(cfg, svc, m, m.Registry, "", "abc123"), m
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	w := serve(r, "PUT", "/consent/u-1/tcstring", fullConsentTCString)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = serve(r, "PUT", "/consent/u-1/status", "2")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = serve(r, "GET", "/consent/u-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ad_configuration":"ALL","ads":true,"personalized_ads":true,"expired":false,"previous_status":"REQUIRED"}`, w.Body.String())

	w = serve(r, "GET", "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revision":"abc123","version":"not-set"}`, w.Body.String())

	w = serve(r, "POST", "/consent/u-1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	tests := []struct {
		description    string
		prometheusPort int
		expectedCode   int
	}{
		{
			description:    "served by the main router",
			prometheusPort: 0,
			expectedCode:   http.StatusOK,
		},
		{
			description:    "dedicated listener",
			prometheusPort: 9100,
			expectedCode:   http.StatusNotFound,
		},
	}

	for _, test := range tests {
		r, _ := newTestRouter(t, test.prometheusPort)
		serve(r, "GET", "/consent/u-1", "")

		w := serve(r, "GET", "/metrics", "")

		assert.Equal(t, test.expectedCode, w.Code, test.description)
		if test.expectedCode == http.StatusOK {
			assert.Contains(t, w.Body.String(), `tcf_adgate_classifications{ad_configuration="NONE"} 1`, test.description)
			assert.Contains(t, w.Body.String(), `tcf_adgate_requests{endpoint="check",status="ok"} 1`, test.description)
		}
	}
}

func TestNoCache(t *testing.T) {
	nc := NoCache{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	}
	rw := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "http://localhost/consent/u-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	nc.ServeHTTP(rw, req)
	h := rw.Header()
	if expected := "no-cache, no-store, must-revalidate"; expected != h.Get("Cache-Control") {
		t.Errorf("invalid cache-control header: expected: %s got: %s", expected, h.Get("Cache-Control"))
	}
	if expected := "no-cache"; expected != h.Get("Pragma") {
		t.Errorf("invalid pragma header: expected: %s got: %s", expected, h.Get("Pragma"))
	}
	if expected := "0"; expected != h.Get("Expires") {
		t.Errorf("invalid expires header: expected: %s got: %s", expected, h.Get("Expires"))
	}
}

func TestSupportCORS(t *testing.T) {
	r, _ := newTestRouter(t, 0)
	handler := SupportCORS(r)

	req := httptest.NewRequest("OPTIONS", "/consent/u-1/tcstring", nil)
	req.Header.Set("Origin", "https://publisher.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://publisher.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
