package server

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/metrics"
	prometheusmetrics "github.com/prebid/tcf-adgate/metrics/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMainServer(t *testing.T) {
	cfg := &config.Configuration{
		Host: "consent.example",
		Port: 8000,
	}

	server := newMainServer(cfg, http.HandlerFunc(handler))

	assert.Equal(t, "consent.example:8000", server.Addr)
	assert.Equal(t, 15*time.Second, server.ReadTimeout)
	assert.Equal(t, 15*time.Second, server.WriteTimeout)
}

func TestNewMainServerGzip(t *testing.T) {
	cfg := &config.Configuration{Port: 8000, EnableGzip: true}
	body := bytes.Repeat([]byte(`{"ad_configuration":"ALL","ads":true,"personalized_ads":true}`), 50)
	server := newMainServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body)
	}))

	req := httptest.NewRequest("GET", "/consent/u-1", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestNewPrometheusServer(t *testing.T) {
	cfg := &config.Configuration{Host: "consent.example", Port: 8000}
	cfg.Metrics.Prometheus = config.PrometheusMetrics{Port: 9100, Namespace: "tcf", Subsystem: "adgate", TimeoutMillisRaw: 1000}
	m := prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
	m.RecordTimestampWarning()

	server := newPrometheusServer(cfg, m.Registry)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, "consent.example:9100", server.Addr)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tcf_adgate_timestamp_warnings 1")
}

func TestServerShutdown(t *testing.T) {
	server := &http.Server{}
	ln := &mockListener{}

	stopper := make(chan os.Signal)
	done := make(chan struct{})
	go shutdownAfterSignals(server, stopper, done)
	go server.Serve(ln)

	stopper <- os.Interrupt
	<-done

	// If the test didn't hang, then we know server.Shutdown really _did_ return, and shutdownAfterSignals
	// passed the message along as expected.
}

func TestWait(t *testing.T) {
	inbound := make(chan os.Signal)
	chan1 := make(chan os.Signal)
	chan2 := make(chan os.Signal)
	done := make(chan struct{})

	go forwardSignal(t, done, chan1)
	go forwardSignal(t, done, chan2)

	go func(chan os.Signal) {
		inbound <- os.Interrupt
	}(inbound)

	wait(inbound, done, chan1, chan2)
	// If this doesn't hang, then wait() is sending and receiving messages as expected.
}

func TestMonitorableListener(t *testing.T) {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordConnectionAccept", true).Once()
	me.On("RecordConnectionClose", true).Once()
	me.On("RecordConnectionAccept", false).Once()

	ln, err := newListener("127.0.0.1:0", me)
	require.NoError(t, err)

	go func() {
		if c, err := net.Dial("tcp", ln.Addr().String()); err == nil {
			c.Close()
		}
	}()
	conn, err := ln.Accept()
	require.NoError(t, err)
	assert.NoError(t, conn.Close())

	ln.Close()
	_, err = ln.Accept()
	assert.Error(t, err)

	me.AssertExpectations(t)
}

func TestNewListenerInvalidAddress(t *testing.T) {
	_, err := newListener("not-an-address", nil)

	assert.Error(t, err)
}

func handler(w http.ResponseWriter, req *http.Request) {
}

// forwardSignal is basically a working mock for shutdownAfterSignals().
// It is used to test wait() effectively
func forwardSignal(t *testing.T, outbound chan<- struct{}, inbound <-chan os.Signal) {
	var s struct{}
	sig := <-inbound
	if sig != os.Interrupt {
		t.Errorf("Unexpected signal: %s\n", sig.String())
	}
	outbound <- s
}

type mockListener struct{}

func (l *mockListener) Accept() (net.Conn, error) {
	return nil, errors.New("mock listener only fails")
}

func (l *mockListener) Close() error {
	return nil
}

func (l *mockListener) Addr() net.Addr {
	return &net.TCPAddr{}
}
