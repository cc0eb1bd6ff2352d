package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prebid/tcf-adgate/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Listen serves the consent API on the configured port until the process receives SIGTERM or
// SIGINT. When a dedicated Prometheus port is configured, gatherer is exposed there as well.
func Listen(cfg *config.Configuration, handler http.Handler, gatherer prometheus.Gatherer, me metrics.MetricsEngine) error {
	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)

	// Fan any process-stopper signals out to each server for graceful shutdowns.
	done := make(chan struct{})
	var stoppers []chan<- os.Signal

	mainServer := newMainServer(cfg, handler)
	mainListener, err := newListener(mainServer.Addr, me)
	if err != nil {
		return err
	}
	stopMain := make(chan os.Signal)
	stoppers = append(stoppers, stopMain)
	go shutdownAfterSignals(mainServer, stopMain, done)
	go runServer(mainServer, "Main", mainListener)

	if cfg.Metrics.Prometheus.Port != 0 {
		prometheusServer := newPrometheusServer(cfg, gatherer)
		prometheusListener, err := newListener(prometheusServer.Addr, nil)
		if err != nil {
			return err
		}
		stopPrometheus := make(chan os.Signal)
		stoppers = append(stoppers, stopPrometheus)
		go shutdownAfterSignals(prometheusServer, stopPrometheus, done)
		go runServer(prometheusServer, "Prometheus", prometheusListener)
	}

	wait(stopSignals, done, stoppers...)
	return nil
}

func newMainServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	serverHandler := handler
	if cfg.EnableGzip {
		serverHandler = gziphandler.GzipHandler(handler)
	}

	return &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler:      serverHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func runServer(server *http.Server, name string, listener net.Listener) {
	logger.Infof("%s server starting on: %s", name, server.Addr)
	err := server.Serve(listener)
	logger.Errorf("%s server quit with error: %v", name, err)
}

func newListener(address string, me metrics.MetricsEngine) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("error listening for TCP connections on %s: %v", address, err)
	}

	if me != nil {
		ln = &monitorableListener{ln, me}
	}
	return ln, nil
}

func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for i := 0; i < len(outbound); i++ {
		go sendSignal(outbound[i], sig)
	}

	for i := 0; i < len(outbound); i++ {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Infof("Stopping %s because of signal: %s", server.Addr, sig.String())
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- struct{}{}
}

func sendSignal(to chan<- os.Signal, sig os.Signal) {
	to <- sig
}
