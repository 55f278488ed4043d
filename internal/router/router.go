package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"aqi-query/internal/domain"
	"aqi-query/internal/endpoints"
	"aqi-query/internal/util"
)

func NewRouter(gatherer prometheus.Gatherer, store domain.GaugeStore, logger *util.Logger) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, gatherer, store, logger)

	r.Use(loggingMiddleware(logger))

	return r
}

func addRoutes(r *mux.Router, gatherer prometheus.Gatherer, store domain.GaugeStore, logger *util.Logger) {
	metricsHandler := &endpoints.Metrics{}
	metricsHandler.Init(gatherer, store, logger)

	r.HandleFunc("/metrics", metricsHandler.ScrapeHandler)
	r.HandleFunc("/gauges", metricsHandler.GetGaugesHandler)
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Run serves the exporter on addr until the process is interrupted. A bind
// failure is returned to the caller.
func Run(addr string, gatherer prometheus.Gatherer, store domain.GaugeStore, logger *util.Logger) error {
	server := NewServer(addr, NewRouter(gatherer, store, logger))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(server, quit, logger)
}

// serve blocks until server fails to bind or a signal on quit has shut it
// down. On shutdown it returns only after Shutdown has completed.
func serve(server *http.Server, quit <-chan os.Signal, logger *util.Logger) error {
	done := make(chan struct{})
	defer close(done)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-quit:
		case <-done:
			return
		}
		logger.LogEvent(util.LOG_LEVEL_INFO, "Shutting down metrics exporter...")

		if err := gracefulShutdown(server, 25*time.Second); err != nil {
			logger.LogEvent(util.LOG_LEVEL_ERROR, "Exporter stopped with error:", err)
		} else {
			logger.LogEvent(util.LOG_LEVEL_INFO, "Exporter stopped gracefully.")
		}
	}()

	logger.LogEvent(util.LOG_LEVEL_INFO, "Metrics exporter listening on", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics exporter: %w", err)
	}
	<-stopped
	return nil
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_DEBUG, fmt.Sprintf("Request: %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}
}
