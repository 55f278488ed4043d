package endpoints

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aqi-query/internal/domain"
	"aqi-query/internal/util"
)

type Metrics struct {
	Response   APIResponse
	logger     *util.Logger
	store      domain.GaugeStore
	exposition http.Handler
}

// Init wires the handlers to the registry being scraped and to the gauge
// store backing /gauges. Gather or encode failures are logged and whatever
// could be collected is still served.
func (m *Metrics) Init(gatherer prometheus.Gatherer, store domain.GaugeStore, logger *util.Logger) {
	m.store = store
	m.logger = logger
	m.exposition = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:      logger,
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (m *Metrics) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.logger.LogEvent(util.LOG_LEVEL_WARN, "Rejected scrape with method", r.Method)
		m.Response.WriteErrorResponseWithStatusCode(w, ErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	m.exposition.ServeHTTP(w, r)
}

func (m *Metrics) GetGaugesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.logger.LogEvent(util.LOG_LEVEL_WARN, "Rejected gauges request with method", r.Method)
		m.Response.WriteErrorResponseWithStatusCode(w, ErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	if m.store == nil {
		m.logger.LogEvent(util.LOG_LEVEL_ERROR, "Gauges requested but no store is configured")
		m.Response.WriteErrorResponseWithStatusCode(w, ErrGaugesNotAvailable, http.StatusServiceUnavailable)
		return
	}

	m.Response.WriteResultResponse(w, m.store.Snapshot())
}
