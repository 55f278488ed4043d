// Command airnow-stub serves random current observations in the AirNow
// response shape so aqi-query can be run locally without an API key.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"

	"aqi-query/internal/domain"
	"aqi-query/internal/router"
	"aqi-query/internal/util"
)

const observationPath = "/aq/observation/zipCode/current/"

var stubParameters = []string{domain.ParameterO3, domain.ParameterPM25, domain.ParameterPM10}

func main() {
	addr := pflag.String("addr", ":8085", "listen address")
	logDir := pflag.String("log-dir", "log", "directory for the log file")
	pflag.Parse()

	var logger util.Logger
	if err := logger.Init(*logDir, "airnow-stub.log", util.LOG_LEVEL_DEBUG, false); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.DeInit()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	server := router.NewServer(*addr, newStubRouter(rng, &logger))

	logger.LogEvent(util.LOG_LEVEL_INFO, "AirNow stub listening on", *addr, "path", observationPath)
	if err := server.ListenAndServe(); err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Stub stopped:", err)
	}
}

func newStubRouter(rng *rand.Rand, logger *util.Logger) *mux.Router {
	var mu sync.Mutex
	r := mux.NewRouter()
	r.HandleFunc(observationPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("API_KEY") == "" {
			logger.LogEvent(util.LOG_LEVEL_WARN, "Request without API_KEY rejected")
			http.Error(w, "missing API_KEY", http.StatusUnauthorized)
			return
		}

		mu.Lock()
		observations := generateObservations(rng, time.Now())
		mu.Unlock()
		logger.LogEvent(util.LOG_LEVEL_DEBUG, "Serving", len(observations), "observations for zip code", q.Get("zipCode"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(observations)
	}).Methods(http.MethodGet)
	return r
}

// generateObservations returns one reading per stub parameter for the hour of now.
func generateObservations(rng *rand.Rand, now time.Time) []domain.Observation {
	zone, _ := now.Zone()

	observations := make([]domain.Observation, 0, len(stubParameters))
	for _, parameter := range stubParameters {
		observations = append(observations, domain.Observation{
			DateObserved:  now.Format("2006-01-02") + " ",
			HourObserved:  now.Hour(),
			LocalTimeZone: zone,
			StateCode:     "CA",
			ReportingArea: "Sacramento",
			ParameterName: parameter,
			AQI:           rng.Intn(301),
		})
	}
	return observations
}
