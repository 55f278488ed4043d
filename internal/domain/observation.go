package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ParameterO3   = "O3"
	ParameterPM10 = "PM10"
	ParameterPM25 = "PM2.5"
)

const observedDateLayout = "2006-01-02"

// DefaultCollectInterval is how often readings are refreshed in continuous mode.
const DefaultCollectInterval = time.Hour

// Observation is one pollutant reading as reported by AirNow.
type Observation struct {
	DateObserved  string `json:"DateObserved"`
	HourObserved  int    `json:"HourObserved"`
	LocalTimeZone string `json:"LocalTimeZone"`
	StateCode     string `json:"StateCode"`
	ReportingArea string `json:"ReportingArea"`
	ParameterName string `json:"ParameterName"`
	AQI           int    `json:"AQI"`
}

// ObservedAt combines the observation date and hour into a time in loc.
// AirNow pads DateObserved with trailing spaces, so the date is trimmed first.
func (o Observation) ObservedAt(loc *time.Location) (time.Time, error) {
	datePart := strings.Trim(o.DateObserved, " \x00")
	day, err := time.ParseInLocation(observedDateLayout, datePart, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing observation date %q: %w", o.DateObserved, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), o.HourObserved, 0, 0, 0, loc), nil
}

type ObservationFetcher interface {
	FetchObservations(ctx context.Context) ([]Observation, error)
}

type GaugeStore interface {
	Update(parameter string, aqi int) bool
	Snapshot() map[string]int
}
