package repository

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"aqi-query/internal/domain"
)

const (
	O3GaugeName   = "airnow_o3_aqi_values"
	PM10GaugeName = "airnow_pm10_aqi_values"
	PM25GaugeName = "airnow_pm25_aqi_values"
)

// GaugeStore holds the latest AQI per tracked pollutant.
type GaugeStore struct {
	o3   prometheus.Gauge
	pm10 prometheus.Gauge
	pm25 prometheus.Gauge

	byParameter map[string]prometheus.Gauge
}

var _ domain.GaugeStore = (*GaugeStore)(nil)

// NewGaugeStore creates the three AQI gauges and registers them with reg.
func NewGaugeStore(reg prometheus.Registerer) (*GaugeStore, error) {
	s := &GaugeStore{
		o3:   prometheus.NewGauge(prometheus.GaugeOpts{Name: O3GaugeName, Help: "Airnow O3 AQI"}),
		pm10: prometheus.NewGauge(prometheus.GaugeOpts{Name: PM10GaugeName, Help: "Airnow PM10 AQI values"}),
		pm25: prometheus.NewGauge(prometheus.GaugeOpts{Name: PM25GaugeName, Help: "Airnow PM25 AQI values"}),
	}

	for _, g := range []prometheus.Gauge{s.o3, s.pm10, s.pm25} {
		if err := reg.Register(g); err != nil {
			return nil, fmt.Errorf("error registering gauge: %w", err)
		}
	}

	s.byParameter = map[string]prometheus.Gauge{
		domain.ParameterO3:   s.o3,
		domain.ParameterPM10: s.pm10,
		domain.ParameterPM25: s.pm25,
	}
	return s, nil
}

func (s *GaugeStore) SetO3(aqi int)   { s.o3.Set(float64(aqi)) }
func (s *GaugeStore) SetPM10(aqi int) { s.pm10.Set(float64(aqi)) }
func (s *GaugeStore) SetPM25(aqi int) { s.pm25.Set(float64(aqi)) }

// Update sets the gauge for parameter. Names outside the tracked set are
// ignored and reported as false.
func (s *GaugeStore) Update(parameter string, aqi int) bool {
	g, ok := s.byParameter[parameter]
	if !ok {
		return false
	}
	g.Set(float64(aqi))
	return true
}

func (s *GaugeStore) Snapshot() map[string]int {
	return map[string]int{
		O3GaugeName:   gaugeValue(s.o3),
		PM10GaugeName: gaugeValue(s.pm10),
		PM25GaugeName: gaugeValue(s.pm25),
	}
}

func gaugeValue(g prometheus.Gauge) int {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return int(m.GetGauge().GetValue())
}
