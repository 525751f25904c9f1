package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

const namespace = "srt_timetables"

// Metrics are collected on a private registry and written out as a node_exporter
// textfile at the end of every run
type Metrics struct {
	Registry *prometheus.Registry

	StationFetches *prometheus.CounterVec
	DayFetches     *prometheus.CounterVec
	Routes         *prometheus.CounterVec
	RouteDuration  prometheus.Summary
	Stations       prometheus.Gauge
	LastRun        prometheus.Gauge
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		Registry: prometheus.NewRegistry(),

		StationFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_fetches_total",
			Help:      "Station directory requests by outcome",
		}, []string{"outcome"}),
		DayFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_fetches_total",
			Help:      "Daily trip requests by outcome",
		}, []string{"outcome"}),
		Routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Processed routes by final status",
		}, []string{"status"}),
		RouteDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "route_duration_seconds",
			Help:       "Time spent harvesting both directions of a route",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations",
			Help:      "Stations in the most recent directory",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	metrics.Registry.MustRegister(
		metrics.StationFetches,
		metrics.DayFetches,
		metrics.Routes,
		metrics.RouteDuration,
		metrics.Stations,
		metrics.LastRun,
	)

	return metrics
}

func (m *Metrics) ObserveStations(result timetable.StationsResult) {
	m.StationFetches.With(prometheus.Labels{"outcome": string(result.Outcome)}).Inc()

	if result.Outcome == timetable.OutcomeSuccess {
		m.Stations.Set(float64(len(result.Stations)))
	}
}

func (m *Metrics) ObserveDay(result timetable.DayResult) {
	m.DayFetches.With(prometheus.Labels{"outcome": string(result.Outcome)}).Inc()
}

func (m *Metrics) ObserveRoute(status string, duration time.Duration) {
	m.Routes.With(prometheus.Labels{"status": status}).Inc()
	m.RouteDuration.Observe(duration.Seconds())
}

func (m *Metrics) Finished(at time.Time) {
	m.LastRun.Set(float64(at.Unix()))
}

func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
