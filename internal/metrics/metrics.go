package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeReady        = "ready"
	OutcomeEmptyQuery   = "empty_query"
	OutcomeNoResults    = "no_results"
	OutcomeFailed       = "failed"
	OutcomeSuperseded   = "superseded"
	OutcomeWeatherOK    = "ok"
	OutcomeWeatherError = "error"
)

var registry = prometheus.NewRegistry()

var (
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "place_weather",
		Name:      "searches_total",
		Help:      "Searches completed, by outcome.",
	}, []string{"outcome"})

	WeatherFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "place_weather",
		Name:      "weather_fetches_total",
		Help:      "Per-place weather fetches, by outcome.",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(SearchesTotal, WeatherFetchesTotal)
}

// Handler serves the metrics registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
