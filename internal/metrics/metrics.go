package metrics

import (
	"errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	ResultAdded    = "added"
	ResultSkipped  = "skipped"
	ResultFiltered = "filtered"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total number of logged errors.",
		},
		[]string{"type"},
	)
	FetchAttemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_fetch_attempts_total",
			Help: "Total number of upstream requests by outcome.",
		},
		[]string{"outcome"},
	)
	PageFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_page_failures_total",
			Help: "Total number of pages skipped after exhausting retries.",
		},
	)
	PostingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_postings_total",
			Help: "Total number of handled postings by result.",
		},
		[]string{"result"},
	)
	IngestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_ingestion_duration_seconds",
			Help:    "Duration of each ingestion run in seconds.",
			Buckets: []float64{10, 30, 60, 300, 900, 1800},
		},
	)
)

func Register() error {
	collectors := []prometheus.Collector{
		ErrorsCounter,
		FetchAttemptsCounter,
		PageFailuresCounter,
		PostingsCounter,
		IngestionDuration,
	}

	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}

// StartMetricsServer serves /metrics on address in the background. Listener errors are
// reported through onError.
func StartMetricsServer(address string, onError func(error)) error {

	if err := Register(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(address, mux); err != nil {
			onError(err)
		}
	}()
	return nil
}
