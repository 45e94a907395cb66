package logger

import (
	"github.com/maxaizer/jobminer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const unknownErrorType = "unknown"

// prometheusHook counts error entries by their error_type field.
type prometheusHook struct {
	errors *prometheus.CounterVec
}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	errorType, _ := entry.Data[ErrorTypeField].(string)
	if errorType == "" {
		errorType = unknownErrorType
	}
	h.errors.WithLabelValues(errorType).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return log.AllLevels[:log.ErrorLevel+1]
}

func addPrometheusHook(logger *log.Logger) {
	logger.AddHook(&prometheusHook{errors: metrics.ErrorsCounter})
}
