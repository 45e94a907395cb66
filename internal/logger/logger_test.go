package logger

import (
	"compress/gzip"
	"encoding/json"
	"github.com/maxaizer/jobminer/internal/config"
	"github.com/maxaizer/jobminer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func Test_Logger_WritesToFileWithConfiguredLevel(t *testing.T) {

	file := filepath.Join(t.TempDir(), "logs", "jobminer.log")
	logger, err := New(config.LoggerConfig{LogLevel: config.LevelWarning, Format: config.FormatJSON, OutputFile: file})
	require.NoError(t, err)
	defer Cleanup()

	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.WithField("keyword", "Python").Warn("no data returned")
	logger.Info("should be filtered out")

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"keyword":"Python"`)
	assert.NotContains(t, string(content), "should be filtered out")
}

func Test_Logger_ErrorsAreCountedByType(t *testing.T) {

	logger, err := New(config.LoggerConfig{LogLevel: config.LevelInfo, Format: config.FormatText})
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb))
	logger.WithField(ErrorTypeField, ErrorTypeDb).Error("database is locked")
	after := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb))

	assert.Equal(t, before+1, after)
}

type lokiPush struct {
	Streams []struct {
		Stream map[string]string `json:"stream"`
		Values [][2]string       `json:"values"`
	} `json:"streams"`
}

func Test_Logger_ShipsEntriesToLokiWithKeywordLabel(t *testing.T) {

	var mu sync.Mutex
	var pushes []lokiPush
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		var push lokiPush
		require.NoError(t, json.NewDecoder(gz).Decode(&push))

		mu.Lock()
		pushes = append(pushes, push)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger, err := New(config.LoggerConfig{
		LogLevel: config.LevelWarning,
		Format:   config.FormatText,
		AppName:  "jobminer",
		LokiURL:  server.URL,
	})
	require.NoError(t, err)

	logger.WithFields(log.Fields{"run_id": "run-1", "keyword": "Python", "reason": "salary_floor"}).Warn("posting filtered")
	logger.Info("below the configured level")
	Cleanup()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, pushes, 1)
	require.Len(t, pushes[0].Streams, 1)

	stream := pushes[0].Streams[0]
	assert.Equal(t, map[string]string{"app": "jobminer", "level": "warning", "keyword": "Python"}, stream.Stream)
	require.Len(t, stream.Values, 1)
	assert.Contains(t, stream.Values[0][1], `"run_id":"run-1"`)
	assert.Contains(t, stream.Values[0][1], `"reason":"salary_floor"`)
}

func Test_Logger_WhenLokiUrlInvalid_ShouldFail(t *testing.T) {

	_, err := New(config.LoggerConfig{LogLevel: config.LevelInfo, Format: config.FormatText, LokiURL: "not a url"})
	assert.Error(t, err)
}

func Test_PrometheusHook_CountsUntypedErrorsAsUnknown(t *testing.T) {

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_errors_total"}, []string{"type"})
	logger, _ := test.NewNullLogger()
	logger.AddHook(&prometheusHook{errors: counter})

	logger.Error("no type")
	logger.WithField(ErrorTypeField, ErrorTypeUpstream).Error("typed")
	logger.Warn("not counted")

	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(unknownErrorType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(ErrorTypeUpstream)))
}
