package logger

import (
	"github.com/maxaizer/jobminer/internal/config"
	"github.com/maxaizer/jobminer/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb       = "db"
	ErrorTypeUpstream = "upstream"
	ErrorTypeTgApi    = "tg_api"
	ErrorTypePanic    = "panic"
	ErrorTypeLoki     = "loki"
)

const timestampFormat = "2006-01-02T15:04:05.000 -0700"

var (
	logFile    *os.File
	lokiPusher *loki.Pusher
)

// New builds the application logger. It is passed explicitly to the components that log.
func New(cfg config.LoggerConfig) (*log.Logger, error) {

	logger := log.New()

	var output io.Writer = os.Stdout
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		logFile = file
		output = io.MultiWriter(os.Stdout, file)
	}
	logger.SetOutput(output)

	if cfg.Format == config.FormatJSON {
		logger.SetFormatter(&log.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	addPrometheusHook(logger)

	switch cfg.LogLevel {
	case config.LevelInfo:
		logger.SetLevel(log.InfoLevel)
	case config.LevelDebug:
		logger.SetLevel(log.DebugLevel)
	case config.LevelWarning:
		logger.SetLevel(log.WarnLevel)
	case config.LevelError:
		logger.SetLevel(log.ErrorLevel)
	case config.LevelFatal:
		logger.SetLevel(log.FatalLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if cfg.LokiURL != "" {
		pusher, err := addLokiHook(logger, cfg)
		if err != nil {
			return nil, err
		}
		lokiPusher = pusher
	}

	return logger, nil
}

// Cleanup flushes pending Loki entries and closes the log file.
func Cleanup() {
	if lokiPusher != nil {
		lokiPusher.Stop()
		lokiPusher = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
