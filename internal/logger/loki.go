package logger

import (
	"github.com/maxaizer/jobminer/internal/config"
	"github.com/maxaizer/jobminer/pkg/loki"
	log "github.com/sirupsen/logrus"
	"strings"
)

const sourceField = "source"

// lokiHook ships entries to Loki. Level and keyword become stream labels; run_id, page and
// the other fields stay in the JSON line to keep label cardinality low.
type lokiHook struct {
	pusher    *loki.Pusher
	formatter log.Formatter
	levels    []log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	if entry.Data[sourceField] == "loki" {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	keyword, _ := entry.Data["keyword"].(string)
	h.pusher.Push(loki.Entry{
		Time:   entry.Time,
		Labels: map[string]string{"level": entry.Level.String(), "keyword": keyword},
		Line:   strings.TrimSuffix(string(line), "\n"),
	})
	return nil
}

func (h *lokiHook) Levels() []log.Level {
	return h.levels
}

func addLokiHook(logger *log.Logger, cfg config.LoggerConfig) (*loki.Pusher, error) {

	pusher, err := loki.New(loki.Config{
		Url:      cfg.LokiURL,
		Username: cfg.LokiUser,
		Password: cfg.LokiPassword,
		Labels:   map[string]string{"app": cfg.AppName},
	}, nil, func(err error) {
		logger.WithFields(log.Fields{sourceField: "loki", ErrorTypeField: ErrorTypeLoki}).
			Errorf("failed to push logs: %v", err)
	})
	if err != nil {
		return nil, err
	}

	logger.AddHook(&lokiHook{
		pusher:    pusher,
		formatter: &log.JSONFormatter{TimestampFormat: timestampFormat},
		levels:    log.AllLevels[:logger.GetLevel()+1],
	})
	logger.Info("Loki logging enabled")
	return pusher, nil
}
