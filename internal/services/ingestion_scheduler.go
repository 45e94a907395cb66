package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobminer/internal/domain/events"
	"github.com/maxaizer/jobminer/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type pipelineRunner interface {
	Run(ctx context.Context, keywords []string, pagesPerKeyword int) (Summary, error)
}

type IngestionScheduler struct {
	pipeline pipelineRunner
	bus      EventBus.BusPublisher
	cron     *cron.Cron
	keywords []string
	pages    int
	log      log.FieldLogger
	ctx      context.Context
}

func NewIngestionScheduler(pipeline pipelineRunner, bus EventBus.BusPublisher, keywords []string,
	pagesPerKeyword int, logger log.FieldLogger) (*IngestionScheduler, error) {

	if len(keywords) == 0 {
		return nil, errors.New("at least one keyword is required")
	}
	if pagesPerKeyword <= 0 {
		return nil, errors.New("pages per keyword must be greater than zero")
	}

	cronLogger := cron.PrintfLogger(logger)
	return &IngestionScheduler{
		pipeline: pipeline,
		bus:      bus,
		cron:     cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		keywords: keywords,
		pages:    pagesPerKeyword,
		log:      logger,
		ctx:      context.Background(),
	}, nil
}

// Start schedules runs with a standard cron expression. Runs triggered by the schedule use ctx,
// so cancelling it interrupts a run in progress.
func (s *IngestionScheduler) Start(ctx context.Context, spec string) error {
	s.ctx = ctx

	_, err := s.cron.AddFunc(spec, func() {
		_, _ = s.RunOnce(s.ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Infof("ingestion scheduler started, schedule: %s", spec)
	return nil
}

// Stop prevents further runs and waits for a run in progress to return.
func (s *IngestionScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce executes a single ingestion run. Errors and panics are logged and returned,
// and a completion event is published in every case.
func (s *IngestionScheduler) RunOnce(ctx context.Context) (summary Summary, err error) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion panicked: %v", r)
			s.log.WithField(logger.ErrorTypeField, logger.ErrorTypePanic).Error(err)
		}

		s.bus.Publish(events.IngestionCompletedTopic, events.IngestionCompleted{
			RunID:    summary.RunID,
			Added:    summary.Added,
			Skipped:  summary.Skipped,
			Filtered: summary.Filtered,
			Duration: time.Since(started),
			Err:      err,
		})
	}()

	summary, err = s.pipeline.Run(ctx, s.keywords, s.pages)
	if err != nil {
		entry := s.log.WithField("run_id", summary.RunID)
		if errors.Is(err, context.Canceled) {
			entry.Warn("ingestion interrupted")
		} else {
			entry.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("ingestion failed: %v", err)
		}
	}
	return summary, err
}
