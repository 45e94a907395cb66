package main

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobminer/internal/clients/boss"
	"github.com/maxaizer/jobminer/internal/config"
	"github.com/maxaizer/jobminer/internal/logger"
	"github.com/maxaizer/jobminer/internal/metrics"
	"github.com/maxaizer/jobminer/internal/notifier"
	"github.com/maxaizer/jobminer/internal/repositories"
	"github.com/maxaizer/jobminer/internal/services"
	"github.com/maxaizer/jobminer/pkg/retry"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
)

func createPipeline(cfg *config.Config, dbContext *repositories.DbContext, appLogger *log.Logger) *services.IngestionPipeline {

	client := boss.NewClient(cfg.Crawler.Timeout)
	client.SetBaseURL(cfg.Crawler.BaseURL)
	client.SetRateLimit(cfg.Crawler.RequestsPerSecond)
	client.SetHeader("Cookie", cfg.Crawler.Cookie)

	policy := retry.Policy{MaxAttempts: cfg.Crawler.MaxRetries, BackoffBase: cfg.Crawler.BackoffBase}

	fetcher, err := services.NewRecordFetcher(client, boss.NewUserAgentPool(cfg.Crawler.UserAgents), policy,
		cfg.Crawler.CityCode, cfg.Crawler.JitterMin, cfg.Crawler.JitterMax, appLogger)
	if err != nil {
		appLogger.Fatalf("can't create record fetcher: %v", err)
	}

	sources := repositories.NewSourcesRepository(dbContext.DB)
	companies := repositories.NewCachedCompanies(repositories.NewCompaniesRepository(dbContext.DB))
	jobs := repositories.NewJobsRepository(dbContext.DB)

	return services.NewIngestionPipeline(fetcher, sources, companies, jobs, cfg.Filter,
		cfg.Crawler.SourceName, cfg.Crawler.SourceURL, appLogger)
}

type onceRunner interface {
	RunOnce(ctx context.Context) (services.Summary, error)
}

// runSingleShot runs ingestion once and reports its failure, so an outer scheduler sees a
// non-zero exit status.
func runSingleShot(ctx context.Context, runner onceRunner) error {
	summary, err := runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", summary.RunID, err)
	}
	return nil
}

func runNotifier(cfg *config.Config, bus EventBus.Bus, appLogger *log.Logger) {

	if !cfg.Notifier.Enabled() {
		return
	}

	tgNotifier, err := notifier.NewTelegramNotifier(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatID, appLogger)
	if err != nil {
		appLogger.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("notifier disabled: %v", err)
		return
	}

	if err = tgNotifier.Subscribe(bus); err != nil {
		appLogger.Fatalf("can't subscribe notifier: %v", err)
	}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("can't load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("can't create logger: %v", err)
	}
	defer logger.Cleanup()

	if cfg.Metrics.Address != "" {
		err = metrics.StartMetricsServer(cfg.Metrics.Address, func(err error) {
			appLogger.Errorf("metrics server stopped: %v", err)
		})
		if err != nil {
			appLogger.Fatalf("can't start metrics server: %v", err)
		}
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		appLogger.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		appLogger.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	runNotifier(cfg, bus, appLogger)

	pipeline := createPipeline(cfg, dbContext, appLogger)

	scheduler, err := services.NewIngestionScheduler(pipeline, bus, cfg.Crawler.Keywords, cfg.Crawler.PagesPerKeyword, appLogger)
	if err != nil {
		appLogger.Fatalf("can't create scheduler: %v", err)
	}

	if !cfg.Scheduler.Enabled {
		if err = runSingleShot(ctx, scheduler); err != nil {
			appLogger.Fatalf("ingestion failed: %v", err)
		}
		return
	}

	if cfg.Scheduler.RunOnStart {
		_, _ = scheduler.RunOnce(ctx)
	}

	if err = scheduler.Start(ctx, cfg.Scheduler.Cron); err != nil {
		appLogger.Fatalf("can't start scheduler: %v", err)
	}

	<-ctx.Done()

	appLogger.Info("Shutting down services...")
	scheduler.Stop()
	appLogger.Info("Services stopped.")
}
