package services

import (
	"context"
	"github.com/google/uuid"
	"github.com/maxaizer/jobminer/internal/clients/boss"
	"github.com/maxaizer/jobminer/internal/config"
	"github.com/maxaizer/jobminer/internal/domain/models"
	"github.com/maxaizer/jobminer/internal/domain/salary"
	"github.com/maxaizer/jobminer/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

type recordFetcher interface {
	Fetch(ctx context.Context, keyword string, page int) ([]boss.JobPreview, error)
}

type sourceRepository interface {
	ResolveOrCreate(ctx context.Context, name, baseURL string) (*models.Source, error)
}

type companyRepository interface {
	ResolveOrCreate(ctx context.Context, name, city string) (*models.Company, error)
}

type jobRepository interface {
	Exists(ctx context.Context, title string, companyID, sourceID uint) (bool, error)
	Insert(ctx context.Context, job *models.Job) error
}

type Summary struct {
	RunID    string
	Added    int
	Skipped  int
	Filtered int
}

// Filter reasons, logged with every filtered posting.
const (
	ReasonMissingTitle   = "missing_title"
	ReasonMissingCompany = "missing_company"
	ReasonSalaryCeiling  = "salary_ceiling"
	ReasonSalaryFloor    = "salary_floor"
)

type ingestResult int

const (
	resultAdded ingestResult = iota
	resultSkipped
	resultFiltered
)

func (s *Summary) record(result ingestResult) {
	switch result {
	case resultAdded:
		s.Added++
		metrics.PostingsCounter.WithLabelValues(metrics.ResultAdded).Inc()
	case resultSkipped:
		s.Skipped++
		metrics.PostingsCounter.WithLabelValues(metrics.ResultSkipped).Inc()
	case resultFiltered:
		s.Filtered++
		metrics.PostingsCounter.WithLabelValues(metrics.ResultFiltered).Inc()
	}
}

type IngestionPipeline struct {
	fetcher    recordFetcher
	sources    sourceRepository
	companies  companyRepository
	jobs       jobRepository
	filter     config.FilterConfig
	sourceName string
	sourceURL  string
	log        log.FieldLogger
	now        func() time.Time
}

func NewIngestionPipeline(fetcher recordFetcher, sources sourceRepository, companies companyRepository,
	jobs jobRepository, filter config.FilterConfig, sourceName, sourceURL string, logger log.FieldLogger) *IngestionPipeline {

	return &IngestionPipeline{
		fetcher:    fetcher,
		sources:    sources,
		companies:  companies,
		jobs:       jobs,
		filter:     filter,
		sourceName: sourceName,
		sourceURL:  sourceURL,
		log:        logger,
		now:        time.Now,
	}
}

// Run crawls every keyword for pages 1..pagesPerKeyword. Pages that cannot be fetched are
// skipped; the first store error stops the run and is returned with the partial summary.
func (p *IngestionPipeline) Run(ctx context.Context, keywords []string, pagesPerKeyword int) (Summary, error) {

	summary := Summary{RunID: uuid.NewString()}
	entry := p.log.WithField("run_id", summary.RunID)
	started := time.Now()

	defer func() {
		metrics.IngestionDuration.Observe(time.Since(started).Seconds())
	}()

	plan := lo.Compact(lo.Map(keywords, func(keyword string, _ int) string {
		return strings.TrimSpace(keyword)
	}))
	entry.Infof("ingestion started: %d keyword(s), %d page(s) each", len(plan), pagesPerKeyword)

	var source *models.Source
	for _, keyword := range plan {
		for page := 1; page <= pagesPerKeyword; page++ {

			if err := ctx.Err(); err != nil {
				return summary, err
			}

			pageEntry := entry.WithFields(log.Fields{"keyword": keyword, "page": page})

			records, err := p.fetcher.Fetch(ctx, keyword, page)
			if err != nil {
				pageEntry.Warnf("page skipped: %v", err)
				continue
			}

			if source == nil {
				source, err = p.sources.ResolveOrCreate(ctx, p.sourceName, p.sourceURL)
				if err != nil {
					return summary, errors.Wrap(err, "ingestion aborted")
				}
			}

			for _, record := range records {
				result, err := p.ingest(ctx, pageEntry, source, record)
				if err != nil {
					return summary, errors.Wrap(err, "ingestion aborted")
				}
				summary.record(result)
			}
		}
	}

	entry.Infof("ingestion finished: added=%d skipped=%d filtered=%d",
		summary.Added, summary.Skipped, summary.Filtered)
	return summary, nil
}

func (p *IngestionPipeline) ingest(ctx context.Context, entry log.FieldLogger, source *models.Source,
	record boss.JobPreview) (ingestResult, error) {

	title := strings.TrimSpace(record.JobName)
	companyName := strings.TrimSpace(record.BrandName)

	salaryMin, salaryMax := salary.Normalize(record.SalaryDesc)

	if reason := p.filterReason(title, companyName, salaryMin, salaryMax); reason != "" {
		entry.WithFields(log.Fields{
			"reason":  reason,
			"title":   title,
			"company": companyName,
			"salary":  record.SalaryDesc,
		}).Warn("posting filtered")
		return resultFiltered, nil
	}

	city := strings.TrimSpace(record.CityName)
	company, err := p.companies.ResolveOrCreate(ctx, companyName, city)
	if err != nil {
		return 0, err
	}

	exists, err := p.jobs.Exists(ctx, title, company.ID, source.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		return resultSkipped, nil
	}

	job := &models.Job{
		SourceID:    source.ID,
		CompanyID:   company.ID,
		Title:       title,
		City:        models.OptionalString(city),
		SalaryMin:   salaryMin,
		SalaryMax:   salaryMax,
		Currency:    models.DefaultCurrency,
		Description: record.Description(),
		PostedAt:    today(p.now()),
	}
	if err = p.jobs.Insert(ctx, job); err != nil {
		return 0, err
	}
	return resultAdded, nil
}

// filterReason names the rule a posting breaks, or returns "" when it may be stored. Postings
// without a salary pass the salary bounds.
func (p *IngestionPipeline) filterReason(title, companyName string, salaryMin, salaryMax *int) string {
	switch {
	case title == "":
		return ReasonMissingTitle
	case companyName == "":
		return ReasonMissingCompany
	case salaryMax != nil && *salaryMax >= p.filter.Ceiling:
		return ReasonSalaryCeiling
	case salaryMin != nil && *salaryMin <= p.filter.Floor:
		return ReasonSalaryFloor
	default:
		return ""
	}
}

func today(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}
