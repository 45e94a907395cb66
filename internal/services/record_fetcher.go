package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobminer/internal/clients/boss"
	"github.com/maxaizer/jobminer/internal/logger"
	"github.com/maxaizer/jobminer/internal/metrics"
	"github.com/maxaizer/jobminer/pkg/retry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"math/rand"
	"time"
)

// ErrEmptyJobList is retried like any transport failure: the upstream answers an
// anti-bot challenge with a well-formed but empty list.
var ErrEmptyJobList = errors.New("empty job list")

type jobListClient interface {
	GetJobList(ctx context.Context, parameters boss.SearchParameters, userAgent string) ([]boss.JobPreview, error)
}

type userAgentSource interface {
	Next() string
}

// FetchFailure is returned when a page could not be fetched within the retry budget.
type FetchFailure struct {
	Keyword  string
	Page     int
	Attempts int
	Err      error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %q page %d failed after %d attempts: %v", f.Keyword, f.Page, f.Attempts, f.Err)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

type RecordFetcher struct {
	client     jobListClient
	userAgents userAgentSource
	policy     retry.Policy
	cityCode   string
	jitterMin  time.Duration
	jitterMax  time.Duration
	rnd        *rand.Rand
	sleep      retry.SleepFunc
	log        log.FieldLogger
}

func NewRecordFetcher(client jobListClient, userAgents userAgentSource, policy retry.Policy,
	cityCode string, jitterMin, jitterMax time.Duration, logger log.FieldLogger) (*RecordFetcher, error) {

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if jitterMax < jitterMin {
		return nil, errors.New("jitter max must not be less than jitter min")
	}

	return &RecordFetcher{
		client:     client,
		userAgents: userAgents,
		policy:     policy,
		cityCode:   cityCode,
		jitterMin:  jitterMin,
		jitterMax:  jitterMax,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      retry.Sleep,
		log:        logger,
	}, nil
}

// SetSleep replaces both the backoff and the jitter sleeper.
func (f *RecordFetcher) SetSleep(sleep retry.SleepFunc) {
	f.sleep = sleep
	f.policy.Sleep = sleep
}

func (f *RecordFetcher) SetRand(rnd *rand.Rand) {
	f.rnd = rnd
}

func (f *RecordFetcher) Fetch(ctx context.Context, keyword string, page int) ([]boss.JobPreview, error) {

	params := boss.SearchParameters{Query: keyword, City: f.cityCode, Page: page}
	if err := params.Validate(); err != nil {
		return nil, &FetchFailure{Keyword: keyword, Page: page, Err: err}
	}

	entry := f.log.WithFields(log.Fields{"keyword": keyword, "page": page})

	policy := f.policy
	policy.Notify = func(attempt int, err error, delay time.Duration) {
		if delay > 0 {
			entry.WithField("attempt", attempt).Warnf("request failed, retrying in %v: %v", delay, err)
		}
	}

	var jobs []boss.JobPreview
	attempts, err := policy.Do(ctx, func(attempt int) error {
		userAgent := f.userAgents.Next()
		entry.WithField("attempt", attempt).Debug("requesting job list")

		result, err := f.client.GetJobList(ctx, params, userAgent)
		if err != nil {
			metrics.FetchAttemptsCounter.WithLabelValues(metrics.OutcomeFailure).Inc()
			return err
		}
		if len(result) == 0 {
			metrics.FetchAttemptsCounter.WithLabelValues(metrics.OutcomeFailure).Inc()
			return ErrEmptyJobList
		}

		metrics.FetchAttemptsCounter.WithLabelValues(metrics.OutcomeSuccess).Inc()
		jobs = result
		return nil
	})

	if err != nil {
		metrics.PageFailuresCounter.Inc()
		entry.WithFields(log.Fields{"attempt": attempts, logger.ErrorTypeField: logger.ErrorTypeUpstream}).
			Errorf("giving up on page: %v", err)
		return nil, &FetchFailure{Keyword: keyword, Page: page, Attempts: attempts, Err: err}
	}

	entry.Infof("fetched %d postings in %d attempt(s)", len(jobs), attempts)

	// cancellation surfaces on the next request
	_ = f.sleep(ctx, f.jitter())
	return jobs, nil
}

func (f *RecordFetcher) jitter() time.Duration {
	window := f.jitterMax - f.jitterMin
	if window <= 0 {
		return f.jitterMin
	}
	return f.jitterMin + time.Duration(f.rnd.Int63n(int64(window)+1))
}
