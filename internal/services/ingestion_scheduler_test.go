package services

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobminer/internal/domain/events"
	"github.com/maxaizer/jobminer/internal/logger"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) Run(ctx context.Context, keywords []string, pagesPerKeyword int) (Summary, error) {
	args := m.Called(ctx, keywords, pagesPerKeyword)
	if f, ok := args.Get(0).(func() (Summary, error)); ok {
		return f()
	}
	return args.Get(0).(Summary), args.Error(1)
}

func newTestScheduler(t *testing.T, pipeline pipelineRunner) (*IngestionScheduler, *test.Hook, *[]events.IngestionCompleted) {
	t.Helper()

	logger, hook := test.NewNullLogger()

	var published []events.IngestionCompleted
	bus := EventBus.New()
	require.NoError(t, bus.Subscribe(events.IngestionCompletedTopic, func(event events.IngestionCompleted) {
		published = append(published, event)
	}))

	scheduler, err := NewIngestionScheduler(pipeline, bus, []string{"数据分析", "Python"}, 2, logger)
	require.NoError(t, err)
	return scheduler, hook, &published
}

func Test_IngestionScheduler_RunOnce_PublishesSummary(t *testing.T) {

	pipeline := &mockPipeline{}
	pipeline.On("Run", mock.Anything, []string{"数据分析", "Python"}, 2).
		Return(Summary{RunID: "run-1", Added: 3, Skipped: 2, Filtered: 1}, nil)

	scheduler, _, published := newTestScheduler(t, pipeline)

	summary, err := scheduler.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Added)
	require.Len(t, *published, 1)

	event := (*published)[0]
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, 3, event.Added)
	assert.Equal(t, 2, event.Skipped)
	assert.Equal(t, 1, event.Filtered)
	assert.NoError(t, event.Err)
}

func Test_IngestionScheduler_RunOnce_WhenStoreFails_ShouldLogDbError(t *testing.T) {

	dbErr := errors.New("database is locked")
	pipeline := &mockPipeline{}
	pipeline.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(Summary{RunID: "run-2", Added: 1}, dbErr)

	scheduler, hook, published := newTestScheduler(t, pipeline)

	_, err := scheduler.RunOnce(context.Background())

	assert.ErrorIs(t, err, dbErr)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, logger.ErrorTypeDb, hook.LastEntry().Data[logger.ErrorTypeField])
	assert.Equal(t, "run-2", hook.LastEntry().Data["run_id"])

	require.Len(t, *published, 1)
	assert.ErrorIs(t, (*published)[0].Err, dbErr)
	assert.Equal(t, 1, (*published)[0].Added)
}

func Test_IngestionScheduler_RunOnce_WhenPipelinePanics_ShouldRecover(t *testing.T) {

	pipeline := &mockPipeline{}
	pipeline.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(func() (Summary, error) {
		panic("nil map")
	})

	scheduler, hook, published := newTestScheduler(t, pipeline)

	assert.NotPanics(t, func() {
		_, err := scheduler.RunOnce(context.Background())
		assert.ErrorContains(t, err, "nil map")
	})

	assert.Equal(t, logger.ErrorTypePanic, hook.LastEntry().Data[logger.ErrorTypeField])
	require.Len(t, *published, 1)
	assert.Error(t, (*published)[0].Err)
}

func Test_IngestionScheduler_RunOnce_WhenCancelled_ShouldWarn(t *testing.T) {

	pipeline := &mockPipeline{}
	pipeline.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(Summary{}, context.Canceled)

	scheduler, hook, _ := newTestScheduler(t, pipeline)

	_, err := scheduler.RunOnce(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
}

func Test_IngestionScheduler_Start_WhenInvalidSpec_ShouldFail(t *testing.T) {

	scheduler, _, _ := newTestScheduler(t, &mockPipeline{})

	assert.Error(t, scheduler.Start(context.Background(), "every day"))
}

func Test_IngestionScheduler_StartAndStop(t *testing.T) {

	scheduler, hook, _ := newTestScheduler(t, &mockPipeline{})

	require.NoError(t, scheduler.Start(context.Background(), "0 10 * * *"))
	scheduler.Stop()

	assert.Contains(t, hook.LastEntry().Message, "0 10 * * *")
}

func Test_NewIngestionScheduler_WhenInvalidPlan_ShouldFail(t *testing.T) {

	logger, _ := test.NewNullLogger()

	_, err := NewIngestionScheduler(&mockPipeline{}, EventBus.New(), nil, 2, logger)
	assert.Error(t, err)

	_, err = NewIngestionScheduler(&mockPipeline{}, EventBus.New(), []string{"Python"}, 0, logger)
	assert.Error(t, err)
}
