package notifier

import (
	"errors"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobminer/internal/domain/events"
	"github.com/maxaizer/jobminer/internal/logger"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockApi struct {
	SentMessages []botApi.Chattable
	err          error
}

func (m *mockApi) Send(chattable botApi.Chattable) (botApi.Message, error) {
	m.SentMessages = append(m.SentMessages, chattable)
	return botApi.Message{}, m.err
}

func Test_TelegramNotifier_SendsSummaryOnIngestionCompleted(t *testing.T) {

	api := &mockApi{}
	log, _ := test.NewNullLogger()
	notifier := newTelegramNotifier(api, 42, log)

	bus := EventBus.New()
	require.NoError(t, notifier.Subscribe(bus))

	bus.Publish(events.IngestionCompletedTopic, events.IngestionCompleted{
		RunID: "run-1", Added: 5, Skipped: 2, Filtered: 1, Duration: 95 * time.Second,
	})

	require.Len(t, api.SentMessages, 1)
	msg, ok := api.SentMessages[0].(botApi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Ingestion run finished\nRun: run-1\nAdded: 5\nSkipped: 2\nFiltered: 1\nDuration: 1m35s", msg.Text)
}

func Test_TelegramNotifier_ReportsFailure(t *testing.T) {

	text := formatSummary(events.IngestionCompleted{Added: 1, Err: errors.New("database is locked")})

	assert.Contains(t, text, "Ingestion run failed")
	assert.Contains(t, text, "Error: database is locked")
	assert.NotContains(t, text, "Run:")
}

func Test_TelegramNotifier_WhenSendFails_ShouldLogTgApiError(t *testing.T) {

	api := &mockApi{err: errors.New("Forbidden: bot was blocked by the user")}
	log, hook := test.NewNullLogger()
	notifier := newTelegramNotifier(api, 42, log)

	notifier.onIngestionCompleted(events.IngestionCompleted{RunID: "run-2"})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logger.ErrorTypeTgApi, hook.LastEntry().Data[logger.ErrorTypeField])
}
