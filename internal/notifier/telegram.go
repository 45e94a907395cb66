package notifier

import (
	"fmt"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobminer/internal/domain/events"
	"github.com/maxaizer/jobminer/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

type apiInterface interface {
	Send(c botApi.Chattable) (botApi.Message, error)
}

// TelegramNotifier posts a short summary of every finished ingestion run to a single chat.
type TelegramNotifier struct {
	api    apiInterface
	chatID int64
	log    log.FieldLogger
}

func NewTelegramNotifier(token string, chatID int64, logger log.FieldLogger) (*TelegramNotifier, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize telegram bot")
	}
	logger.Infof("Authorized on account %s", api.Self.UserName)

	return newTelegramNotifier(api, chatID, logger), nil
}

func newTelegramNotifier(api apiInterface, chatID int64, logger log.FieldLogger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, log: logger}
}

func (n *TelegramNotifier) Subscribe(bus EventBus.BusSubscriber) error {
	return bus.Subscribe(events.IngestionCompletedTopic, n.onIngestionCompleted)
}

func (n *TelegramNotifier) onIngestionCompleted(event events.IngestionCompleted) {
	msg := botApi.NewMessage(n.chatID, formatSummary(event))
	if _, err := n.api.Send(msg); err != nil {
		n.log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occurred while sending message: %v", err)
	}
}

func formatSummary(event events.IngestionCompleted) string {
	var sb strings.Builder

	if event.Err != nil {
		sb.WriteString("Ingestion run failed\n")
	} else {
		sb.WriteString("Ingestion run finished\n")
	}

	if event.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n", event.RunID))
	}
	sb.WriteString(fmt.Sprintf("Added: %d\nSkipped: %d\nFiltered: %d\n", event.Added, event.Skipped, event.Filtered))
	sb.WriteString(fmt.Sprintf("Duration: %v", event.Duration.Round(time.Second)))

	if event.Err != nil {
		sb.WriteString(fmt.Sprintf("\nError: %v", event.Err))
	}
	return sb.String()
}
