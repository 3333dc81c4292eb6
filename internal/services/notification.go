package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/telemetry"
	domain "github.com/irfndi/fundamentals-ai-go/internal/models"
)

// maxAlertsPerMessage keeps a message under Telegram's 4096 character limit.
const maxAlertsPerMessage = 50

// ErrNotificationsDisabled is returned when no bot or chat is configured.
var ErrNotificationsDisabled = errors.New("telegram notifications are not configured")

// MessageSender is the part of *bot.Bot the service uses.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// NotificationRecorder counts delivery attempts. *metrics.Recorder implements it.
type NotificationRecorder interface {
	RecordNotification(success bool)
}

// NotificationService sends analysis alerts to a Telegram chat.
type NotificationService struct {
	sender   MessageSender
	chatID   int64
	logger   *logging.StandardLogger
	recorder NotificationRecorder
	tracer   *telemetry.BusinessTracer
}

// NewNotificationService creates a Telegram-backed notifier. An empty token or
// a zero chat ID yields a service whose sends return ErrNotificationsDisabled.
func NewNotificationService(telegramBotToken string, chatID int64, logger *logging.StandardLogger) *NotificationService {
	ns := &NotificationService{chatID: chatID, logger: logger, tracer: telemetry.NewBusinessTracer()}
	if telegramBotToken == "" {
		return ns
	}

	telegramBot, err := bot.New(telegramBotToken, bot.WithSkipGetMe())
	if err != nil {
		if logger != nil {
			logger.WithComponent("notification").Warn("Failed to initialize Telegram bot", "error", err.Error())
		}
		return ns
	}
	ns.sender = telegramBot
	return ns
}

// NewNotificationServiceWithSender creates a notifier on an explicit sender.
func NewNotificationServiceWithSender(sender MessageSender, chatID int64, logger *logging.StandardLogger) *NotificationService {
	return &NotificationService{sender: sender, chatID: chatID, logger: logger, tracer: telemetry.NewBusinessTracer()}
}

// WithRecorder attaches a delivery metrics recorder and returns ns.
func (ns *NotificationService) WithRecorder(recorder NotificationRecorder) *NotificationService {
	ns.recorder = recorder
	return ns
}

// Enabled reports whether alerts can be delivered.
func (ns *NotificationService) Enabled() bool {
	return ns != nil && ns.sender != nil && ns.chatID != 0
}

// NotifyStreaks sends one Markdown message listing alerts.
func (ns *NotificationService) NotifyStreaks(ctx context.Context, alerts []domain.StreakAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	if !ns.Enabled() {
		return ErrNotificationsDisabled
	}

	ctx, span := ns.tracer.TraceNotification(ctx, "streak_alert", len(alerts))
	defer span.End()

	_, err := ns.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    ns.chatID,
		Text:      ns.formatStreakMessage(alerts),
		ParseMode: models.ParseModeMarkdown,
	})
	ns.tracer.RecordNotificationResult(span, err == nil, err)
	if ns.recorder != nil {
		ns.recorder.RecordNotification(err == nil)
	}
	if err != nil {
		return fmt.Errorf("failed to send streak alert: %w", err)
	}

	if ns.logger != nil {
		ns.logger.LogBusinessEvent("streak_alert_sent", map[string]interface{}{
			"companies": len(alerts),
			"chat_id":   ns.chatID,
		})
	}
	return nil
}

// SendText sends a plain Markdown message.
func (ns *NotificationService) SendText(ctx context.Context, text string) error {
	if !ns.Enabled() {
		return ErrNotificationsDisabled
	}
	_, err := ns.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    ns.chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (ns *NotificationService) formatStreakMessage(alerts []domain.StreakAlert) string {
	var sb strings.Builder
	sb.WriteString("📈 *Market cap growth streaks*\n\n")

	shown := alerts
	if len(shown) > maxAlertsPerMessage {
		shown = shown[:maxAlertsPerMessage]
	}
	for _, a := range shown {
		agreement := decimal.NewFromFloat(a.CorrelationAll).Mul(decimal.NewFromInt(100)).StringFixed(1)
		sb.WriteString(fmt.Sprintf("• `%s` streaks: *%d*, agreement: %s%%\n", a.Symbol, a.ConsecutiveOnes, agreement))
	}
	if rest := len(alerts) - len(shown); rest > 0 {
		sb.WriteString(fmt.Sprintf("\n…and %d more", rest))
	}
	return sb.String()
}
