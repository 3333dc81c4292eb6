package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/irfndi/fundamentals-ai-go/internal/models"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func TestNewNotificationService(t *testing.T) {
	ns := NewNotificationService("", 42, nil)
	assert.NotNil(t, ns)
	assert.False(t, ns.Enabled())

	// Token present but no chat configured
	ns = NewNotificationService("123:abc", 0, nil)
	assert.False(t, ns.Enabled())
}

func TestNotificationService_NotifyStreaks(t *testing.T) {
	sender := &MockSender{}
	ns := NewNotificationServiceWithSender(sender, -100123, nil)

	alerts := []domain.StreakAlert{
		{Symbol: "NYSE:IBM", ConsecutiveOnes: 6, CorrelationAll: 0.4321},
		{Symbol: "DEZ:DE", ConsecutiveOnes: 4, CorrelationAll: 0.5},
	}

	sender.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *bot.SendMessageParams) bool {
		text := p.Text
		return p.ChatID == int64(-100123) &&
			p.ParseMode == models.ParseModeMarkdown &&
			strings.Contains(text, "`NYSE:IBM` streaks: *6*, agreement: 43.2%") &&
			strings.Contains(text, "`DEZ:DE` streaks: *4*, agreement: 50.0%")
	})).Return(&models.Message{ID: 1}, nil).Once()

	require.NoError(t, ns.NotifyStreaks(context.Background(), alerts))
	sender.AssertExpectations(t)
}

func TestNotificationService_NotifyStreaks_Empty(t *testing.T) {
	sender := &MockSender{}
	ns := NewNotificationServiceWithSender(sender, 1, nil)

	require.NoError(t, ns.NotifyStreaks(context.Background(), nil))
	sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestNotificationService_Disabled(t *testing.T) {
	ns := NewNotificationService("", 0, nil)
	err := ns.NotifyStreaks(context.Background(), []domain.StreakAlert{{Symbol: "A"}})
	assert.ErrorIs(t, err, ErrNotificationsDisabled)
	assert.ErrorIs(t, ns.SendText(context.Background(), "hi"), ErrNotificationsDisabled)
}

type deliveryCounter struct {
	ok, failed int
}

func (d *deliveryCounter) RecordNotification(success bool) {
	if success {
		d.ok++
	} else {
		d.failed++
	}
}

func TestNotificationService_SendError(t *testing.T) {
	sender := &MockSender{}
	counter := &deliveryCounter{}
	ns := NewNotificationServiceWithSender(sender, 1, nil).WithRecorder(counter)
	sender.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("Forbidden: bot was blocked")).Once()
	sender.On("SendMessage", mock.Anything, mock.Anything).Return(&models.Message{ID: 2}, nil).Once()

	alerts := []domain.StreakAlert{{Symbol: "A", ConsecutiveOnes: 5}}
	err := ns.NotifyStreaks(context.Background(), alerts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")

	require.NoError(t, ns.NotifyStreaks(context.Background(), alerts))
	assert.Equal(t, 1, counter.ok)
	assert.Equal(t, 1, counter.failed)
}

func TestNotificationService_FormatTruncates(t *testing.T) {
	ns := NewNotificationServiceWithSender(nil, 1, nil)

	alerts := make([]domain.StreakAlert, maxAlertsPerMessage+3)
	for i := range alerts {
		alerts[i] = domain.StreakAlert{Symbol: fmt.Sprintf("S%d", i), ConsecutiveOnes: 4}
	}

	msg := ns.formatStreakMessage(alerts)
	assert.Equal(t, maxAlertsPerMessage, strings.Count(msg, "• "))
	assert.Contains(t, msg, "and 3 more")
}
