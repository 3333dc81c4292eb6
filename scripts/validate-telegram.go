package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/services"
)

// telegramClient is the part of *bot.Bot the checks need.
type telegramClient interface {
	services.MessageSender
	GetMe(ctx context.Context) (*models.User, error)
}

var errMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not configured")

func main() {
	send := flag.Bool("send", false, "send a test message to the configured chat")
	flag.Parse()

	fmt.Println("🔧 Validating Telegram Bot Configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Telegram.BotToken == "" {
		fmt.Printf("❌ %v\n", errMissingToken)
		os.Exit(1)
	}

	b, err := bot.New(cfg.Telegram.BotToken, bot.WithSkipGetMe())
	if err != nil {
		fmt.Printf("❌ Failed to create Telegram bot: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := validate(ctx, os.Stdout, cfg.Telegram, b, *send); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

// validate checks the bot token against the API and, when send is set,
// delivers a test message to the configured chat.
func validate(ctx context.Context, out io.Writer, cfg config.TelegramConfig, client telegramClient, send bool) error {
	if cfg.BotToken == "" {
		return errMissingToken
	}
	fmt.Fprintf(out, "✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.BotToken))

	fmt.Fprintln(out, "🔍 Testing bot API connection...")
	botInfo, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	fmt.Fprintf(out, "✅ Bot API connection successful!\n")
	fmt.Fprintf(out, "   Bot Name: %s\n", botInfo.FirstName)
	fmt.Fprintf(out, "   Bot Username: @%s\n", botInfo.Username)
	fmt.Fprintf(out, "   Bot ID: %d\n", botInfo.ID)

	if cfg.ChatID == 0 {
		fmt.Fprintln(out, "⚠️  TELEGRAM_CHAT_ID is not configured, streak alerts are disabled")
		return nil
	}
	fmt.Fprintf(out, "✅ TELEGRAM_CHAT_ID is configured: %d\n", cfg.ChatID)

	if cfg.StreakAlertThreshold <= 0 {
		fmt.Fprintln(out, "⚠️  telegram.streak_alert_threshold is 0, streak alerts are disabled")
	} else {
		fmt.Fprintf(out, "✅ Streak alerts fire at %d consecutive ones\n", cfg.StreakAlertThreshold)
	}

	if send {
		notifier := services.NewNotificationServiceWithSender(client, cfg.ChatID, nil)
		if err := notifier.SendText(ctx, "Telegram configuration check from fundamentals-ai-go"); err != nil {
			return fmt.Errorf("failed to send test message: %w", err)
		}
		fmt.Fprintln(out, "✅ Test message delivered")
	}

	fmt.Fprintln(out, "\n🎉 All Telegram bot configuration checks passed!")
	return nil
}
