package main

import (
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
	"github.com/irfndi/fundamentals-ai-go/internal/middleware"
)

const defaultTokenTTL = 24 * time.Hour

// runAdminToken prints an admin JWT for the admin routes.
// Usage: server admin-token [subject] [ttl]
func runAdminToken(args []string, out io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return writeAdminToken(cfg.Security, args, out)
}

func writeAdminToken(security config.SecurityConfig, args []string, out io.Writer) error {
	subject := "operator"
	if len(args) > 0 && args[0] != "" {
		subject = args[0]
	}

	ttl := defaultTokenTTL
	if len(args) > 1 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid token ttl %q", args[1])
		}
		ttl = parsed
	}

	token, err := middleware.NewAdminMiddleware(security).GenerateToken(subject, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
