package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/config"
)

// devtoken выпускает access-токен для локальной разработки, когда рядом нет
// сервиса учетных записей.
func main() {
	userFlag := flag.String("user", "", "user id (uuid) to put into the token subject")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Env == "production" {
		slog.Error("devtoken is disabled in production")
		os.Exit(1)
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		slog.Error("invalid -user flag", slog.String("error", err.Error()))
		os.Exit(1)
	}

	manager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	token, expiresAt, err := manager.IssueAccessToken(userID)
	if err != nil {
		slog.Error("failed to issue token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("token issued", slog.String("user_id", userID.String()), slog.Time("expires_at", expiresAt))
	fmt.Println(token)
}
