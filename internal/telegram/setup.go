// Package telegram wires the go-telegram/bot client to the relay: bot
// construction, handler registration, the command menu and outbound delivery.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/relay"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

// RegisterRelay routes every update to handler. Classification happens in
// the handler itself, so a single catch-all registration is enough.
func RegisterRelay(b *bot.Bot, logger *slog.Logger, handler bot.HandlerFunc) (string, error) {
	if b == nil {
		return "", fmt.Errorf("bot instance cannot be nil")
	}
	if handler == nil {
		return "", fmt.Errorf("relay handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := b.RegisterHandlerMatchFunc(func(*models.Update) bool { return true }, handler)
	logger.With("component", "handler_registry").Info("Registered relay handler", "handler_id", id)
	return id, nil
}

// SetCommands publishes the command menu: /start for everybody, plus /list
// in the private chat of every administrator.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger, admins []int64, descriptions config.CommandsConfig) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "command_menu")

	start := models.BotCommand{Command: relay.CommandStart, Description: descriptions.Start}
	list := models.BotCommand{Command: relay.CommandList, Description: descriptions.List}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []models.BotCommand{start},
		Scope:    &models.BotCommandScopeDefault{},
	}); err != nil {
		return fmt.Errorf("failed to set default commands: %w", err)
	}

	for _, adminID := range admins {
		_, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
			Commands: []models.BotCommand{start, list},
			Scope:    &models.BotCommandScopeChat{ChatID: adminID},
		})
		if err != nil {
			// Fails until the admin has opened a chat with the bot.
			log.WarnContext(ctx, "Failed to set admin commands", "admin_id", adminID, "error", err)
		}
	}

	log.InfoContext(ctx, "Bot commands published", "admins", len(admins))
	return nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
