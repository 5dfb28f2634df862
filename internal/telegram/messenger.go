package telegram

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/relay"
)

// Messenger delivers outbound messages through the Bot API. Each call is a
// single attempt bounded by the configured request timeout.
type Messenger struct {
	bot     *bot.Bot
	timeout time.Duration
}

// NewMessenger creates a Messenger. A zero timeout means no extra deadline
// beyond the one carried by the caller's context.
func NewMessenger(b *bot.Bot, timeout time.Duration) *Messenger {
	return &Messenger{bot: b, timeout: timeout}
}

// SendText sends a plain text message and returns its id.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	return m.sendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

// SendPreformatted sends text as a monospace block so tables keep their layout.
func (m *Messenger) SendPreformatted(ctx context.Context, chatID int64, text string) (int, error) {
	return m.sendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      "<pre>" + html.EscapeString(text) + "</pre>",
		ParseMode: models.ParseModeHTML,
	})
}

// ReplyText sends text as a reply to the message replyTo in chatID.
func (m *Messenger) ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	return m.sendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	})
}

// SendDocument uploads data as a file attachment.
func (m *Messenger) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) (int, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	msg, err := m.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  caption,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send document to chat %d: %w", chatID, err)
	}
	return msg.ID, nil
}

func (m *Messenger) sendMessage(ctx context.Context, params *bot.SendMessageParams) (int, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	msg, err := m.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %v: %w", params.ChatID, err)
	}
	return msg.ID, nil
}

func (m *Messenger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

var _ relay.Messenger = (*Messenger)(nil)
