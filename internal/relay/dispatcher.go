package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/export"
	"github.com/edgard/relaybot/internal/routing"
)

// maxTextLength keeps rendered tables below Telegram's 4096 UTF-16 unit limit,
// leaving room for the <pre> wrapper.
const maxTextLength = 4000

// Messenger delivers outbound messages. Every method returns the id of the
// message it created.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendPreformatted(ctx context.Context, chatID int64, text string) (int, error)
	ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) (int, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *database.Profile) error
	ListProfiles(ctx context.Context) ([]database.Profile, error)
}

// Deps provides the collaborators of a Dispatcher.
type Deps struct {
	Logger    *slog.Logger
	Admins    AdminSet
	Routes    *routing.Table
	Store     ProfileStore
	Messenger Messenger
	Messages  config.MessagesConfig
	// Now is used to name export files. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher routes classified events to their handling logic.
type Dispatcher struct {
	log       *slog.Logger
	admins    AdminSet
	adminIDs  []int64
	routes    *routing.Table
	store     ProfileStore
	messenger Messenger
	messages  config.MessagesConfig
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher from deps.
func NewDispatcher(deps Deps) *Dispatcher {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		log:       log.With("component", "relay"),
		admins:    deps.Admins,
		adminIDs:  deps.Admins.IDs(),
		routes:    deps.Routes,
		store:     deps.Store,
		messenger: deps.Messenger,
		messages:  deps.Messages,
		now:       now,
	}
}

// Handle is a go-telegram handler that classifies and dispatches update.
func (d *Dispatcher) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	d.Dispatch(ctx, Classify(update, d.admins))
}

// Dispatch handles a single classified event. Delivery failures are logged
// and never abort the handling of other recipients.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	log := d.log.With("kind", ev.Kind.String(), "chat_id", ev.ChatID, "user_id", ev.Sender.ID)

	switch ev.Kind {
	case KindStart:
		d.handleStart(ctx, log, ev)
	case KindListProfiles:
		d.handleList(ctx, log, ev)
	case KindAdminReply:
		d.handleAdminReply(ctx, log, ev)
	case KindUserMessage:
		d.handleUserMessage(ctx, log, ev)
	default:
		log.DebugContext(ctx, "Ignoring update")
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, log *slog.Logger, ev Event) {
	d.upsertProfile(ctx, log, ev.Sender)

	if _, err := d.messenger.SendText(ctx, ev.ChatID, d.messages.Welcome); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err)
		return
	}
	log.InfoContext(ctx, "User started a conversation")
}

func (d *Dispatcher) handleList(ctx context.Context, log *slog.Logger, ev Event) {
	log.InfoContext(ctx, "Admin requested the user list")

	profiles, err := d.store.ListProfiles(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list profiles", "error", err)
		d.send(ctx, log, ev.ChatID, d.messages.GeneralError)
		return
	}

	if len(profiles) == 0 {
		d.send(ctx, log, ev.ChatID, d.messages.ListEmpty)
		return
	}

	for _, chunk := range export.Tables(profiles, maxTextLength) {
		if _, err := d.messenger.SendPreformatted(ctx, ev.ChatID, chunk); err != nil {
			log.ErrorContext(ctx, "Failed to send user list text", "error", err)
		}
	}

	data, err := export.CSV(profiles)
	if err != nil {
		log.ErrorContext(ctx, "Failed to render user list export", "error", err)
		d.send(ctx, log, ev.ChatID, d.messages.GeneralError)
		return
	}

	filename := export.FileName(d.now())
	if _, err := d.messenger.SendDocument(ctx, ev.ChatID, filename, data, d.listCaption(len(profiles))); err != nil {
		log.ErrorContext(ctx, "Failed to send user list export", "error", err, "filename", filename)
		return
	}
	log.InfoContext(ctx, "Sent user list", "count", len(profiles), "filename", filename, "size", humanize.Bytes(uint64(len(data))))
}

func (d *Dispatcher) handleAdminReply(ctx context.Context, log *slog.Logger, ev Event) {
	key := routing.Key{ChatID: ev.ChatID, MessageID: ev.ReplyToID}
	userID, ok := d.routes.Resolve(key)
	if !ok {
		log.WarnContext(ctx, "Could not find user for admin reply", "reply_to_message_id", ev.ReplyToID)
		if _, err := d.messenger.ReplyText(ctx, ev.ChatID, ev.MessageID, d.messages.ReplyNotFound); err != nil {
			log.ErrorContext(ctx, "Failed to notify admin about unresolved reply", "error", err)
		}
		return
	}

	if _, err := d.messenger.SendText(ctx, userID, ev.Text); err != nil {
		log.ErrorContext(ctx, "Failed to deliver admin reply", "error", err, "target_user_id", userID)
		return
	}
	log.InfoContext(ctx, "Delivered admin reply", "target_user_id", userID)
}

func (d *Dispatcher) handleUserMessage(ctx context.Context, log *slog.Logger, ev Event) {
	d.upsertProfile(ctx, log, ev.Sender)

	text := TagMessage(ev.Sender.ID, ev.Text)
	delivered := 0
	for _, adminID := range d.adminIDs {
		copyID, err := d.messenger.SendText(ctx, adminID, text)
		if err != nil {
			log.ErrorContext(ctx, "Failed to forward message to admin", "error", err, "admin_id", adminID)
			continue
		}
		d.routes.Record(routing.Key{ChatID: adminID, MessageID: copyID}, ev.Sender.ID)
		delivered++
	}

	if delivered == 0 {
		log.ErrorContext(ctx, "Message was not delivered to any admin", "admins", len(d.adminIDs))
		return
	}
	log.InfoContext(ctx, "Forwarded user message to admins", "delivered", delivered, "admins", len(d.adminIDs))
}

func (d *Dispatcher) upsertProfile(ctx context.Context, log *slog.Logger, s Sender) {
	err := d.store.UpsertProfile(ctx, &database.Profile{
		ID:        s.ID,
		Username:  s.Username,
		FirstName: s.FirstName,
		LastName:  s.LastName,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to store user profile", "error", err)
	}
}

func (d *Dispatcher) send(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if _, err := d.messenger.SendText(ctx, chatID, text); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "target_chat_id", chatID)
	}
}

func (d *Dispatcher) listCaption(count int) string {
	if !strings.Contains(d.messages.ListCaption, "%s") {
		return d.messages.ListCaption
	}
	return fmt.Sprintf(d.messages.ListCaption, humanize.Comma(int64(count)))
}

// TagMessage prefixes a user's text with their id for the admin copy.
func TagMessage(userID int64, text string) string {
	return fmt.Sprintf("id: %d\n\n%s", userID, text)
}
