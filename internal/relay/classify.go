// Package relay classifies inbound Telegram updates and relays messages
// between users and the configured administrators.
package relay

import (
	"slices"
	"strings"

	"github.com/go-telegram/bot/models"
)

// Command names understood by the bot, without the leading slash.
const (
	CommandStart = "start"
	CommandList  = "list"
)

// Kind is the class of an inbound event.
type Kind int

// Event kinds, listed in classification precedence order.
const (
	KindIgnored Kind = iota
	KindStart
	KindListProfiles
	KindAdminReply
	KindUserMessage
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindListProfiles:
		return "list_profiles"
	case KindAdminReply:
		return "admin_reply"
	case KindUserMessage:
		return "user_message"
	default:
		return "ignored"
	}
}

// Sender is the identity metadata of the user who sent an update.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Event is a classified inbound message.
type Event struct {
	Kind      Kind
	ChatID    int64
	MessageID int
	Sender    Sender
	Text      string
	// ReplyToID is the id of the message an admin replied to. Only set for
	// KindAdminReply.
	ReplyToID int
}

// AdminSet is the fixed set of administrator ids.
type AdminSet map[int64]struct{}

// NewAdminSet builds an AdminSet from a list of ids.
func NewAdminSet(ids []int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// IDs returns the administrator ids in ascending order.
func (s AdminSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsAdmin reports whether id belongs to admins.
func IsAdmin(id int64, admins AdminSet) bool {
	_, ok := admins[id]
	return ok
}

// Classify turns an update into an Event. Precedence is
// start > list request > admin reply > user message.
func Classify(update *models.Update, admins AdminSet) Event {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return Event{Kind: KindIgnored}
	}

	msg := update.Message
	ev := Event{
		Kind:      KindIgnored,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Sender: Sender{
			ID:        msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		},
		Text: msg.Text,
	}
	if msg.Text == "" {
		return ev
	}

	admin := IsAdmin(msg.From.ID, admins)
	command := commandName(msg.Text)

	switch {
	case command == CommandStart:
		ev.Kind = KindStart
	case command == CommandList && admin:
		ev.Kind = KindListProfiles
	case msg.ReplyToMessage != nil && admin:
		ev.Kind = KindAdminReply
		ev.ReplyToID = msg.ReplyToMessage.ID
	default:
		ev.Kind = KindUserMessage
	}
	return ev
}

// commandName extracts the command from texts like "/start", "/start@bot"
// or "/start payload". It returns "" when text is not a command.
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}
