// Package routing keeps the correlation between the copies of user messages
// delivered to administrators and the users who wrote them.
package routing

import "sync"

// Key identifies a single delivered message. Telegram message ids are only
// unique inside one chat, so the chat id is part of the key.
type Key struct {
	ChatID    int64
	MessageID int
}

// Table maps forwarded message keys to the originating user id.
// Entries are never removed; the table lives for the process lifetime.
type Table struct {
	mu      sync.RWMutex
	entries map[Key]int64
}

// NewTable creates an empty routing table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]int64)}
}

// Record stores userID as the origin of the message identified by key,
// overwriting any previous entry for the same key.
func (t *Table) Record(key Key, userID int64) {
	t.mu.Lock()
	t.entries[key] = userID
	t.mu.Unlock()
}

// Resolve returns the user id recorded for key. The second result is false
// when nothing was recorded for it.
func (t *Table) Resolve(key Key) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	userID, ok := t.entries[key]
	return userID, ok
}

// Len returns the number of recorded entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
