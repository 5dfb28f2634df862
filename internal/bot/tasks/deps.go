// Package tasks implements the periodic maintenance tasks of the relay bot.
package tasks

import (
	"log/slog"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/routing"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Routes *routing.Table
}
