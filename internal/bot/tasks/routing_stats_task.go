package tasks

import (
	"context"

	"github.com/dustin/go-humanize"
)

// newRoutingStatsTask logs the size of the in-memory routing table, which
// grows for the lifetime of the process.
func newRoutingStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "routing_stats")

	return func(ctx context.Context) error {
		entries := deps.Routes.Len()
		log.InfoContext(ctx, "Routing table size", "entries", entries, "entries_human", humanize.Comma(int64(entries)))
		return nil
	}
}
