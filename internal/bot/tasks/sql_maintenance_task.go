package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// newSQLMaintenanceTask compacts the profile database and logs how many
// profiles it holds afterwards.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		started := time.Now()
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Profile database compaction failed", "error", err, "duration", time.Since(started))
			return fmt.Errorf("profile database compaction failed: %w", err)
		}

		profiles, err := deps.Store.ListProfiles(ctx)
		if err != nil {
			// Compaction already succeeded; the count is informational.
			log.WarnContext(ctx, "Failed to count profiles after compaction", "error", err)
			return nil
		}

		log.InfoContext(ctx, "Profile database compacted",
			"duration", time.Since(started),
			"profiles", humanize.Comma(int64(len(profiles))),
		)
		return nil
	}
}
