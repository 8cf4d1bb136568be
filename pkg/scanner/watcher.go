package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/driveburn/driveburn/pkg/store"
)

// Watch polls the scanner and pushes every enumeration pass into the
// store until ctx is done. An immediate pass runs before the first
// tick. Scan failures are logged and the previous drive list stays
// current; they never tear down the watcher.
func Watch(ctx context.Context, st *store.Store, sc Scanner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		drives, err := sc.List(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("drive_scan_failed", "error", err)
		} else if err := st.Dispatch(store.SetAvailableDrives{Drives: drives}); err != nil {
			slog.Warn("drive_update_rejected", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
