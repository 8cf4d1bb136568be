package settings

import (
	"log/slog"
	"reflect"

	"github.com/driveburn/driveburn/pkg/store"
)

// Persist subscribes to the store and writes the settings subtree after
// every state change that touches it. Persistence failures are logged,
// never surfaced into the store; the in-memory state stays
// authoritative. The returned function stops persisting.
func Persist(st *store.Store, repo *Repository) func() {
	last := st.State().Settings
	return st.Subscribe(func(s store.State) {
		if reflect.DeepEqual(s.Settings, last) {
			return
		}
		if err := repo.Save(s.Settings); err != nil {
			slog.Warn("settings_persist_failed", "error", err)
			return
		}
		last = s.Settings
	})
}
