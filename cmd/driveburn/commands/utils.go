package commands

import (
	"os"
	"path/filepath"

	"github.com/driveburn/driveburn/internal/config"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/settings"
	"github.com/driveburn/driveburn/pkg/store"
)

// ensureDirectories creates all necessary directories for the application
func ensureDirectories(settingsDBPath, fsmDBPath, downloadDir string) error {
	if err := os.MkdirAll(filepath.Dir(settingsDBPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create settings database directory")
	}

	// FSM database directory (only needed for flash command)
	if fsmDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(fsmDBPath), 0755); err != nil {
			return errors.Wrap(err, "failed to create FSM directory")
		}
	}

	// Download directory (only needed for flash/fetch commands)
	if downloadDir != "" {
		if err := os.MkdirAll(downloadDir, 0755); err != nil {
			return errors.Wrap(err, "failed to create download directory")
		}
	}

	return nil
}

// openStore builds the state store on top of the persisted settings.
// The caller owns closing the returned repository.
func openStore(cfg *config.Config, policy store.Policy) (*store.Store, *settings.Repository, error) {
	repo, err := settings.NewRepository(cfg.SettingsDBPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "settings db init failed")
	}

	persisted, err := repo.Load()
	if err != nil {
		repo.Close()
		return nil, nil, errors.Wrap(err, "settings load failed")
	}

	st := store.New(policy, store.WithSettings(persisted))
	return st, repo, nil
}

// downloadDir resolves the image download directory, preferring the
// user's downloadPath setting over the configured default.
func downloadDir(st *store.Store, cfg *config.Config) string {
	if path, ok := st.State().Settings[store.SettingDownloadPath].(string); ok && path != "" {
		return path
	}
	return cfg.DownloadDir
}
