package commands

import (
	"fmt"
	"os"

	"github.com/driveburn/driveburn/internal/config"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/settings"
	"github.com/spf13/cobra"
)

var (
	resetSettings  bool
	resetDownloads bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset persisted state (settings, downloaded images)",
	Long: `Resets locally persisted state:
  --settings    Drop persisted settings; next run starts from defaults
  --downloads   Delete downloaded image artifacts`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetSettings, "settings", false, "Reset persisted settings")
	resetCmd.Flags().BoolVar(&resetDownloads, "downloads", false, "Delete downloaded images")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetSettings && !resetDownloads {
		return fmt.Errorf("must specify --settings or --downloads")
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	if resetSettings {
		if err := ensureDirectories(cfg.SettingsDBPath, "", ""); err != nil {
			return err
		}
		repo, err := settings.NewRepository(cfg.SettingsDBPath)
		if err != nil {
			return errors.Wrap(err, "settings db init failed")
		}
		defer repo.Close()

		if err := repo.Reset(); err != nil {
			return errors.Wrap(err, "settings reset failed")
		}
		fmt.Println("Settings reset to defaults")
	}

	if resetDownloads {
		if err := os.RemoveAll(cfg.DownloadDir); err != nil {
			return errors.Wrap(err, "failed to delete downloads")
		}
		fmt.Printf("Deleted downloads under %s\n", cfg.DownloadDir)
	}

	return nil
}
