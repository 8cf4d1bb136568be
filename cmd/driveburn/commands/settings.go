package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/driveburn/driveburn/internal/config"
	"github.com/driveburn/driveburn/pkg/constraints"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/settings"
	"github.com/driveburn/driveburn/pkg/store"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change persisted settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all settings",
	RunE:  runSettingsList,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := ensureDirectories(cfg.SettingsDBPath, "", ""); err != nil {
		return err
	}

	st, repo, err := openStore(cfg, constraints.New())
	if err != nil {
		return err
	}
	defer repo.Close()

	values := st.State().Settings
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%-26s %v\n", key, values[key])
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := ensureDirectories(cfg.SettingsDBPath, "", ""); err != nil {
		return err
	}

	st, repo, err := openStore(cfg, constraints.New())
	if err != nil {
		return err
	}
	defer repo.Close()

	stop := settings.Persist(st, repo)
	defer stop()

	if err := st.Dispatch(store.SetSetting{Key: key, Value: parseValue(raw)}); err != nil {
		return errors.Wrapf(err, "cannot set %q", key)
	}

	fmt.Printf("%s = %v\n", key, st.State().Settings[key])
	return nil
}

// parseValue coerces a CLI argument into the scalar it looks like, so
// `settings set unsafeMode true` stores a boolean rather than "true".
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
