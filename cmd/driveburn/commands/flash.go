package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/driveburn/driveburn/internal/config"
	"github.com/driveburn/driveburn/pkg/constraints"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/flasher"
	"github.com/driveburn/driveburn/pkg/scanner"
	"github.com/driveburn/driveburn/pkg/settings"
	"github.com/driveburn/driveburn/pkg/source"
	"github.com/driveburn/driveburn/pkg/store"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
)

var flashCmd = &cobra.Command{
	Use:   "flash <image> <device>",
	Short: "Flash an image to a drive",
	Long: `Flashes an image to the given drive. The image is either a local
file path or an image key in the configured download source, in which
case it is fetched and checksum-verified first.`,
	Args: cobra.ExactArgs(2),
	RunE: runFlash,
}

func init() {
	rootCmd.AddCommand(flashCmd)
}

func runFlash(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	imageRef, device := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}
	if err := ensureDirectories(cfg.SettingsDBPath, cfg.FSMDBPath, cfg.DownloadDir); err != nil {
		return err
	}

	st, repo, err := openStore(cfg, constraints.New())
	if err != nil {
		return err
	}
	defer repo.Close()

	stopPersist := settings.Persist(st, repo)
	defer stopPersist()

	// One enumeration pass so the target drive is selectable.
	sc, err := scanner.NewScanner()
	if err != nil {
		return errors.Wrap(err, "scanner init failed")
	}
	drives, err := sc.List(ctx)
	if err != nil {
		return errors.Wrap(err, "drive scan failed")
	}
	if err := st.Dispatch(store.SetAvailableDrives{Drives: drives}); err != nil {
		return errors.Wrap(err, "drive update rejected")
	}

	image, err := resolveImage(ctx, cfg, st, imageRef)
	if err != nil {
		return err
	}
	if err := st.Dispatch(store.SelectImage{Image: image}); err != nil {
		return errors.Wrap(err, "image rejected")
	}
	if err := st.Dispatch(store.SelectDrive{Device: device}); err != nil {
		return errors.Wrap(err, "drive rejected")
	}

	// Keep the drive list fresh while the workflow runs; unplugging the
	// target mid-flash clears its selection in the store.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go scanner.Watch(watchCtx, st, sc, cfg.ScanInterval)

	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	machine := flasher.NewMachine(st, flasher.StubWriter{}, cfg.FlashMaxRetries)
	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	req := &flasher.FlashRequest{
		Device:    device,
		ImagePath: st.State().Selection.Image.Path,
	}
	resp := &flasher.FlashResponse{}

	version, err := start(ctx, device, fsm.NewRequest(req, resp))
	if err != nil {
		return errors.Wrap(err, "FSM start failed")
	}

	slog.Info("flash_started", "version", version, "device", device)

	if err := manager.Wait(ctx, version); err != nil {
		return errors.Wrap(err, "flash workflow failed")
	}

	results := st.State().FlashResults
	slog.Info("flash_finished",
		"device", device,
		"cancelled", results.Cancelled,
		"source_checksum", results.SourceChecksum,
		"error_code", results.ErrorCode,
	)

	return nil
}

// resolveImage turns the CLI image argument into a selectable image:
// a local file when it exists on disk, otherwise a download from the
// image source.
func resolveImage(ctx context.Context, cfg *config.Config, st *store.Store, imageRef string) (*store.Image, error) {
	if info, err := os.Stat(imageRef); err == nil {
		return &store.Image{Path: imageRef, Size: info.Size()}, nil
	}

	client, err := source.NewClient(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		return nil, errors.Wrap(err, "image source failed")
	}

	// Only the key is known up front; size and checksum come back with
	// the artifact.
	artifact, err := client.FetchImage(ctx, &store.Image{URL: imageRef}, downloadDir(st, cfg))
	if err != nil {
		return nil, errors.Wrap(err, "image fetch failed")
	}

	return &store.Image{
		Path:     artifact.LocalPath,
		URL:      imageRef,
		Size:     artifact.Size,
		Checksum: artifact.Checksum,
	}, nil
}
