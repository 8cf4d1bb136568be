package commands

import (
	"context"
	"fmt"

	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/scanner"
	"github.com/spf13/cobra"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "List attached drives and their flash eligibility",
	RunE:  runDrives,
}

func init() {
	rootCmd.AddCommand(drivesCmd)
}

func runDrives(cmd *cobra.Command, args []string) error {
	sc, err := scanner.NewScanner()
	if err != nil {
		return errors.Wrap(err, "scanner init failed")
	}

	drives, err := sc.List(context.Background())
	if err != nil {
		return errors.Wrap(err, "drive scan failed")
	}

	if len(drives) == 0 {
		fmt.Println("No drives found")
		return nil
	}

	fmt.Printf("%-20s %-12s %-10s %-8s\n", "DEVICE", "SIZE", "PROTECTED", "SYSTEM")
	fmt.Println("----------------------------------------------------")

	for _, d := range drives {
		fmt.Printf("%-20s %-12s %-10v %-8v\n",
			d.Device, formatSize(d.Size), d.Protected, d.System)
	}

	return nil
}

func formatSize(size int64) string {
	const gb = 1000 * 1000 * 1000
	if size >= gb {
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	}
	return fmt.Sprintf("%d MB", size/1000/1000)
}
