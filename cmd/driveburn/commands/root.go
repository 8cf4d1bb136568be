package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "driveburn",
	Short: "driveburn - flash OS images to drives",
	Long:  `Flashes OS images to removable drives with image download, checksum verification, and a persistent flash workflow.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("settings-db-path", ".driveburn/settings.db", "Settings database path")
	rootCmd.PersistentFlags().String("fsm-db-path", ".driveburn/fsm.db", "Flash workflow BoltDB path")
	rootCmd.PersistentFlags().String("s3-bucket", "driveburn-images", "Image source bucket")
	rootCmd.PersistentFlags().String("s3-region", "us-east-1", "Image source region")
	rootCmd.PersistentFlags().String("download-dir", "/tmp/driveburn/downloads", "Directory for downloaded images")
	rootCmd.PersistentFlags().Duration("scan-interval", 2*time.Second, "Drive enumeration poll interval")

	viper.BindPFlag("settings-db-path", rootCmd.PersistentFlags().Lookup("settings-db-path"))
	viper.BindPFlag("fsm-db-path", rootCmd.PersistentFlags().Lookup("fsm-db-path"))
	viper.BindPFlag("s3-bucket", rootCmd.PersistentFlags().Lookup("s3-bucket"))
	viper.BindPFlag("s3-region", rootCmd.PersistentFlags().Lookup("s3-region"))
	viper.BindPFlag("download-dir", rootCmd.PersistentFlags().Lookup("download-dir"))
	viper.BindPFlag("scan-interval", rootCmd.PersistentFlags().Lookup("scan-interval"))
}
