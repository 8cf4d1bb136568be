package commands

import (
	"context"
	"fmt"

	"github.com/driveburn/driveburn/internal/config"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/source"
	"github.com/spf13/cobra"
)

var imagesPrefix string

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List images available from the download source",
	RunE:  runImages,
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.Flags().StringVar(&imagesPrefix, "prefix", "", "Only list images under this prefix")
}

func runImages(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	client, err := source.NewClient(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		return errors.Wrap(err, "image source failed")
	}

	keys, err := client.ListImages(ctx, imagesPrefix)
	if err != nil {
		return errors.Wrap(err, "image list failed")
	}

	if len(keys) == 0 {
		fmt.Println("No images found")
		return nil
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}
