// Package source retrieves OS image artifacts from the configured
// download source (an S3 bucket) into the local download directory,
// computing checksums as bytes arrive so the result can be verified
// against the catalog metadata before anything is written to a drive.
package source

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/store"
)

// Client fetches image artifacts from an S3-backed image catalog.
// Images are public, so credentials stay anonymous.
type Client struct {
	s3Client *s3.Client
	bucket   string
}

// NewClient creates a source client against the given bucket.
func NewClient(ctx context.Context, bucket, region string) (*Client, error) {
	slog.Info("image_source_init", "bucket", bucket, "region", region)

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		slog.Error("image_source_config_failed", "error", err)
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucket,
	}, nil
}

// Artifact is a fetched image file ready to flash.
type Artifact struct {
	LocalPath string
	Size      int64
	Checksum  string
}

// FetchImage downloads the image referenced by the current selection
// into destDir and verifies it against the image's checksum metadata
// when present. Size and checksum are optional metadata; a zero size
// means unknown and the returned artifact carries the real byte count.
// Images that already name a local path are returned as-is without
// fetching.
func (c *Client) FetchImage(ctx context.Context, image *store.Image, destDir string) (*Artifact, error) {
	if image == nil {
		return nil, fmt.Errorf("no image selected")
	}
	if image.URL == "" {
		slog.Info("image_source_local", "path", image.Path)
		return &Artifact{LocalPath: image.Path, Size: image.Size}, nil
	}

	key, err := objectKey(image.URL)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		slog.Error("image_download_dir_failed", "path", destDir, "error", err)
		return nil, errors.Wrap(err, "failed to create download dir")
	}
	localPath := filepath.Join(destDir, filepath.Base(key))

	artifact, err := c.download(ctx, key, localPath, image.ChecksumType)
	if err != nil {
		return nil, err
	}

	if image.Checksum != "" && !strings.EqualFold(artifact.Checksum, image.Checksum) {
		slog.Error("image_checksum_mismatch",
			"key", key,
			"expected", image.Checksum,
			"actual", artifact.Checksum,
			"checksum_type", image.ChecksumType,
		)
		os.Remove(localPath)
		return nil, fmt.Errorf("checksum mismatch for %s: expected %s, got %s",
			key, image.Checksum, artifact.Checksum)
	}

	return artifact, nil
}

func (c *Client) download(ctx context.Context, key, localPath, checksumType string) (*Artifact, error) {
	slog.Info("image_download_start", "bucket", c.bucket, "key", key, "local_path", localPath)

	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Error("image_download_failed", "key", key, "error", err)
		return nil, errors.Wrap(err, "failed to get image object")
	}
	defer result.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		slog.Error("image_file_creation_failed", "path", localPath, "error", err)
		return nil, errors.Wrap(err, "failed to create image file")
	}
	defer f.Close()

	digest := newDigest(checksumType)
	size, err := io.Copy(io.MultiWriter(f, digest), result.Body)
	if err != nil {
		slog.Error("image_download_copy_failed", "key", key, "error", err)
		return nil, errors.Wrap(err, "failed to download image")
	}

	checksum := hex.EncodeToString(digest.Sum(nil))
	slog.Info("image_download_complete",
		"key", key,
		"size_mb", size/1024/1024,
		"checksum", checksum,
	)

	return &Artifact{LocalPath: localPath, Size: size, Checksum: checksum}, nil
}

// ListImages lists available image artifacts under a catalog prefix.
func (c *Client) ListImages(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.Error("image_list_failed", "prefix", prefix, "error", err)
			return nil, errors.Wrap(err, "failed to list images")
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	slog.Info("image_list_complete", "prefix", prefix, "image_count", len(keys))
	return keys, nil
}

func newDigest(checksumType string) hash.Hash {
	if checksumType == store.DefaultChecksumType {
		return md5.New()
	}
	return sha256.New()
}

// objectKey extracts the bucket key from an image URL. Plain keys pass
// through untouched.
func objectKey(imageURL string) (string, error) {
	if !strings.Contains(imageURL, "://") {
		return imageURL, nil
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid image url %q", imageURL)
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}
