// Package scanner enumerates attached block devices that are candidate
// flash targets and feeds each pass into the state store wholesale. The
// store never patches individual drives; every enumeration replaces the
// whole list so derived annotations stay consistent.
package scanner

import (
	"context"

	"github.com/driveburn/driveburn/pkg/store"
)

// Scanner enumerates candidate target drives. Implementations report
// every removable-looking block device, including protected and system
// drives; filtering is the state core's job.
type Scanner interface {
	// List returns the currently attached drives.
	List(ctx context.Context) ([]store.Drive, error)
}
