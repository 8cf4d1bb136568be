// Package constraints implements the default drive-constraint policy:
// the size and safety heuristics the state core consults when judging
// whether a drive can take an image. All predicates are pure functions
// over plain drive/image data so the reducer stays deterministic.
package constraints

import "github.com/driveburn/driveburn/pkg/store"

// Policy is the default store.Policy implementation. A zero value is
// usable; AlignmentMargin reserves extra bytes beyond the raw image
// size for partition-table alignment.
type Policy struct {
	AlignmentMargin int64
}

// New returns a policy with no alignment margin.
func New() *Policy {
	return &Policy{}
}

// HasLargeEnoughStorage reports whether the drive can hold the image's
// raw size plus the alignment margin. A nil image never fits.
func (p *Policy) HasLargeEnoughStorage(drive store.Drive, image *store.Image) bool {
	if image == nil {
		return false
	}
	return drive.Size >= image.Size+p.AlignmentMargin
}

// IsSizeRecommended reports whether the drive meets the image's
// recommended capacity. Images that declare no recommended size fall
// back to their raw size.
func (p *Policy) IsSizeRecommended(drive store.Drive, image *store.Image) bool {
	if image == nil {
		return false
	}
	recommended := image.RecommendedDriveSize
	if recommended == 0 {
		recommended = image.Size
	}
	return drive.Size >= recommended
}

// IsSystemDrive reports whether the drive hosts the running operating
// system. Detection happens during enumeration; the policy only reads
// the flag.
func (p *Policy) IsSystemDrive(drive store.Drive) bool {
	return drive.System
}

// IsDriveValid reports whether the drive is an acceptable flash target
// for the image: not write-protected, large enough, and not the device
// the image itself lives on.
func (p *Policy) IsDriveValid(drive store.Drive, image *store.Image) bool {
	if image == nil {
		return false
	}
	return !drive.Protected &&
		p.HasLargeEnoughStorage(drive, image) &&
		!isSourceDrive(drive, image)
}

// isSourceDrive reports whether the image file lives on the drive,
// which would make flashing destroy its own source.
func isSourceDrive(drive store.Drive, image *store.Image) bool {
	if image.Path == "" {
		return false
	}
	return hasPathPrefix(image.Path, drive.Device)
}

func hasPathPrefix(path, device string) bool {
	if device == "" {
		return false
	}
	if len(path) < len(device) || path[:len(device)] != device {
		return false
	}
	return len(path) == len(device) || path[len(device)] == '/'
}
