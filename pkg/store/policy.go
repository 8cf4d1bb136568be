package store

// Policy supplies the drive-constraint predicates the reducer consults
// when validating and auto-selecting drives. Implementations must be
// pure: plain drive/image data in, booleans out, no side effects. The
// image argument may be nil when nothing is selected yet; how that case
// is judged is up to the policy.
type Policy interface {
	// IsDriveValid reports whether the drive is an acceptable target
	// for the image at all (not protected, large enough, not the
	// image's own source device).
	IsDriveValid(drive Drive, image *Image) bool

	// HasLargeEnoughStorage reports whether the drive can hold the
	// image's raw size.
	HasLargeEnoughStorage(drive Drive, image *Image) bool

	// IsSizeRecommended reports whether the drive meets the image's
	// recommended capacity, not just its minimum.
	IsSizeRecommended(drive Drive, image *Image) bool

	// IsSystemDrive reports whether the drive hosts the running OS and
	// must therefore be excluded from auto-selection.
	IsSystemDrive(drive Drive) bool
}
