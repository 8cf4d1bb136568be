// Package store implements the authoritative application state for the
// flashing tool: available target drives, the OS/image selection, flash
// progress and results, and persisted user settings. State is a single
// immutable snapshot advanced only by dispatching actions through a pure
// reducer; collaborators (drive scanner, image source, flash workflow,
// settings persistence) interact with it exclusively through Dispatch and
// read-only snapshots.
package store

import "maps"

// Drive is one attached storage target, as reported by the last
// enumeration pass. The Device path is its identity; two enumerations
// reporting the same path describe the same drive.
type Drive struct {
	Device    string
	Size      int64
	Protected bool
	System    bool

	// RecommendedImage is derived by the reducer from the selected OS.
	// It is never user-supplied and is recomputed on every enumeration.
	RecommendedImage *Image
}

// Image is a concrete flashable artifact, either a local file or an
// OS-provided download. Path is required; the rest is metadata.
type Image struct {
	Path                 string
	URL                  string
	Name                 string
	Logo                 string
	Version              string
	Size                 int64
	Checksum             string
	ChecksumType         string
	RecommendedDriveSize int64
}

// OperatingSystem is a catalog entry offering candidate images, one of
// which gets recommended per drive based on size.
type OperatingSystem struct {
	Name    string
	Logo    string
	Version string
	Images  []Image
}

// Progress describes an in-flight flash. Meaningful only while
// State.IsFlashing is true.
type Progress struct {
	Type       string
	Percentage float64
	ETA        float64
	Speed      float64
}

// Results describes a finished flash. Populated when flashing ends and
// cleared when the next flash starts.
type Results struct {
	Cancelled      bool
	SourceChecksum string
	ErrorCode      string
}

// Selection groups the user's current choices. Drive references an entry
// in AvailableDrives by device path, never by identity.
type Selection struct {
	OS    *OperatingSystem
	Drive string
	Image *Image
}

// State is one immutable application snapshot. Snapshots handed out by
// the store are never mutated by later dispatches; holders may keep them
// indefinitely.
type State struct {
	AvailableDrives []Drive
	Selection       Selection
	IsFlashing      bool
	FlashState      Progress
	FlashResults    Results
	Settings        map[string]any
}

// Setting keys. The set is closed: SET_SETTING rejects anything else.
const (
	SettingUnsafeMode             = "unsafeMode"
	SettingErrorReporting         = "errorReporting"
	SettingUnmountOnSuccess       = "unmountOnSuccess"
	SettingValidateWriteOnSuccess = "validateWriteOnSuccess"
	SettingSleepUpdateCheck       = "sleepUpdateCheck"
	SettingLastUpdateNotify       = "lastUpdateNotify"
	SettingDownloadPath           = "downloadPath"
	SettingDownloadSource         = "downloadSource"
)

// DefaultChecksumType is assumed for OS-provided images that do not name
// a checksum algorithm.
const DefaultChecksumType = "md5"

// DefaultSettings returns a fresh copy of the default settings map.
func DefaultSettings() map[string]any {
	return map[string]any{
		SettingUnsafeMode:             false,
		SettingErrorReporting:         false,
		SettingUnmountOnSuccess:       true,
		SettingValidateWriteOnSuccess: true,
		SettingSleepUpdateCheck:       false,
		SettingLastUpdateNotify:       int64(0),
		SettingDownloadPath:           "",
		SettingDownloadSource:         "",
	}
}

// DefaultState returns the snapshot a fresh store starts from.
func DefaultState() State {
	return State{
		AvailableDrives: []Drive{},
		Settings:        DefaultSettings(),
	}
}

func (i *Image) clone() *Image {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func (o *OperatingSystem) clone() *OperatingSystem {
	if o == nil {
		return nil
	}
	c := *o
	c.Images = append([]Image(nil), o.Images...)
	return &c
}

func cloneDrives(drives []Drive) []Drive {
	if drives == nil {
		return nil
	}
	out := make([]Drive, len(drives))
	for i, d := range drives {
		d.RecommendedImage = d.RecommendedImage.clone()
		out[i] = d
	}
	return out
}

// clone produces a snapshot the reducer can mutate without touching the
// committed state.
func (s State) clone() State {
	next := s
	next.AvailableDrives = cloneDrives(s.AvailableDrives)
	next.Selection.OS = s.Selection.OS.clone()
	next.Selection.Image = s.Selection.Image.clone()
	next.Settings = maps.Clone(s.Settings)
	return next
}

func findDrive(drives []Drive, device string) (Drive, bool) {
	for _, d := range drives {
		if d.Device == device {
			return d, true
		}
	}
	return Drive{}, false
}
