package store

// maxCascadeDepth bounds recursive cascade invocation. The longest real
// chain is SELECT_OS → SET_AVAILABLE_DRIVES → SELECT_DRIVE →
// SELECT_IMAGE → REMOVE_DRIVE → REMOVE_IMAGE; anything deeper indicates
// a transition bug, not a legitimate dispatch.
const maxCascadeDepth = 8

// reducer computes state transitions. It is pure: no I/O, no logging,
// no mutation of its input snapshot. Cascaded transitions recurse
// through reduce within the same dispatch.
type reducer struct {
	policy Policy
}

func (r reducer) reduce(s State, a Action) (State, error) {
	return r.step(s, a, 0)
}

func (r reducer) step(s State, a Action, depth int) (State, error) {
	if depth > maxCascadeDepth {
		return s, validationf("action", "cascade depth exceeded dispatching %s", a.Kind())
	}

	switch a := a.(type) {
	case SetAvailableDrives:
		return r.setAvailableDrives(s, a, depth)
	case SetFlashState:
		return r.setFlashState(s, a)
	case ResetFlashState:
		return r.resetFlashState(s)
	case SetFlashingFlag:
		return r.setFlashingFlag(s)
	case UnsetFlashingFlag:
		return r.unsetFlashingFlag(s, a)
	case SelectOS:
		return r.selectOS(s, a, depth)
	case SelectDrive:
		return r.selectDrive(s, a, depth)
	case SelectImage:
		return r.selectImage(s, a, depth)
	case RemoveOS:
		return r.removeOS(s, depth)
	case RemoveDrive:
		return r.removeDrive(s, depth)
	case RemoveImage:
		return r.removeImage(s)
	case SetSetting:
		return r.setSetting(s, a)
	default:
		// Unrecognized kinds are tolerated unchanged so forward-compatible
		// message kinds do not break older cores.
		return s, nil
	}
}

// attempt runs a derived transition and falls back to the pre-cascade
// state when it fails. Cascade errors are discarded on purpose: the
// outer transition's own effect must still commit.
func (r reducer) attempt(s State, a Action, depth int) State {
	next, err := r.step(s, a, depth)
	if err != nil {
		return s
	}
	return next
}

func (r reducer) setAvailableDrives(s State, a SetAvailableDrives, depth int) (State, error) {
	if a.Drives == nil {
		return s, validationf("drives", "missing drive list")
	}
	for i := range a.Drives {
		if a.Drives[i].Device == "" {
			return s, validationf("drives", "drive at index %d has no device identifier", i)
		}
	}

	next := s.clone()
	drives := cloneDrives(a.Drives)
	for i := range drives {
		// The annotation is derived state; whatever the producer sent is
		// recomputed against the current OS selection.
		drives[i].RecommendedImage = nil
		if next.Selection.OS != nil {
			drives[i].RecommendedImage = recommendImage(r.policy, drives[i], next.Selection.OS)
		}
	}
	next.AvailableDrives = drives

	if len(drives) == 1 {
		drive := drives[0]
		image := contextImage(next.Selection, drive)
		if r.policy.IsDriveValid(drive, image) &&
			r.policy.IsSizeRecommended(drive, image) &&
			!r.policy.IsSystemDrive(drive) {
			return r.step(next, SelectDrive{Device: drive.Device}, depth+1)
		}
	}

	if next.Selection.Drive != "" {
		if _, ok := findDrive(drives, next.Selection.Drive); !ok {
			return r.step(next, RemoveDrive{}, depth+1)
		}
	}
	return next, nil
}

// recommendImage picks the candidate image maximizing RecommendedDriveSize
// among those the drive is size-recommended for. Ties keep the
// first-listed candidate. Returns nil when no candidate qualifies.
func recommendImage(policy Policy, drive Drive, os *OperatingSystem) *Image {
	var best *Image
	for i := range os.Images {
		img := &os.Images[i]
		if !policy.IsSizeRecommended(drive, img) {
			continue
		}
		if best == nil || img.RecommendedDriveSize > best.RecommendedDriveSize {
			best = img
		}
	}
	return best.clone()
}

// contextImage resolves the image a candidate drive should be judged
// against: the explicit selection when present, otherwise the drive's
// own recommended image under the selected OS.
func contextImage(sel Selection, drive Drive) *Image {
	if sel.Image != nil {
		return sel.Image
	}
	return drive.RecommendedImage
}

func (r reducer) setFlashState(s State, a SetFlashState) (State, error) {
	if !s.IsFlashing {
		return s, validationf("flashState", "flash state can only change while flashing")
	}
	p := a.Progress
	if p == nil {
		return s, validationf("flashState", "missing progress record")
	}
	if p.Type == "" {
		return s, validationf("type", "missing flash state type")
	}
	// Percentage, eta and speed are stored as reported. Progress is a
	// wholesale replacement; producers that briefly overshoot or report
	// oddities are the consumer's problem, not a failed dispatch.
	next := s.clone()
	next.FlashState = *p
	return next, nil
}

func (r reducer) resetFlashState(s State) (State, error) {
	next := s.clone()
	next.FlashState = Progress{}
	next.FlashResults = Results{}
	return next, nil
}

func (r reducer) setFlashingFlag(s State) (State, error) {
	next := s.clone()
	next.IsFlashing = true
	next.FlashResults = Results{}
	return next, nil
}

func (r reducer) unsetFlashingFlag(s State, a UnsetFlashingFlag) (State, error) {
	res := a.Results
	if res == nil {
		return s, validationf("results", "missing flash results")
	}
	if res.Cancelled && res.SourceChecksum != "" {
		return s, validationf("checksum", "a cancelled flash cannot report a source checksum")
	}
	next := s.clone()
	next.IsFlashing = false
	next.FlashResults = *res
	next.FlashState = Progress{}
	return next, nil
}

func (r reducer) selectOS(s State, a SelectOS, depth int) (State, error) {
	if a.OS == nil {
		return s, validationf("os", "missing operating system")
	}
	next := s.clone()
	next.Selection.OS = a.OS.clone()

	// Recompute the per-drive recommendations against the new OS. The
	// list itself is unchanged, only annotations move.
	next = r.attempt(next, SetAvailableDrives{Drives: next.AvailableDrives}, depth+1)

	// A previously selected drive is re-selected under the new OS so its
	// derived image follows; with no recommendation it is dropped.
	// Failures in this derived step are discarded and the OS selection
	// stands regardless.
	if device := s.Selection.Drive; device != "" {
		if drive, ok := findDrive(next.AvailableDrives, device); ok {
			if drive.RecommendedImage == nil {
				next = r.attempt(next, RemoveDrive{}, depth+1)
			} else {
				next = r.attempt(next, SelectDrive{Device: device}, depth+1)
			}
		}
	}
	return next, nil
}

func (r reducer) selectDrive(s State, a SelectDrive, depth int) (State, error) {
	if a.Device == "" {
		return s, validationf("drive", "missing device identifier")
	}
	drive, ok := findDrive(s.AvailableDrives, a.Device)
	if !ok {
		return s, validationf("drive", "device %q is not available", a.Device)
	}
	if drive.Protected {
		return s, validationf("drive", "drive is write-protected")
	}

	next := s.clone()

	if next.Selection.OS == nil {
		if next.Selection.Image != nil && !r.policy.HasLargeEnoughStorage(drive, next.Selection.Image) {
			return s, validationf("drive", "drive %q is too small for the selected image", a.Device)
		}
		next.Selection.Drive = a.Device
		return next, nil
	}

	if rec := drive.RecommendedImage; rec != nil {
		img := rec.clone()
		img.Path = rec.URL
		if img.ChecksumType == "" {
			img.ChecksumType = DefaultChecksumType
		}
		img.Name = next.Selection.OS.Name
		img.Logo = next.Selection.OS.Logo
		img.Version = next.Selection.OS.Version
		next = r.attempt(next, SelectImage{Image: img}, depth+1)
	}
	next.Selection.Drive = a.Device
	return next, nil
}

func (r reducer) selectImage(s State, a SelectImage, depth int) (State, error) {
	img := a.Image
	if img == nil {
		return s, validationf("image", "missing image")
	}
	if img.Path == "" {
		return s, validationf("image", "missing image path")
	}
	if img.Size <= 0 {
		return s, validationf("image", "invalid image size %d", img.Size)
	}

	next := s.clone()
	if next.Selection.OS == nil && next.Selection.Drive != "" {
		// Local-image mode: the selected drive must still fit the new
		// image; when it no longer does, it is dropped but the image
		// selection itself still applies.
		if drive, ok := findDrive(next.AvailableDrives, next.Selection.Drive); ok {
			if !r.policy.IsDriveValid(drive, img) || !r.policy.IsSizeRecommended(drive, img) {
				next = r.attempt(next, RemoveDrive{}, depth+1)
			}
		}
	}
	next.Selection.Image = img.clone()
	return next, nil
}

func (r reducer) removeOS(s State, depth int) (State, error) {
	next := s
	if next.Selection.Image != nil {
		next = r.attempt(next, RemoveImage{}, depth+1)
	}
	next = next.clone()
	next.Selection.OS = nil
	return next, nil
}

func (r reducer) removeDrive(s State, depth int) (State, error) {
	next := s
	if next.Selection.OS != nil {
		// A drive chosen under an OS implies a derived image; both go.
		next = r.attempt(next, RemoveImage{}, depth+1)
	}
	next = next.clone()
	next.Selection.Drive = ""
	return next, nil
}

func (r reducer) removeImage(s State) (State, error) {
	next := s.clone()
	next.Selection.Image = nil
	return next, nil
}

func (r reducer) setSetting(s State, a SetSetting) (State, error) {
	if a.Key == "" {
		return s, validationf("key", "missing setting key")
	}
	if _, ok := DefaultSettings()[a.Key]; !ok {
		return s, validationf("key", "unsupported setting %q", a.Key)
	}
	if !isScalar(a.Value) {
		return s, validationf("value", "setting %q requires a scalar value, got %T", a.Key, a.Value)
	}
	next := s.clone()
	next.Settings[a.Key] = a.Value
	return next, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
