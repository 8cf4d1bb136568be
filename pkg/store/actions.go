package store

// Kind names an action for logging and for collaborators that construct
// dispatches. The catalog is closed; the reducer treats any action kind
// it does not recognize as a no-op rather than an error, so newer
// message kinds can flow through older cores unharmed.
type Kind string

const (
	KindSetAvailableDrives Kind = "SET_AVAILABLE_DRIVES"
	KindSetFlashState      Kind = "SET_FLASH_STATE"
	KindResetFlashState    Kind = "RESET_FLASH_STATE"
	KindSetFlashingFlag    Kind = "SET_FLASHING_FLAG"
	KindUnsetFlashingFlag  Kind = "UNSET_FLASHING_FLAG"
	KindSelectOS           Kind = "SELECT_OS"
	KindSelectDrive        Kind = "SELECT_DRIVE"
	KindSelectImage        Kind = "SELECT_IMAGE"
	KindRemoveOS           Kind = "REMOVE_OS"
	KindRemoveDrive        Kind = "REMOVE_DRIVE"
	KindRemoveImage        Kind = "REMOVE_IMAGE"
	KindSetSetting         Kind = "SET_SETTING"
)

// Action is the sealed union of dispatchable messages. One struct per
// catalog kind; the reducer switches over the concrete types so every
// transition path is enumerated in one place.
type Action interface {
	Kind() Kind
	isAction()
}

// SetAvailableDrives replaces the drive list wholesale with the result
// of an enumeration pass. A nil list is invalid; an empty list means no
// drives are attached.
type SetAvailableDrives struct {
	Drives []Drive
}

// SetFlashState replaces the flash progress record. Valid only while a
// flash is in progress.
type SetFlashState struct {
	Progress *Progress
}

// ResetFlashState resets progress and results to defaults.
type ResetFlashState struct{}

// SetFlashingFlag marks a flash as started and clears prior results.
type SetFlashingFlag struct{}

// UnsetFlashingFlag marks a flash as ended with the given results.
type UnsetFlashingFlag struct {
	Results *Results
}

// SelectOS chooses an operating system from the catalog.
type SelectOS struct {
	OS *OperatingSystem
}

// SelectDrive chooses a target drive by device path.
type SelectDrive struct {
	Device string
}

// SelectImage chooses the artifact to write.
type SelectImage struct {
	Image *Image
}

// RemoveOS clears the OS selection.
type RemoveOS struct{}

// RemoveDrive clears the drive selection.
type RemoveDrive struct{}

// RemoveImage clears the image selection.
type RemoveImage struct{}

// SetSetting assigns one persisted setting. The key must belong to the
// default key set and the value must be a scalar.
type SetSetting struct {
	Key   string
	Value any
}

func (SetAvailableDrives) Kind() Kind { return KindSetAvailableDrives }
func (SetFlashState) Kind() Kind      { return KindSetFlashState }
func (ResetFlashState) Kind() Kind    { return KindResetFlashState }
func (SetFlashingFlag) Kind() Kind    { return KindSetFlashingFlag }
func (UnsetFlashingFlag) Kind() Kind  { return KindUnsetFlashingFlag }
func (SelectOS) Kind() Kind           { return KindSelectOS }
func (SelectDrive) Kind() Kind        { return KindSelectDrive }
func (SelectImage) Kind() Kind        { return KindSelectImage }
func (RemoveOS) Kind() Kind           { return KindRemoveOS }
func (RemoveDrive) Kind() Kind        { return KindRemoveDrive }
func (RemoveImage) Kind() Kind        { return KindRemoveImage }
func (SetSetting) Kind() Kind         { return KindSetSetting }

func (SetAvailableDrives) isAction() {}
func (SetFlashState) isAction()      {}
func (ResetFlashState) isAction()    {}
func (SetFlashingFlag) isAction()    {}
func (UnsetFlashingFlag) isAction()  {}
func (SelectOS) isAction()           {}
func (SelectDrive) isAction()        {}
func (SelectImage) isAction()        {}
func (RemoveOS) isAction()           {}
func (RemoveDrive) isAction()        {}
func (RemoveImage) isAction()        {}
func (SetSetting) isAction()         {}
