package flasher

// FlashRequest is the FSM input
type FlashRequest struct {
	Device    string
	ImagePath string
}

// FlashResponse is the FSM output (accumulated across transitions)
type FlashResponse struct {
	// From Write
	BytesWritten   int64
	SourceChecksum string

	// From Finalize/Failed
	Status       string
	ErrorMessage string
}

// State names
const (
	StatePrepare  = "prepare"
	StateWrite    = "write"
	StateVerify   = "verify"
	StateFinalize = "finalize"
	StateFailed   = "failed"
)

// Error codes reported into the store's flash results.
const (
	ErrCodeWrite      = "EWRITE"
	ErrCodeValidation = "EVALIDATION"
)

// Progress phase names as they appear in the flash state.
const (
	PhaseFlashing = "flashing"
	PhaseChecking = "checking"
)
