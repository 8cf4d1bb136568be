package flasher

import (
	"context"
	"fmt"
	"runtime"

	"github.com/driveburn/driveburn/pkg/store"
)

// Writer performs the byte-level work of a flash. It lives outside the
// state core; the workflow handlers only relay its progress into the
// store as flash-state dispatches.
type Writer interface {
	// Write copies the image onto the device, reporting progress as it
	// goes, and returns the bytes written and the source checksum
	// computed while reading.
	Write(ctx context.Context, imagePath, device string, progress func(store.Progress)) (int64, string, error)

	// Verify re-reads the device and compares it against the image.
	Verify(ctx context.Context, imagePath, device string, progress func(store.Progress)) error

	// Unmount detaches the device after a successful flash.
	Unmount(ctx context.Context, device string) error
}

// StubWriter is used where no flash engine is wired in. Every
// operation fails, which exercises the failure path of the workflow.
type StubWriter struct{}

func (StubWriter) Write(ctx context.Context, imagePath, device string, progress func(store.Progress)) (int64, string, error) {
	return 0, "", fmt.Errorf("flash engine not available on %s", runtime.GOOS)
}

func (StubWriter) Verify(ctx context.Context, imagePath, device string, progress func(store.Progress)) error {
	return fmt.Errorf("flash engine not available on %s", runtime.GOOS)
}

func (StubWriter) Unmount(ctx context.Context, device string) error {
	return fmt.Errorf("flash engine not available on %s", runtime.GOOS)
}
