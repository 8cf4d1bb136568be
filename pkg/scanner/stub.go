//go:build !linux

package scanner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/driveburn/driveburn/pkg/store"
)

// StubScanner is returned on platforms without an enumeration backend.
type StubScanner struct{}

// NewScanner returns a stub on non-Linux systems.
func NewScanner() (Scanner, error) {
	return &StubScanner{}, nil
}

func (s *StubScanner) List(ctx context.Context) ([]store.Drive, error) {
	return nil, fmt.Errorf("drive enumeration not supported on %s", runtime.GOOS)
}
