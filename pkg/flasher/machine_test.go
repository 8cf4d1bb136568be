package flasher

import (
	"context"
	"testing"

	"github.com/driveburn/driveburn/pkg/constraints"
	"github.com/driveburn/driveburn/pkg/store"
)

func TestReportProgressDispatchesWhileFlashing(t *testing.T) {
	st := store.New(constraints.New())
	m := NewMachine(st, StubWriter{}, 3)

	if err := st.Dispatch(store.SetFlashingFlag{}); err != nil {
		t.Fatal(err)
	}

	report := m.reportProgress(PhaseFlashing)
	report(store.Progress{Percentage: 42, ETA: 10, Speed: 1e6})

	got := st.State().FlashState
	if got.Type != PhaseFlashing || got.Percentage != 42 {
		t.Errorf("flash state = %+v, want phase %q at 42%%", got, PhaseFlashing)
	}
}

func TestReportProgressDroppedWhenNotFlashing(t *testing.T) {
	st := store.New(constraints.New())
	m := NewMachine(st, StubWriter{}, 3)

	// Progress is advisory; a rejected update must not panic or stick.
	report := m.reportProgress(PhaseChecking)
	report(store.Progress{Percentage: 10})

	if got := st.State().FlashState; got != (store.Progress{}) {
		t.Errorf("rejected progress leaked into state: %+v", got)
	}
}

func TestFinishRecordsResults(t *testing.T) {
	st := store.New(constraints.New())
	m := NewMachine(st, StubWriter{}, 3)

	if err := st.Dispatch(store.SetFlashingFlag{}); err != nil {
		t.Fatal(err)
	}
	m.finish(store.Results{SourceChecksum: "abc123"})

	s := st.State()
	if s.IsFlashing {
		t.Error("finish must end the flash")
	}
	if s.FlashResults.SourceChecksum != "abc123" {
		t.Errorf("results = %+v, want checksum recorded", s.FlashResults)
	}
}

func TestStubWriterFails(t *testing.T) {
	w := StubWriter{}
	if _, _, err := w.Write(context.Background(), "/tmp/a.img", "/dev/null", nil); err == nil {
		t.Error("stub writer must refuse to write")
	}
	if err := w.Verify(context.Background(), "/tmp/a.img", "/dev/null", nil); err == nil {
		t.Error("stub writer must refuse to verify")
	}
}

func TestErrorCodeClearedOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if got := errorCode(ctx, ErrCodeWrite); got != ErrCodeWrite {
		t.Errorf("errorCode() = %q, want %q", got, ErrCodeWrite)
	}
	cancel()
	if got := errorCode(ctx, ErrCodeWrite); got != "" {
		t.Errorf("cancelled flash must not carry an error code, got %q", got)
	}
}
