package scanner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/driveburn/driveburn/pkg/constraints"
	"github.com/driveburn/driveburn/pkg/store"
)

type fakeScanner struct {
	drives []store.Drive
	err    error
	calls  chan struct{}
}

func (f *fakeScanner) List(ctx context.Context) ([]store.Drive, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return f.drives, f.err
}

func TestWatch_PushesEnumerationsIntoStore(t *testing.T) {
	st := store.New(constraints.New())
	fake := &fakeScanner{
		drives: []store.Drive{{Device: "/dev/sda", Size: 16e9}},
		calls:  make(chan struct{}, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, st, fake, time.Hour)
		close(done)
	}()

	select {
	case <-fake.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("scanner was never polled")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		drives := st.State().AvailableDrives
		if len(drives) == 1 && drives[0].Device == "/dev/sda" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("store never saw the enumeration: %+v", drives)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}

func TestWatch_ScanFailureKeepsPreviousList(t *testing.T) {
	st := store.New(constraints.New())
	if err := st.Dispatch(store.SetAvailableDrives{Drives: []store.Drive{
		{Device: "/dev/sdb", Size: 8e9},
	}}); err != nil {
		t.Fatal(err)
	}

	fake := &fakeScanner{err: fmt.Errorf("usb bus on fire"), calls: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, st, fake, time.Hour)
		close(done)
	}()

	select {
	case <-fake.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("scanner was never polled")
	}
	cancel()
	<-done

	drives := st.State().AvailableDrives
	if len(drives) != 1 || drives[0].Device != "/dev/sdb" {
		t.Errorf("failed scan must keep the previous list, got %+v", drives)
	}
}
