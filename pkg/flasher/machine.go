// Package flasher orchestrates the flash workflow (prepare, write,
// verify, finalize) using the superfly/fsm library. Handlers never
// touch devices or state directly: device I/O goes through a Writer and
// every state change goes through store dispatches, so the state core
// stays the single source of truth for what a flash looks like.
package flasher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/driveburn/driveburn/pkg/errors"
	"github.com/driveburn/driveburn/pkg/store"
	"github.com/superfly/fsm"
)

// Machine holds dependencies for flash workflow transitions
type Machine struct {
	st         *store.Store
	writer     Writer
	maxRetries int
}

// NewMachine creates a flash workflow machine
func NewMachine(st *store.Store, writer Writer, maxRetries int) *Machine {
	return &Machine{
		st:         st,
		writer:     writer,
		maxRetries: maxRetries,
	}
}

// Register registers the flash workflow FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[FlashRequest, FlashResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[FlashRequest, FlashResponse](manager, "flash").
		Start(StatePrepare, m.handlePrepare).
		To(StateWrite, m.handleWrite).
		To(StateVerify, m.handleVerify).
		To(StateFinalize, m.handleFinalize).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register flash FSM")
	}

	return start, resume, nil
}

// handlePrepare checks the selection is flashable and flips the
// flashing flag, clearing any previous results.
func (m *Machine) handlePrepare(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("flash_state_prepare", "device", req.Msg.Device, "image", req.Msg.ImagePath)

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("flash_max_retries_exceeded", "device", req.Msg.Device, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	snapshot := m.st.State()
	if snapshot.IsFlashing {
		return nil, fsm.Abort(fmt.Errorf("a flash is already in progress"))
	}
	if snapshot.Selection.Image == nil {
		return nil, fsm.Abort(fmt.Errorf("no image selected"))
	}
	if snapshot.Selection.Drive == "" {
		return nil, fsm.Abort(fmt.Errorf("no drive selected"))
	}
	if snapshot.Selection.Drive != req.Msg.Device {
		return nil, fsm.Abort(fmt.Errorf("selected drive %q does not match flash target %q",
			snapshot.Selection.Drive, req.Msg.Device))
	}

	if err := m.st.Dispatch(store.SetFlashingFlag{}); err != nil {
		slog.Error("flash_start_dispatch_failed", "device", req.Msg.Device, "error", err)
		return nil, fsm.Abort(errors.Wrap(err, "failed to start flash"))
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &FlashResponse{}
	}
	return fsm.NewResponse(resp), nil
}

// handleWrite streams the image onto the device, relaying progress into
// the store.
func (m *Machine) handleWrite(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("flash_state_write", "device", req.Msg.Device)

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	written, checksum, err := m.writer.Write(ctx, req.Msg.ImagePath, req.Msg.Device, m.reportProgress(PhaseFlashing))
	if err != nil {
		slog.Error("flash_write_failed", "device", req.Msg.Device, "error", err)
		m.finish(store.Results{Cancelled: ctx.Err() != nil, ErrorCode: errorCode(ctx, ErrCodeWrite)})
		return nil, fsm.Abort(errors.Wrap(err, "write failed"))
	}

	slog.Info("flash_write_complete",
		"device", req.Msg.Device,
		"size_mb", written/1024/1024,
		"source_checksum", checksum,
	)

	resp.BytesWritten = written
	resp.SourceChecksum = checksum
	return fsm.NewResponse(resp), nil
}

// handleVerify re-reads the device when validateWriteOnSuccess is on.
func (m *Machine) handleVerify(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("flash_state_verify", "device", req.Msg.Device)

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	if enabled, ok := m.st.State().Settings[store.SettingValidateWriteOnSuccess].(bool); ok && !enabled {
		slog.Info("flash_verify_skipped", "device", req.Msg.Device)
		return fsm.NewResponse(resp), nil
	}

	if err := m.writer.Verify(ctx, req.Msg.ImagePath, req.Msg.Device, m.reportProgress(PhaseChecking)); err != nil {
		slog.Error("flash_verify_failed", "device", req.Msg.Device, "error", err)
		m.finish(store.Results{Cancelled: ctx.Err() != nil, ErrorCode: errorCode(ctx, ErrCodeValidation)})
		return nil, fsm.Abort(errors.Wrap(err, "verification failed"))
	}

	slog.Info("flash_verify_complete", "device", req.Msg.Device)
	return fsm.NewResponse(resp), nil
}

// handleFinalize records the results and optionally unmounts the drive.
func (m *Machine) handleFinalize(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("flash_state_finalize", "device", req.Msg.Device)

	resp := req.W.Msg
	if resp == nil {
		resp = &FlashResponse{}
	}

	m.finish(store.Results{SourceChecksum: resp.SourceChecksum})

	if unmount, ok := m.st.State().Settings[store.SettingUnmountOnSuccess].(bool); ok && unmount {
		if err := m.writer.Unmount(ctx, req.Msg.Device); err != nil {
			// The flash itself succeeded; a failed unmount is not fatal.
			slog.Warn("flash_unmount_failed", "device", req.Msg.Device, "error", err)
		}
	}

	resp.Status = "complete"
	slog.Info("flash_complete", "device", req.Msg.Device, "source_checksum", resp.SourceChecksum)
	return fsm.NewResponse(resp), nil
}

// reportProgress adapts writer progress callbacks into flash-state
// dispatches. Rejected updates are logged and dropped; progress is
// advisory and must never kill a write in flight.
func (m *Machine) reportProgress(phase string) func(store.Progress) {
	return func(p store.Progress) {
		p.Type = phase
		if err := m.st.Dispatch(store.SetFlashState{Progress: &p}); err != nil {
			slog.Warn("flash_progress_rejected", "phase", phase, "error", err)
		}
	}
}

// finish ends the flash in the store. A cancelled flash must not carry
// a checksum, the reducer enforces that pairing.
func (m *Machine) finish(results store.Results) {
	if err := m.st.Dispatch(store.UnsetFlashingFlag{Results: &results}); err != nil {
		slog.Error("flash_finish_dispatch_failed", "error", err)
	}
}

func errorCode(ctx context.Context, code string) string {
	if ctx.Err() != nil {
		return ""
	}
	return code
}
