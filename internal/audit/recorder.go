package audit

import (
	"context"

	"go.uber.org/zap"
)

// Recorder fires audit writes on a background goroutine so a slow or
// unreachable Postgres never adds latency to a syscall.
type Recorder struct {
	store  *Store
	logger *zap.Logger
}

// NewRecorder wraps a Store for fire-and-forget recording.
func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Syscall records one dispatched syscall asynchronously.
func (r *Recorder) Syscall(pid int, name string, ok bool, errno string) {
	go func() {
		if err := r.store.RecordSyscall(context.Background(), pid, name, ok, errno); err != nil {
			r.logger.Warn("audit: syscall record failed", zap.Error(err))
		}
	}()
}

// ProcessEvent records a spawn or kill asynchronously.
func (r *Recorder) ProcessEvent(pid, parentPID int, event string) {
	go func() {
		if err := r.store.RecordProcessEvent(context.Background(), pid, parentPID, event); err != nil {
			r.logger.Warn("audit: process event record failed", zap.Error(err))
		}
	}()
}
