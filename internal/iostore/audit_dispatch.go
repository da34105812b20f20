package iostore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
)

// AsyncRecorder hands report runs to an audit store from a single background
// goroutine. Record never blocks the caller: when the buffer is full the run is
// dropped and a warning is logged. Store failures are logged and dropped too.
type AsyncRecorder struct {
	store   contract.AuditStore
	runs    chan schema.ReportRun
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	failed  atomic.Int64
	warn    func(msg string, err error)
}

var _ contract.RunRecorder = &AsyncRecorder{} // Compile-time check

// errBufferFull is reported when a run is dropped because the buffer is full.
var errBufferFull = errors.New("audit buffer full")

// NewAsyncRecorder starts the drain loop. A non-positive buffer uses the default size.
func NewAsyncRecorder(store contract.AuditStore, buffer int) *AsyncRecorder {
	if buffer <= 0 {
		buffer = contract.DefaultAuditBuffer
	}
	r := &AsyncRecorder{
		store: store,
		runs:  make(chan schema.ReportRun, buffer),
		done:  make(chan struct{}),
		warn:  contract.LogWarn,
	}
	go r.drain()
	return r
}

// drain writes queued runs until the channel is closed.
func (r *AsyncRecorder) drain() {
	defer close(r.done)
	for run := range r.runs {
		if _, err := r.store.RecordRun(run); err != nil {
			r.failed.Add(1)
			r.warn(fmt.Sprintf("Failed to record %s run", run.Report), err)
		}
	}
}

// Record implements contract.RunRecorder.
func (r *AsyncRecorder) Record(run schema.ReportRun) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.runs <- run:
	default:
		r.dropped.Add(1)
		r.warn(fmt.Sprintf("Dropped %s run", run.Report), errBufferFull)
	}
}

// Dropped returns the number of runs dropped because the buffer was full.
func (r *AsyncRecorder) Dropped() int64 {
	return r.dropped.Load()
}

// Failed returns the number of runs the store rejected.
func (r *AsyncRecorder) Failed() int64 {
	return r.failed.Load()
}

// Close stops accepting runs and waits until every queued run has been written.
// It does not close the underlying store. Calling Close more than once is safe.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.runs)
	}
	r.mu.Unlock()
	<-r.done
}
