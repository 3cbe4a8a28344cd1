// Package processor orchestrates document processing: validation,
// extraction, strategy selection, chunking and status tracking.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
)

// DefaultRetention is how long terminal task records are kept before
// Cleanup evicts them.
const DefaultRetention = time.Hour

// Tracker is the process-wide map from task identifier to its current
// processing snapshot. It is created at service start and injected into
// the processor; writes are serialized per task while reads of different
// tasks proceed concurrently.
type Tracker struct {
	mu    sync.RWMutex
	tasks map[string]*Record
	ttl   time.Duration
}

// NewTracker creates a tracker retaining terminal records for ttl.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultRetention
	}
	return &Tracker{
		tasks: make(map[string]*Record),
		ttl:   ttl,
	}
}

// Record tracks the state of a single task. Exactly one processor writes
// it; status queries take snapshots under the record's lock.
type Record struct {
	mu sync.Mutex

	taskID    string
	docID     string
	result    document.Result
	updatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Begin registers a new task at Pending. A task id that is already
// tracked, in flight or retained, is rejected.
func (t *Tracker) Begin(ctx context.Context, taskID, docID string) (*Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.tasks[taskID]; exists {
		return nil, fmt.Errorf("%w: %s", document.ErrDuplicateTask, taskID)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	now := time.Now()
	rec := &Record{
		taskID: taskID,
		docID:  docID,
		result: document.Result{
			TaskID:     taskID,
			DocumentID: docID,
			Status:     document.StatusPending,
			CreatedAt:  now,
		},
		updatedAt: now,
		ctx:       taskCtx,
		cancel:    cancel,
	}
	t.tasks[taskID] = rec
	return rec, nil
}

// Status returns the current status of a task.
func (t *Tracker) Status(taskID string) (document.Status, error) {
	rec := t.lookup(taskID)
	if rec == nil {
		return "", fmt.Errorf("%w: %s", document.ErrNotFound, taskID)
	}
	return rec.snapshot().Status, nil
}

// Snapshot returns a copy of the task's current result-in-progress.
func (t *Tracker) Snapshot(taskID string) (document.Result, error) {
	rec := t.lookup(taskID)
	if rec == nil {
		return document.Result{}, fmt.Errorf("%w: %s", document.ErrNotFound, taskID)
	}
	return rec.snapshot(), nil
}

// Cancel marks the task for cancellation. The processor observes the flag
// between chunk emissions and fails the task promptly, discarding partial
// chunks. Cancelling a terminal task is a no-op.
func (t *Tracker) Cancel(taskID string) error {
	rec := t.lookup(taskID)
	if rec == nil {
		return fmt.Errorf("%w: %s", document.ErrNotFound, taskID)
	}
	rec.cancel()
	return nil
}

// Evict removes a terminal task and returns its final result. Evicting an
// in-flight task fails; cancel it first.
func (t *Tracker) Evict(taskID string) (document.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[taskID]
	if !ok {
		return document.Result{}, fmt.Errorf("%w: %s", document.ErrNotFound, taskID)
	}
	res := rec.snapshot()
	if !res.Status.Terminal() {
		return document.Result{}, fmt.Errorf("%w: task %s is still in flight", document.ErrTransient, taskID)
	}
	rec.cancel()
	delete(t.tasks, taskID)
	return res, nil
}

// Cleanup evicts terminal records older than the retention TTL.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for id, rec := range t.tasks {
		rec.mu.Lock()
		expired := rec.result.Status.Terminal() && now.Sub(rec.updatedAt) > t.ttl
		rec.mu.Unlock()
		if expired {
			rec.cancel()
			delete(t.tasks, id)
		}
	}
}

// Len returns the number of tracked tasks.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tasks)
}

func (t *Tracker) lookup(taskID string) *Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tasks[taskID]
}

// Context is the task's cancellation context.
func (r *Record) Context() context.Context {
	return r.ctx
}

// TaskID returns the task identifier.
func (r *Record) TaskID() string {
	return r.taskID
}

// start transitions Pending to InProgress. Any other state is left alone.
func (r *Record) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result.Status != document.StatusPending {
		return
	}
	r.result.Status = document.StatusInProgress
	r.updatedAt = time.Now()
}

// complete records the terminal Completed result. Ignored if the task is
// already terminal.
func (r *Record) complete(res document.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result.Status.Terminal() {
		return
	}
	res.TaskID = r.taskID
	res.Status = document.StatusCompleted
	res.CreatedAt = r.result.CreatedAt
	res.CompletedAt = time.Now()
	r.result = res
	r.updatedAt = res.CompletedAt
}

// fail records the terminal Failed result with a reason code and detail,
// discarding any partial chunks. Returns the recorded result; when the
// task was already terminal, the existing terminal result is returned
// unchanged.
func (r *Record) fail(reason, detail, strategy string, duration time.Duration) document.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result.Status.Terminal() {
		return r.result
	}
	now := time.Now()
	r.result = document.Result{
		TaskID:      r.taskID,
		DocumentID:  r.docID,
		Status:      document.StatusFailed,
		Strategy:    strategy,
		Duration:    duration,
		Reason:      reason,
		Detail:      detail,
		CreatedAt:   r.result.CreatedAt,
		CompletedAt: now,
	}
	r.updatedAt = now
	return r.result
}

func (r *Record) snapshot() document.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}
