package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
)

// Task is one queued processing request.
type Task struct {
	ID       string
	Document document.Document
	Strategy string
	Config   chunker.Config
}

// ResultSink persists terminal results, completed and failed alike. The
// orchestrator calls it once per finished task; the core never touches
// storage itself.
type ResultSink interface {
	SaveResult(ctx context.Context, res document.Result) error
}

// Orchestrator runs processing tasks on a bounded worker pool so API
// callers can submit and poll.
type Orchestrator struct {
	proc    *Processor
	tracker *Tracker
	sink    ResultSink
	queue   chan Task
	workers int
	stats   *LatencyStats
	log     *slog.Logger

	mu      sync.Mutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates a stopped orchestrator; call Start before Submit.
// The sink may be nil when results are consumed via the tracker only.
func NewOrchestrator(proc *Processor, sink ResultSink, workers, queueSize int, log *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Orchestrator{
		proc:    proc,
		tracker: proc.Tracker(),
		sink:    sink,
		queue:   make(chan Task, queueSize),
		workers: workers,
		stats:   NewLatencyStats(time.Hour),
		log:     log,
	}
}

// Start launches worker goroutines and the tracker cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.ctx = workerCtx
	o.cancel = cancel

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case task, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, task)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.tracker.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool. Submissions arriving after Stop
// are rejected rather than queued.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit registers the task at Pending and queues it. Returns the task id;
// a full queue fails the task immediately.
func (o *Orchestrator) Submit(task Task) (string, error) {
	if task.ID == "" {
		task.ID = NewTaskID()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return "", fmt.Errorf("%w: orchestrator is shutting down", document.ErrTransient)
	}

	base := o.ctx
	if base == nil {
		base = context.Background()
	}
	rec, err := o.tracker.Begin(base, task.ID, task.Document.ID)
	if err != nil {
		return "", err
	}
	select {
	case o.queue <- task:
		return task.ID, nil
	default:
		rec.fail(document.ReasonTransient, fmt.Sprintf("processing queue is full (%d)", cap(o.queue)), task.Strategy, 0)
		return "", fmt.Errorf("%w: processing queue is full (%d)", document.ErrTransient, cap(o.queue))
	}
}

// QueueDepth returns the current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats reports processing durations over the recent window.
func (o *Orchestrator) Stats() LatencySnapshot {
	return o.stats.Snapshot()
}

func (o *Orchestrator) process(ctx context.Context, task Task) {
	rec := o.tracker.lookup(task.ID)
	if rec == nil {
		// Evicted while queued.
		o.log.Warn("task vanished before processing", "task_id", task.ID)
		return
	}
	res, _ := o.proc.run(rec, task.Document, task.Strategy, task.Config)
	o.stats.Record(res.Duration)
	if o.sink != nil {
		if err := o.sink.SaveResult(ctx, res); err != nil {
			o.log.Error("persist result failed", "task_id", task.ID, "error", err)
		}
	}
}
