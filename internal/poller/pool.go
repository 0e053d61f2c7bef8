package poller

import (
	"context"
	"errors"
	"log"
	"sync"

	"laundry-state-backend/internal/reconcile"
)

// Reconciler is the engine contract the worker pool drives.
type Reconciler interface {
	Reconcile(ctx context.Context, snap reconcile.Snapshot) (reconcile.Outcome, error)
}

type job struct {
	snap reconcile.Snapshot
	wg   *sync.WaitGroup
}

// WorkerPool fans snapshot reconciliations out over a fixed set of workers.
// Snapshots for distinct machines run in parallel; the engine's own per-key
// serialization keeps same-machine work ordered.
type WorkerPool struct {
	size   int
	jobs   chan job
	engine Reconciler
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, engine Reconciler) *WorkerPool {
	return &WorkerPool{
		size:   size,
		jobs:   make(chan job, size),
		engine: engine,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Reconcile worker %d started", id)
	for {
		select {
		case j := <-wp.jobs:
			wp.process(ctx, j)
		case <-ctx.Done():
			log.Printf("Reconcile worker %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) process(ctx context.Context, j job) {
	defer j.wg.Done()

	outcome, err := wp.engine.Reconcile(ctx, j.snap)
	if err != nil {
		if errors.Is(err, reconcile.ErrPersistenceRejected) {
			log.Printf("Machine %s: write rejected, state not applied: %v", j.snap.OpaqueID, err)
			return
		}
		log.Printf("Error reconciling machine %s: %v", j.snap.OpaqueID, err)
		return
	}
	if outcome != reconcile.Unchanged {
		log.Printf("Machine %s: %s (timeRemaining=%d)", j.snap.OpaqueID, outcome, j.snap.TimeRemaining)
	}
}

// Dispatch queues one snapshot; wg.Done is called once it has been
// reconciled, so a caller can wait for a whole batch.
func (wp *WorkerPool) Dispatch(snap reconcile.Snapshot, wg *sync.WaitGroup) {
	wp.jobs <- job{snap: snap, wg: wg}
}
