package transform

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// Result is a finished matrix together with the request that produced it.
type Result struct {
	Spec       Spec
	Matrix     Matrix
	Generation uint64
}

type request struct {
	spec       Spec
	generation uint64
}

type slot struct {
	latest     atomic.Pointer[request]
	generation atomic.Uint64
	pending    atomic.Pointer[Result]
	cancel     atomic.Pointer[context.CancelFunc]
}

// Worker builds transform matrices on a background goroutine. Each slot
// (one per delay branch) keeps only its most recent request; Request never
// blocks and Poll hands finished matrices to the audio thread.
type Worker struct {
	slots  []slot
	notify chan struct{}

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger

	mu  sync.Mutex
	err error
}

// NewWorker starts a worker with the given number of slots. A nil logger
// discards messages.
func NewWorker(slots int, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ctx, stop := context.WithCancel(context.Background())
	w := &Worker{
		slots:  make([]slot, max(slots, 0)),
		notify: make(chan struct{}, 1),
		ctx:    ctx,
		stop:   stop,
		logger: logger,
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// Request queues spec for slot i, superseding and cancelling any earlier
// request of that slot, and returns its generation.
func (w *Worker) Request(i int, spec Spec) uint64 {
	s := &w.slots[i]
	gen := s.generation.Add(1)
	s.latest.Store(&request{spec: spec, generation: gen})
	if cancel := s.cancel.Load(); cancel != nil {
		(*cancel)()
	}

	select {
	case w.notify <- struct{}{}:
	default:
	}
	return gen
}

// Poll returns the finished result of slot i, if the latest request of the
// slot has completed since the last Poll. Results of superseded requests are
// dropped.
func (w *Worker) Poll(i int) (*Result, bool) {
	s := &w.slots[i]
	r := s.pending.Swap(nil)
	if r == nil || r.Generation != s.generation.Load() {
		return nil, false
	}
	return r, true
}

// Err returns the most recent build failure, if any.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close stops the worker and waits for it to exit. Pending requests are
// abandoned.
func (w *Worker) Close() {
	w.stop()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.notify:
		}

		for i := range w.slots {
			if w.ctx.Err() != nil {
				return
			}
			w.serve(i)
		}
	}
}

func (w *Worker) serve(i int) {
	s := &w.slots[i]
	req := s.latest.Swap(nil)
	if req == nil {
		return
	}

	ctx, cancel := context.WithCancel(w.ctx)
	s.cancel.Store(&cancel)
	m, err := Build(ctx, req.spec)
	s.cancel.Store(nil)
	cancel()

	switch {
	case errors.Is(err, context.Canceled):
		// Superseded or shutting down; a newer request re-notifies.
	case err != nil:
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		w.logger.Printf("transform: slot %d %s build failed: %v", i, req.spec.Kind, err)
	default:
		s.pending.Store(&Result{Spec: req.spec, Matrix: m, Generation: req.generation})
	}
}
