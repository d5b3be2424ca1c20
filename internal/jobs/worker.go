package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultPollInterval is used when no interval is configured
	DefaultPollInterval = 10 * time.Second

	// maxBackoffFactor caps how far failed sweeps stretch the interval.
	maxBackoffFactor = 8
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker sweeps a JobProcessor once at start and then on every interval.
// Consecutive failed sweeps double the wait, up to maxBackoffFactor times
// the interval.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a Worker. A non-positive interval falls back to
// DefaultPollInterval.
func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	log.Printf("index worker: polling every %v", w.pollInterval)

	failures := 0
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("index worker: stopped (context cancelled)")
			return
		case <-w.stopChan:
			log.Println("index worker: stopped")
			return
		case <-timer.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				failures++
				log.Printf("index worker: sweep failed (%d in a row): %v", failures, err)
			} else {
				failures = 0
			}
			timer.Reset(w.nextDelay(failures))
		}
	}
}

func (w *Worker) nextDelay(failures int) time.Duration {
	factor := 1
	for i := 0; i < failures && factor < maxBackoffFactor; i++ {
		factor *= 2
	}
	return w.pollInterval * time.Duration(factor)
}

// Stop ends the loop and waits for it to exit. It may be called more than
// once and after the context passed to Start was cancelled.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
