package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by AsyncEmitter.EmitEvent.
var (
	ErrEmitterClosed = errors.New("event emitter is closed")
	ErrQueueFull     = errors.New("event queue is full")
)

// AsyncConfig configures an AsyncEmitter.
type AsyncConfig struct {
	// WorkerCount is the number of dispatch goroutines. Values below 1 mean 1.
	WorkerCount int

	// QueueSize is the number of events buffered before EmitEvent fails with
	// ErrQueueFull. Values below 1 mean 1.
	QueueSize int

	// DispatchTimeout bounds a single dispatch. Zero means no timeout.
	DispatchTimeout time.Duration
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		WorkerCount:     2,
		QueueSize:       256,
		DispatchTimeout: 10 * time.Second,
	}
}

// AsyncEmitter queues events and dispatches them to next from a worker pool.
// EmitEvent never blocks on handlers.
type AsyncEmitter struct {
	next   EventEmitter
	config AsyncConfig
	queue  chan *Event
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewAsyncEmitter creates an AsyncEmitter in front of next. Call Start to
// begin dispatching.
func NewAsyncEmitter(next EventEmitter, config AsyncConfig, logger *slog.Logger) *AsyncEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "async_event_emitter")

	if config.WorkerCount < 1 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}

	return &AsyncEmitter{
		next:   next,
		config: config,
		queue:  make(chan *Event, config.QueueSize),
		logger: logger,
	}
}

// Start launches the workers. Calling Start more than once has no effect.
func (e *AsyncEmitter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true

	for i := 0; i < e.config.WorkerCount; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Info("event emitter started", "worker_count", e.config.WorkerCount)
}

// EmitEvent implements EventEmitter. It enqueues the event and returns at
// once; ErrQueueFull is returned when the buffer is exhausted.
func (e *AsyncEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrEmitterClosed
	}

	select {
	case e.queue <- event:
		e.logger.Debug("event enqueued",
			"event_id", event.ID,
			"event_type", event.Type,
			"queue_len", len(e.queue))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(e.queue))
	}
}

// Stop refuses new events, lets the workers drain the queue and waits for
// them until ctx is done.
func (e *AsyncEmitter) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	started := e.started
	e.mu.Unlock()

	if !started {
		// Nobody will drain; dispatch what is left inline.
		for event := range e.queue {
			e.dispatch(event, -1)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("event emitter stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("event emitter stop timed out", "pending_events", len(e.queue))
		return ctx.Err()
	}
}

func (e *AsyncEmitter) worker(id int) {
	defer e.wg.Done()
	for event := range e.queue {
		e.dispatch(event, id)
	}
}

func (e *AsyncEmitter) dispatch(event *Event, workerID int) {
	ctx := context.Background()
	if e.config.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.DispatchTimeout)
		defer cancel()
	}

	if err := e.next.EmitEvent(ctx, event); err != nil {
		e.logger.Error("failed to dispatch event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
			"worker_id", workerID)
	}
}
