package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const taskQueueSize = 64

// ErrStopped is returned when work is submitted to a stopped engine
var ErrStopped = errors.New("engine stopped")

// Engine is the single logical thread of the player. Store mutations,
// controller callbacks and timer callbacks all run on its loop goroutine,
// so none of them need locking against each other.
type Engine struct {
	logger *zap.Logger
	clock  clockwork.Clock
	tasks  chan func()

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	quit    chan struct{}
	done    chan struct{}
}

// NewEngine creates an engine driven by clock
func NewEngine(logger *zap.Logger, clock clockwork.Clock) *Engine {
	return &Engine{
		logger: logger,
		clock:  clock,
		tasks:  make(chan func(), taskQueueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the loop in a goroutine and returns immediately
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	select {
	case <-e.quit:
		return ErrStopped
	default:
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running = true

	e.logger.Info("Engine starting...")
	go e.runLoop(loopCtx)
	return nil
}

func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case task := <-e.tasks:
			e.run(task)
		}
	}
}

// run executes one task, keeping the loop alive if it panics
func (e *Engine) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

// Do queues fn on the loop without waiting for it
func (e *Engine) Do(fn func()) {
	select {
	case e.tasks <- fn:
	case <-e.quit:
		e.logger.Debug("Dropping task, engine stopped")
	}
}

// Call runs fn on the loop and waits for it to finish. It must not be
// called from the loop itself.
func (e *Engine) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case e.tasks <- task:
	case <-e.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc schedules fn on the loop after d
func (e *Engine) AfterFunc(d time.Duration, fn func()) func() bool {
	timer := e.clock.AfterFunc(d, func() {
		e.Do(fn)
	})
	return timer.Stop
}

// Stop ends the loop and waits for the current task to finish
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	close(e.quit)
	e.cancel()
	e.mu.Unlock()

	e.logger.Info("Engine stopping...")
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
