package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

type loopState int

const (
	loopIdle loopState = iota
	loopRunning
	loopStopped
)

// Loop drives an Engine at a fixed rate. The loop goroutine is the only
// writer of engine state while it runs; other goroutines read the latest
// snapshot through Snapshot. A Loop runs once: restarting a game means
// building a new Loop.
type Loop struct {
	engine     Engine
	interval   time.Duration
	onTick     func(*Snapshot)
	onGameOver func(Result)
	log        *log.Entry

	snapshot atomic.Pointer[Snapshot]

	mu     sync.Mutex
	state  loopState
	cancel context.CancelFunc
	done   chan struct{}
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithInterval overrides the tick interval derived from the tick rate.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithTickHandler is called with each tick's snapshot on the loop goroutine.
func WithTickHandler(fn func(*Snapshot)) LoopOption {
	return func(l *Loop) { l.onTick = fn }
}

// WithGameOver is called once, on the loop goroutine, when the game ends by
// itself. It is not called when the loop is stopped. The hook must not call
// Stop on the same loop.
func WithGameOver(fn func(Result)) LoopOption {
	return func(l *Loop) { l.onGameOver = fn }
}

// WithLoopLogger sets the logger for loop lifecycle events.
func WithLoopLogger(entry *log.Entry) LoopOption {
	return func(l *Loop) {
		if entry != nil {
			l.log = entry
		}
	}
}

// NewLoop creates a loop for the engine, ticking at the engine's tick rate
func NewLoop(e Engine, opts ...LoopOption) *Loop {
	rate := e.GetRules().TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}

	l := &Loop{
		engine:   e,
		interval: time.Second / time.Duration(rate),
		log:      log.WithField("component", "loop"),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.snapshot.Store(e.Snapshot())
	return l
}

// Start launches the tick goroutine. It fails with ErrLoopRunning or
// ErrLoopStopped if the loop was started before.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case loopRunning:
		return ErrLoopRunning
	case loopStopped:
		return ErrLoopStopped
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.state = loopRunning
	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.state = loopStopped
		l.mu.Unlock()
		close(l.done)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.WithField("interval", l.interval).Debug("loop started")

	for {
		select {
		case <-ctx.Done():
			l.log.Debug("loop stopped")
			return
		case <-ticker.C:
			l.engine.Tick()

			snap := l.engine.Snapshot()
			l.snapshot.Store(snap)
			if l.onTick != nil {
				l.onTick(snap)
			}

			if l.engine.IsGameOver() {
				result := l.engine.Result()
				l.log.WithFields(log.Fields{"score": result.Score, "reason": result.Reason}).Debug("loop finished")
				if l.onGameOver != nil {
					l.onGameOver(result)
				}
				return
			}
		}
	}
}

// Stop cancels the loop and waits until no tick is in flight. Stopping an
// idle loop retires it without running.
func (l *Loop) Stop() {
	l.mu.Lock()
	switch l.state {
	case loopIdle:
		l.state = loopStopped
		close(l.done)
		l.mu.Unlock()
		return
	case loopRunning:
		l.cancel()
	}
	l.mu.Unlock()

	<-l.done
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Running reports whether the tick goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == loopRunning
}

// Snapshot returns the most recent published snapshot. Safe for concurrent use.
func (l *Loop) Snapshot() *Snapshot {
	return l.snapshot.Load()
}
