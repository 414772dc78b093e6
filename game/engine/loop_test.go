package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitDone(t *testing.T, l *Loop) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for the loop to finish")
	}
}

func TestLoop_TimeLimitEndsGame(t *testing.T) {
	config := openRoomConfig()
	config.Rules.TickRate = 20
	config.Rules.TimeLimitSeconds = 1
	e := createTestEngine(t, config)

	var calls atomic.Int32
	var ticks atomic.Int32
	var final Result
	loop := NewLoop(e,
		WithInterval(time.Millisecond),
		WithTickHandler(func(*Snapshot) { ticks.Add(1) }),
		WithGameOver(func(r Result) {
			calls.Add(1)
			final = r
		}),
	)

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	waitDone(t, loop)

	if calls.Load() != 1 {
		t.Fatalf("Expected game-over hook once, got %d", calls.Load())
	}
	if final.Reason != ReasonTimeout || final.Ticks != 20 {
		t.Errorf("Expected timeout after 20 ticks, got %+v", final)
	}
	if ticks.Load() != 20 {
		t.Errorf("Expected 20 tick snapshots, got %d", ticks.Load())
	}
	if snap := loop.Snapshot(); !snap.GameOver {
		t.Error("Expected the last published snapshot to show game over")
	}
	if loop.Running() {
		t.Error("Expected loop not to be running after game over")
	}
}

func TestLoop_StopCancelsWithoutGameOver(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())

	var calls atomic.Int32
	loop := NewLoop(e,
		WithInterval(time.Millisecond),
		WithGameOver(func(Result) { calls.Add(1) }),
	)
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	loop.Stop()

	select {
	case <-loop.Done():
	default:
		t.Fatal("Expected Done to be closed after Stop returns")
	}
	if calls.Load() != 0 {
		t.Error("Expected no game-over hook on Stop")
	}

	// no tick runs after Stop
	tick := e.GetState().Tick
	time.Sleep(10 * time.Millisecond)
	if e.GetState().Tick != tick {
		t.Error("Expected ticking to stop after Stop")
	}

	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Expected ErrLoopStopped when restarting a loop, got %v", err)
	}

	// Stop is idempotent
	loop.Stop()
}

func TestLoop_StartTwice(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())
	loop := NewLoop(e, WithInterval(time.Millisecond))

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	defer loop.Stop()

	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopRunning) {
		t.Errorf("Expected ErrLoopRunning, got %v", err)
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())
	loop := NewLoop(e, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	cancel()
	waitDone(t, loop)
}

func TestLoop_StopIdle(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())
	loop := NewLoop(e)

	loop.Stop()
	waitDone(t, loop)

	if err := loop.Start(context.Background()); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Expected ErrLoopStopped, got %v", err)
	}
}

func TestLoop_InitialSnapshot(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())
	loop := NewLoop(e)

	snap := loop.Snapshot()
	if snap == nil || snap.Tick != 0 {
		t.Fatalf("Expected initial snapshot at tick 0, got %+v", snap)
	}
}
