package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/service"
)

func createTestConfig() *engine.MapConfig {
	return &engine.MapConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Width:       5,
		Height:      5,
		PacmanStart: engine.Cell{X: 1, Y: 1},
		PowerUps:    []engine.Cell{{X: 3, Y: 3}},
		Cells: "11111" +
			"13001" +
			"10001" +
			"10001" +
			"11111",
		Ghosts: []string{},
		Rules:  engine.Rules{Seed: 3},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with specific ID", func(t *testing.T) {
		session, err := manager.Create("abc1", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "abc1" {
			t.Errorf("Expected ID abc1, got %s", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected session engine to be initialized")
		}
		if session.CreatedAt.IsZero() || session.LastAccessed().IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("duplicate ID rejected case-insensitively", func(t *testing.T) {
		if _, err := manager.Create("ABC1", config); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		if _, err := manager.Create("a/b", config); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.Width = 1
		if _, err := manager.Create("bad1", bad); !errors.Is(err, engine.ErrInvalidMap) {
			t.Errorf("Expected ErrInvalidMap, got %v", err)
		}
	})

	t.Run("options applied", func(t *testing.T) {
		session, err := manager.Create("opt1", config,
			service.WithPlayer("p1"), service.WithConfigID("room"), service.WithRealtime(true))
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.PlayerID != "p1" || session.ConfigID != "room" || !session.Realtime {
			t.Errorf("Expected options applied, got %+v", session)
		}
		if session.Running() {
			t.Error("Expected the loop to wait for Start")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("Get1", createTestConfig())

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"exact ID", "Get1", nil},
		{"lower case", "get1", nil},
		{"upper case", "GET1", nil},
		{"missing", "none", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Get(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && session != created {
				t.Error("Expected the created session")
			}
		})
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("goc1", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	second, err := manager.GetOrCreate("goc1", config)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("del1", createTestConfig())

	if err := manager.Delete("DEL1"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("del1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_DeleteStopsLoop(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("loop", createTestConfig(), service.WithRealtime(true))

	if err := session.Start(engine.WithInterval(time.Millisecond)); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	if !session.Running() {
		t.Fatal("Expected loop to be running")
	}

	if err := manager.Delete("loop"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if session.Running() {
		t.Error("Expected delete to stop the loop")
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	want := map[string]bool{}
	for i := 0; i < 3; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		want[session.ID] = true
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	for _, s := range sessions {
		if !want[s.ID] {
			t.Errorf("Unexpected session %s in list", s.ID)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	active, _ := manager.Create("active", config)
	expired, _ := manager.Create("expired", config, service.WithRealtime(true))
	if err := expired.Start(engine.WithInterval(time.Millisecond)); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}

	// Simulate expired session
	expired.Touch(time.Now().Add(-2 * time.Hour))
	active.Touch(time.Now())

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be deleted")
	}
	if expired.Running() {
		t.Error("Expected expired session's loop to be stopped")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestConfig())
	originalTime := session.LastAccessed()

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	updated, _ := manager.Get("access-test")
	if !updated.LastAccessed().After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

type fixedConfigs struct {
	config *engine.MapConfig
}

func (f fixedConfigs) LoadConfig(string) (*engine.MapConfig, error) { return f.config, nil }
func (f fixedConfigs) ListConfigs() ([]*service.ConfigInfo, error)  { return nil, nil }
func (f fixedConfigs) GetDefault() *engine.MapConfig                { return f.config }
func (f fixedConfigs) SaveConfig(string, *engine.MapConfig) error   { return nil }

func TestManager_ConcurrentGetSession(t *testing.T) {
	manager := NewManager()
	svc := service.NewGameService(manager, fixedConfigs{createTestConfig()})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := svc.GetSession(ctx, info.ID)
				if err != nil {
					errs <- err
					return
				}
				if got.LastAccessedAt.IsZero() {
					errs <- fmt.Errorf("session %s reported no access time", got.ID)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent reads: %v", err)
	}

	sess, _ := manager.Get(info.ID)
	if sess.LastAccessed().Before(sess.CreatedAt) {
		t.Errorf("Expected last access at or after creation, got %v", sess.LastAccessed())
	}
}

func TestSession_Touch(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("touch", createTestConfig())

	at := time.Now().Add(time.Hour)
	sess.Touch(at)
	if !sess.LastAccessed().Equal(at) {
		t.Errorf("Expected %v, got %v", at, sess.LastAccessed())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n%20)
			if _, err := manager.Create(id, config); err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
			}
			_, _ = manager.Get(id)
			_ = manager.UpdateLastAccessed(id)
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	session1.Input(engine.Right)
	session1.Step(10)

	if session2.Snapshot().Pacman.X != 20 || session2.Snapshot().Tick != 0 {
		t.Error("Session 2 should not be affected by session 1 input")
	}
	// the first tick only turns, the other nine move
	if session1.Snapshot().Pacman.X != 29 {
		t.Errorf("Expected session 1 Pac-Man at x=29, got %d", session1.Snapshot().Pacman.X)
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
	}
}
