// Package service provides the business logic layer for the Pac-Man server.
//
// The service package implements:
//   - Multi-session game management
//   - Realtime sessions driven by an engine.Loop
//   - Manual sessions advanced tick by tick with Step
//   - Score submission when a game ends
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages map configuration loading and validation.
// SnapshotPublisher receives per-tick snapshots of realtime sessions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine. A realtime session also
// owns a loop goroutine, the only writer of that engine's state; input reaches
// it through the engine's lock-free input buffer and readers see the loop's
// published snapshots.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithPublisher(hub),
//		service.WithSubmitter(scores.NewHTTPSubmitter(endpoint, nil)),
//	)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{
//		ConfigName: "classic",
//		Realtime:   true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = gameService.Input(ctx, info.ID, "left")
package service
