// Package api provides the HTTP REST API for the Pac-Man server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id", "player_id", "realtime", "seed"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session with its current snapshot
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game Operations:
//   - GET /api/sessions/{id}/snapshot - Current snapshot
//   - POST /api/sessions/{id}/input - Buffer a direction ({"direction": "up"})
//   - POST /api/sessions/{id}/step - Advance a manual session ({"ticks": 16, "direction": "left"})
//   - POST /api/sessions/{id}/restart - Restart the game
//
// Configuration:
//   - GET /api/configs - List map configurations
//   - GET /api/configs/{name} - Get a map configuration
//   - POST /api/configs - Save a map configuration
//   - GET /api/themes - List color themes
//
// Scores:
//   - GET /api/leaderboard - Top finished games (?limit=N, default 10)
//
// Streaming:
//   - GET /ws?session={id}&format=json|msgpack - Per-tick snapshots and events
//
// Errors are returned as JSON with the matching HTTP status code:
//
//	{
//	  "error": "session not found: session not found",
//	  "code": 404
//	}
//
// Unknown sessions and configs map to 404, bad directions, tick counts and
// maps to 400, and stepping a realtime session to 409.
package api
