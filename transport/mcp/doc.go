// Package mcp exposes the Pac-Man REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one or two REST calls
// against a running server, and the JSON answers are turned into text an
// agent can read, including a character rendering of the board.
//
// Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - snapshot: score, actors and the board
//   - input: buffer a direction
//   - step: advance a manual session by N ticks
//   - restart
//   - list_configs, leaderboard, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
