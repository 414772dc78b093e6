// Package engine provides the real-time simulation core of the Pac-Man game.
//
// The engine package implements the game mechanics including:
//   - Tile grid with paths, walls, ghost gates and ghost spawn cells
//   - Pixel positions that straddle up to two grid cells
//   - Buffered directional input with a short time-to-live
//   - Pac-Man steering, movement and tunnel wrap-around
//   - Ghost agents with spawn exit, chase, random and flee policies
//   - Pickup, power-up and ghost contact resolution
//   - A fixed-rate tick loop that owns all state mutation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the mutable state owned by the tick
// driver, Snapshot is its read-only projection for renderers, and MapConfig
// defines the level layout loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	loop := engine.NewLoop(gameEngine, engine.WithGameOver(func(r engine.Result) {
//		fmt.Println("final score", r.Score)
//	}))
//	if err := loop.Start(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
//	// Keyboard handlers may call Input from any goroutine.
//	gameEngine.Input(engine.Up)
//
// Game Rules:
//
// Pac-Man eats dots for points. Power-ups frighten every ghost for a fixed
// number of ticks; a frightened ghost touched by Pac-Man is sent back to the
// ghost house for a bonus, while touching any other ghost ends the game.
package engine
