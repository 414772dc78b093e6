// Package config provides map configuration management for the Pac-Man server.
//
// The config package handles:
//   - Loading map configurations from JSON files
//   - Validation through engine.ValidateMapConfig
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Map configurations are stored as JSON files in the configs directory. Each
// one defines the grid size, a row-major string of cell digits (0 path,
// 1 wall, 2 gate, 3 ghost spawn), Pac-Man's start cell, power-up cells,
// optional dot cells, the ghost policy lineup, a color theme and the rules.
//
// The classic map is built in, so "classic" resolves even when no file with
// that name exists.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mapConfig, err := manager.LoadConfig("open_room")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Default Selection:
//
// classic.json is the default when present, then the first valid file in
// name order, then the built-in classic map.
package config
