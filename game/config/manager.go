package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager handles map configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.MapConfig
	configs       map[string]*engine.MapConfig
	log           *log.Entry
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MapConfig),
		log:       log.WithField("component", "config"),
	}

	m.defaultConfig = m.loadDefaultConfig()
	m.log.WithFields(log.Fields{
		"dir":     configDir,
		"default": m.defaultConfig.Name,
	}).Debug("config manager ready")

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.MapConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			if name == engine.ClassicMapName {
				config := engine.DefaultMapConfig()
				m.configs[name] = config
				return config, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseMapConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := engine.ValidateMapConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = config
	return config, nil
}

// ListConfigs returns information about all available configurations. The
// built-in classic map is listed even without a file.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	hasClassic := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			m.log.WithError(err).WithField("file", entry.Name()).Warn("skipping invalid config")
			continue
		}
		if name == engine.ClassicMapName {
			hasClassic = true
		}
		configs = append(configs, configInfo(entry.Name(), name, config))
	}

	if !hasClassic {
		configs = append(configs, configInfo("", engine.ClassicMapName, engine.DefaultMapConfig()))
	}

	return configs, nil
}

func configInfo(filename, id string, config *engine.MapConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Width:       config.Width,
		Height:      config.Height,
		Ghosts:      len(config.GhostPolicies()),
		PowerUps:    len(config.PowerUps),
		Theme:       config.Theme,
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.MapConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations and reselects the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MapConfig)
	m.mu.Unlock()

	config := m.loadDefaultConfig()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// Themes returns the color themes a config may name
func (m *Manager) Themes() []engine.ColorTheme {
	return engine.Themes()
}

// loadDefaultConfig picks classic, then the first valid file, then the
// built-in classic map
func (m *Manager) loadDefaultConfig() *engine.MapConfig {
	if _, err := os.Stat(filepath.Join(m.configDir, engine.ClassicMapName+".json")); err == nil {
		if config, err := m.LoadConfig(engine.ClassicMapName); err == nil {
			return config
		}
	}

	configs, err := m.ListConfigs()
	if err == nil {
		for _, info := range configs {
			if info.Filename == "" {
				continue
			}
			if config, err := m.LoadConfig(info.ConfigID); err == nil {
				return config
			}
		}
	}

	return engine.DefaultMapConfig()
}

// SaveConfig saves a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.MapConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return err
	}
	if err := engine.ValidateMapConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	m.log.WithField("config", name).Info("config saved")
	return nil
}

// checkName rejects names that would escape the config directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	return nil
}
