package core

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
)

// ConfigManager loads EngineConfig from an optional YAML project-defaults
// file, merges environment overrides on top, and can hot-reload that file
// while the CLI's watch command is running. Modeled on the teacher's
// ConfigManager (src/core/config_manager.go), trimmed to the one config
// shape this engine has (EngineConfig) instead of a multi-section layout
// config.
type ConfigManager struct {
	logger *Logger

	mu     sync.RWMutex
	config EngineConfig
	path   string

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewConfigManager returns a manager that logs through logger (or a default
// logger if nil).
func NewConfigManager(logger *Logger) *ConfigManager {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ConfigManager{logger: logger, config: DefaultEngineConfig()}
}

// Load reads defaultsPath as YAML into EngineConfig (if it exists; a missing
// path is not an error, the struct-tag defaults apply), then applies
// environment overrides on top via caarlos0/env, and caches the merged
// result for Current/StartHotReload.
func (cm *ConfigManager) Load(defaultsPath string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if defaultsPath != "" {
		content, err := os.ReadFile(defaultsPath)
		switch {
		case err == nil:
			if strings.TrimSpace(string(content)) != "" {
				if err := yaml.Unmarshal(content, &cfg); err != nil {
					return EngineConfig{}, fmt.Errorf("parsing config defaults %q: %w", defaultsPath, err)
				}
			}
			cm.logger.WithField("path", defaultsPath).Debug("loaded config defaults file")
		case os.IsNotExist(err):
			cm.logger.WithField("path", defaultsPath).Debug("config defaults file not found, using built-in defaults")
		default:
			return EngineConfig{}, fmt.Errorf("reading config defaults %q: %w", defaultsPath, err)
		}
	}

	// Only variables actually set in the environment override the file;
	// env.Parse on cfg would also reset every unset field to its envDefault.
	envCfg, err := LoadEngineConfig()
	if err != nil {
		return EngineConfig{}, fmt.Errorf("applying environment overrides: %w", err)
	}
	dst, src := reflect.ValueOf(&cfg).Elem(), reflect.ValueOf(envCfg)
	for i := 0; i < dst.NumField(); i++ {
		if _, set := os.LookupEnv(dst.Type().Field(i).Tag.Get("env")); set {
			dst.Field(i).Set(src.Field(i))
		}
	}

	if err := validateEngineConfig(cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid engine config: %w", err)
	}

	cm.mu.Lock()
	cm.config = cfg
	cm.path = defaultsPath
	cm.mu.Unlock()

	return cfg, nil
}

// Current returns the most recently loaded EngineConfig.
func (cm *ConfigManager) Current() EngineConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// StartHotReload watches the defaults file passed to the most recent Load
// call and re-runs Load on every write, invoking onReload with the new
// config (or an error). Intended for use under the CLI's watch command,
// where a long-running process benefits from picking up edited leveling
// horizons or cost-rounding without a restart. A no-op (returns nil, does
// nothing) when Load was never called with a non-empty path.
func (cm *ConfigManager) StartHotReload(onReload func(EngineConfig, error)) error {
	cm.mu.RLock()
	path := cm.path
	cm.mu.RUnlock()
	if path == "" {
		return nil
	}
	if cm.watcher != nil {
		return fmt.Errorf("config hot-reload already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config defaults %q: %w", path, err)
	}

	cm.watcher = watcher
	cm.stopChan = make(chan struct{})
	go cm.watchLoop(path, onReload)
	cm.logger.WithField("path", path).Info("config hot-reload enabled")
	return nil
}

// StopHotReload stops the watcher started by StartHotReload, if any.
func (cm *ConfigManager) StopHotReload() {
	if cm.watcher == nil {
		return
	}
	close(cm.stopChan)
	cm.watcher.Close()
	cm.watcher = nil
}

// validateEngineConfig rejects defaults/overrides that would make the
// leveler or calendar math misbehave (negative horizon, non-positive hours
// per day, negative rounding).
func validateEngineConfig(cfg EngineConfig) error {
	var errs []string
	if cfg.LevelingHorizonDays < 0 {
		errs = append(errs, "levelingHorizonDays must be >= 0")
	}
	if cfg.DefaultHoursPerDay <= 0 {
		errs = append(errs, "defaultHoursPerDay must be > 0")
	}
	if cfg.EVMRoundingDecimals < 0 {
		errs = append(errs, "evmRoundingDecimals must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf(strings.Join(errs, "; "))
	}
	return nil
}

func (cm *ConfigManager) watchLoop(path string, onReload func(EngineConfig, error)) {
	for {
		select {
		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := cm.Load(path)
			if err != nil {
				cm.logger.WithField("error", err).Warn("config defaults reload failed")
			}
			if onReload != nil {
				onReload(cfg, err)
			}
		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.WithField("error", err).Warn("config watcher error")
		case <-cm.stopChan:
			return
		}
	}
}
