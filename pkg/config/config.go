// Package config provides the flat configuration surface for
// kodegen-tools-browser: browser launch defaults, research session
// timings, and agent step limits.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Window describes the default browser viewport.
type Window struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// Browser holds browser launch configuration.
type Browser struct {
	Headless        bool   `yaml:"headless"`
	DisableSecurity bool   `yaml:"disable_security"`
	Window          Window `yaml:"window"`
}

// Research holds research session registry configuration.
type Research struct {
	SessionTimeoutMS uint64 `yaml:"session_timeout_ms"`
	SweepIntervalMS  uint64 `yaml:"sweep_interval_ms"`
	MaxPagesDefault  uint32 `yaml:"max_pages_default"`
}

// Agent holds agent loop configuration.
type Agent struct {
	MaxStepsDefault uint32 `yaml:"max_steps_default"`
}

// Config is the complete flat configuration surface.
type Config struct {
	Browser  Browser  `yaml:"browser"`
	Research Research `yaml:"research"`
	Agent    Agent    `yaml:"agent"`
}

// Default returns the configuration with every documented default
// applied.
func Default() *Config {
	return &Config{
		Browser: Browser{
			Headless:        true,
			DisableSecurity: false,
			Window:          Window{Width: 1280, Height: 720},
		},
		Research: Research{
			SessionTimeoutMS: 300000,
			SweepIntervalMS:  60000,
			MaxPagesDefault:  5,
		},
		Agent: Agent{
			MaxStepsDefault: 20,
		},
	}
}

var (
	global       *Config
	globalMu     sync.RWMutex
	initialized  bool
)

// Initialize loads configuration starting from Default(), optionally
// overlaying a YAML file at configPath (if non-empty and present), and
// finally applying environment variable overrides. It sets the global
// singleton returned by Global().
func Initialize(configPath string) error {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	globalMu.Lock()
	global = cfg
	initialized = true
	globalMu.Unlock()

	return nil
}

// Global returns the global configuration singleton. It panics if
// Initialize has not been called, matching the teacher's singleton
// access pattern.
func Global() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if !initialized {
		panic("config: Global() called before Initialize()")
	}
	return global
}

// IsInitialized reports whether Initialize has been called.
func IsInitialized() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return initialized
}

// reset clears the global singleton. Used only by tests in this package
// that need to exercise Initialize repeatedly.
func reset() {
	globalMu.Lock()
	defer globalMu.Unlock()

	global = nil
	initialized = false
}
