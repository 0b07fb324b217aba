package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const envOverride = "PYRUNNER_CONFIG"

// Upstream repository carrying the bundled example scripts.
const (
	defaultScriptsOwner = "ThalesMMS"
	defaultScriptsRepo  = "Python-Runner-OsiriX-Horos-Plugin"
)

type Config struct {
	Venv    VenvConfig    `toml:"venv"`
	Scripts ScriptsConfig `toml:"scripts"`
	Data    DataConfig    `toml:"data"`
}

type VenvConfig struct {
	Path string `toml:"path"`
	// Tri-state so an absent key defaults to enabled; read it through
	// Config.AutoActivate.
	AutoActivate *bool `toml:"auto_activate"`
}

type ScriptsConfig struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

// AutoActivate reports whether the configured environment should be
// used automatically. Defaults to true when unset.
func (c *Config) AutoActivate() bool {
	if c.Venv.AutoActivate == nil {
		return true
	}
	return *c.Venv.AutoActivate
}

// SetAutoActivate sets the auto-activate flag explicitly.
func (c *Config) SetAutoActivate(v bool) {
	c.Venv.AutoActivate = &v
}

// SetVenvPath sets the selected environment path; empty clears it.
func (c *Config) SetVenvPath(path string) {
	c.Venv.Path = path
}

// HistoryDBPath returns the run-history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Data.Dir, "history.db")
}

// DefaultPath returns the configuration file path.
func DefaultPath() string {
	if p := os.Getenv(envOverride); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "pyrunner", "config.toml")
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from the default path. A missing file is not
// an error: the defaults stand in for it, matching the behavior of the
// host application's preference store.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scripts.Owner == "" {
		cfg.Scripts.Owner = defaultScriptsOwner
	}
	if cfg.Scripts.Repo == "" {
		cfg.Scripts.Repo = defaultScriptsRepo
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = filepath.Dir(DefaultPath())
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir for %s: %w", path, err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// TemplateConfig returns a TOML template with commented defaults for
// first-time setup.
func TemplateConfig() string {
	return `[venv]
# Path to the virtual environment scripts should run in.
path = ""
# Use the environment above automatically when it validates.
auto_activate = true

[scripts]
# GitHub repository the example scripts are fetched from.
owner = "ThalesMMS"
repo  = "Python-Runner-OsiriX-Horos-Plugin"

[data]
# Where the run history database lives. Empty = next to this file.
dir = ""
`
}
