package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Engine        Engine        `toml:"engine"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

// Engine holds the analysis engine settings. CacheTimeoutMS is the result
// cache entry lifetime; MaxFileSize is enforced before the engine is invoked;
// ParseBudgetMS bounds a single parse so a pathological buffer cannot block
// the engine indefinitely.
type Engine struct {
	CacheTimeoutMS int64 `toml:"cache_timeout_ms"`
	MaxFileSize    int   `toml:"max_file_size"`
	ParseBudgetMS  int64 `toml:"parse_budget_ms"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// Rate/Burst bound how fast watch-mode re-analysis may fire under churn.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled"`
	Address      string `toml:"address"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func (e Engine) CacheTimeout() time.Duration {
	return time.Duration(e.CacheTimeoutMS) * time.Millisecond
}

func (e Engine) ParseBudget() time.Duration {
	return time.Duration(e.ParseBudgetMS) * time.Millisecond
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}

	if cfg.Engine.CacheTimeoutMS == 0 {
		cfg.Engine.CacheTimeoutMS = 5000
	}
	if cfg.Engine.MaxFileSize == 0 {
		cfg.Engine.MaxFileSize = 1_000_000
	}
	if cfg.Engine.ParseBudgetMS == 0 {
		cfg.Engine.ParseBudgetMS = 2000
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", ".venv", "venv", "node_modules"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.Rate == 0 {
		cfg.Watch.Rate = 10
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 20
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/state/history.db"
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9188"
	}
	if strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		cfg.Observability.OTLPEndpoint = "localhost:4317"
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	if cfg.Engine.CacheTimeoutMS < 0 {
		return fmt.Errorf("engine.cache_timeout_ms must not be negative")
	}
	if cfg.Engine.MaxFileSize < 0 {
		return fmt.Errorf("engine.max_file_size must not be negative")
	}
	if cfg.Engine.ParseBudgetMS < 0 {
		return fmt.Errorf("engine.parse_budget_ms must not be negative")
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
