// Package config loads the Inkwell configuration from defaults, an
// optional YAML file, and INKWELL_-prefixed environment variables, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/inkwell-mcp/inkwell/internal/engine"
)

// Config is the full Inkwell configuration.
type Config struct {
	// DataDir holds the SQLite database and the active-project state
	// file. Empty means ~/.inkwell.
	DataDir string        `koanf:"data_dir"`
	Log     LogConfig     `koanf:"log"`
	Context ContextConfig `koanf:"context"`
	Search  SearchConfig  `koanf:"search"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ContextConfig tunes the context engine's budget model and scoring.
type ContextConfig struct {
	MaxTokens         int            `koanf:"max_tokens"`
	CharsPerToken     int            `koanf:"chars_per_token"`
	MinTruncateTokens int            `koanf:"min_truncate_tokens"`
	AutoRefresh       bool           `koanf:"auto_refresh"`
	Weights           engine.Weights `koanf:"weights"`
}

// SearchConfig bounds full-text search.
type SearchConfig struct {
	MaxResults int `koanf:"max_results"`
}

// defaults is the base layer every load starts from. File and environment
// values override it key by key.
const defaults = `
log:
  level: info
  format: console
context:
  max_tokens: 180000
  chars_per_token: 4
  min_truncate_tokens: 100
  auto_refresh: true
  weights:
    exact_title: 2.0
    mention: 1.5
    overlap: 1.0
    importance: 1.2
    relationship: 0.8
search:
  max_results: 20
`

// Load builds the configuration. path names an optional YAML file; an empty
// path skips the file layer entirely, a named file that cannot be read is
// an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("INKWELL_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".inkwell")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps INKWELL_ environment names onto config paths. The first
// segment selects the section, the rest stays a snake_case field name:
//
//	INKWELL_DATA_DIR                    -> data_dir
//	INKWELL_LOG_LEVEL                   -> log.level
//	INKWELL_CONTEXT_MAX_TOKENS          -> context.max_tokens
//	INKWELL_CONTEXT_WEIGHTS_EXACT_TITLE -> context.weights.exact_title
//	INKWELL_SEARCH_MAX_RESULTS          -> search.max_results
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, "INKWELL_"))
	for _, section := range []string{"log", "context", "search"} {
		if !strings.HasPrefix(key, section+"_") {
			continue
		}
		field := strings.TrimPrefix(key, section+"_")
		if section == "context" && strings.HasPrefix(field, "weights_") {
			return "context.weights." + strings.TrimPrefix(field, "weights_")
		}
		return section + "." + field
	}
	return key
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Context.MaxTokens <= 0 {
		return fmt.Errorf("context.max_tokens must be positive, got %d", c.Context.MaxTokens)
	}
	if c.Context.CharsPerToken <= 0 {
		return fmt.Errorf("context.chars_per_token must be positive, got %d", c.Context.CharsPerToken)
	}
	if c.Context.MinTruncateTokens <= 0 {
		return fmt.Errorf("context.min_truncate_tokens must be positive, got %d", c.Context.MinTruncateTokens)
	}
	w := c.Context.Weights
	for _, v := range []float64{w.ExactTitle, w.Mention, w.Overlap, w.Importance, w.Relationship} {
		if v < 0 {
			return fmt.Errorf("scoring weights must not be negative")
		}
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	return nil
}
