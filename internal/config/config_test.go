package config

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Load defaults ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
	if cfg.Context.MaxTokens != 180000 {
		t.Errorf("Context.MaxTokens = %d, want 180000", cfg.Context.MaxTokens)
	}
	if cfg.Context.CharsPerToken != 4 {
		t.Errorf("Context.CharsPerToken = %d, want 4", cfg.Context.CharsPerToken)
	}
	if cfg.Context.MinTruncateTokens != 100 {
		t.Errorf("Context.MinTruncateTokens = %d, want 100", cfg.Context.MinTruncateTokens)
	}
	if !cfg.Context.AutoRefresh {
		t.Error("Context.AutoRefresh = false, want true")
	}
	if cfg.Context.Weights.ExactTitle != 2.0 {
		t.Errorf("Weights.ExactTitle = %v, want 2.0", cfg.Context.Weights.ExactTitle)
	}
	if cfg.Context.Weights.Relationship != 0.8 {
		t.Errorf("Weights.Relationship = %v, want 0.8", cfg.Context.Weights.Relationship)
	}
	if cfg.Search.MaxResults != 20 {
		t.Errorf("Search.MaxResults = %d, want 20", cfg.Search.MaxResults)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir empty, want home default")
	}
}

// --- File layer ---

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	body := []byte(`
data_dir: /var/lib/inkwell
log:
  level: debug
context:
  max_tokens: 120000
  auto_refresh: false
`)
	if err := os.WriteFile(path, body, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.DataDir != "/var/lib/inkwell" {
		t.Errorf("DataDir = %q, want /var/lib/inkwell", cfg.DataDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Context.MaxTokens != 120000 {
		t.Errorf("Context.MaxTokens = %d, want 120000", cfg.Context.MaxTokens)
	}
	if cfg.Context.AutoRefresh {
		t.Error("Context.AutoRefresh = true, want false")
	}
	// Untouched keys keep their defaults.
	if cfg.Context.CharsPerToken != 4 {
		t.Errorf("Context.CharsPerToken = %d, want default 4", cfg.Context.CharsPerToken)
	}
	if cfg.Search.MaxResults != 20 {
		t.Errorf("Search.MaxResults = %d, want default 20", cfg.Search.MaxResults)
	}
}

func TestLoad_MissingNamedFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded with a missing config file")
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("log: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded with malformed YAML")
	}
}

// --- Environment layer ---

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	if err := os.WriteFile(path, []byte("context:\n  max_tokens: 120000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INKWELL_CONTEXT_MAX_TOKENS", "90000")
	t.Setenv("INKWELL_LOG_LEVEL", "warn")
	t.Setenv("INKWELL_CONTEXT_WEIGHTS_EXACT_TITLE", "3.5")
	t.Setenv("INKWELL_DATA_DIR", "/tmp/inkwell-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Context.MaxTokens != 90000 {
		t.Errorf("Context.MaxTokens = %d, want env 90000", cfg.Context.MaxTokens)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Context.Weights.ExactTitle != 3.5 {
		t.Errorf("Weights.ExactTitle = %v, want 3.5", cfg.Context.Weights.ExactTitle)
	}
	if cfg.DataDir != "/tmp/inkwell-test" {
		t.Errorf("DataDir = %q, want /tmp/inkwell-test", cfg.DataDir)
	}
}

func TestEnvKey_Mapping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"INKWELL_DATA_DIR", "data_dir"},
		{"INKWELL_LOG_LEVEL", "log.level"},
		{"INKWELL_LOG_FORMAT", "log.format"},
		{"INKWELL_CONTEXT_MAX_TOKENS", "context.max_tokens"},
		{"INKWELL_CONTEXT_MIN_TRUNCATE_TOKENS", "context.min_truncate_tokens"},
		{"INKWELL_CONTEXT_AUTO_REFRESH", "context.auto_refresh"},
		{"INKWELL_CONTEXT_WEIGHTS_EXACT_TITLE", "context.weights.exact_title"},
		{"INKWELL_SEARCH_MAX_RESULTS", "search.max_results"},
	}
	for _, tc := range cases {
		if got := envKey(tc.in); got != tc.want {
			t.Errorf("envKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- Validate ---

func TestValidate_RejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted log level loud")
	}

	cfg = base()
	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted log format xml")
	}

	cfg = base()
	cfg.Context.MaxTokens = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted zero max_tokens")
	}

	cfg = base()
	cfg.Context.CharsPerToken = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted negative chars_per_token")
	}

	cfg = base()
	cfg.Context.Weights.Mention = -0.5
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted negative weight")
	}

	cfg = base()
	cfg.Search.MaxResults = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted zero max_results")
	}
}
