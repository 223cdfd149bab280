package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CASEFILE_CONFIG", "HTTP_ADDR", "STORE_PATH", "OPENAI_MODEL", "PIPELINE_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Path != "casefile.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.CallsPerMin != 20 {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Pipeline.Workers != 4 || !cfg.Pipeline.ValidateFields {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
}

func TestLoadConfigYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9090"
llm:
  model: gpt-4o
pipeline:
  workers: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASEFILE_CONFIG", path)
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("PIPELINE_WORKERS", "")

	cfg := LoadConfig()
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Errorf("Workers = %d", cfg.Pipeline.Workers)
	}
	// Absent keys keep their defaults.
	if cfg.Store.Path != "casefile.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestLoadConfigEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASEFILE_CONFIG", path)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("PIPELINE_WORKERS", "16")

	cfg := LoadConfig()
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q, env should win over file", cfg.Server.Addr)
	}
	if cfg.Pipeline.Workers != 16 {
		t.Errorf("Workers = %d", cfg.Pipeline.Workers)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing API key should fail validation")
	}

	cfg = defaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.Server.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing addr should fail validation")
	}
}
