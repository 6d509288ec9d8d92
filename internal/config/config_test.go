package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("default provider: %q", cfg.LLM.Provider)
	}
	if !cfg.Evaluation.Enabled || cfg.Evaluation.Axes {
		t.Errorf("evaluation defaults: %+v", cfg.Evaluation)
	}
	if cfg.QuestionBank.CacheTTL != 24*time.Hour {
		t.Errorf("cache TTL: %s", cfg.QuestionBank.CacheTTL)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
llm:
  provider: mock
question_bank:
  path: /data/questions.html
  redis_addr: file-redis:6379
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	// Env beats file.
	t.Setenv("HEALTHYODA_REDIS_ADDR", "env-redis:6379")
	t.Setenv("HEALTHYODA_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("file port not applied: %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "mock" {
		t.Errorf("file provider not applied: %q", cfg.LLM.Provider)
	}
	if cfg.QuestionBank.Path != "/data/questions.html" {
		t.Errorf("file bank path not applied: %q", cfg.QuestionBank.Path)
	}
	if cfg.QuestionBank.RedisAddr != "env-redis:6379" {
		t.Errorf("env should beat file: %q", cfg.QuestionBank.RedisAddr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env log level not applied: %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit config path must exist")
	}
}

func TestLoad_ValidatesProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: telepathy\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("unknown provider must fail validation")
	}
}

func TestLoadUnvalidated_NoProviderKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "")

	// Full load demands a key; the unvalidated path must not.
	if _, err := Load(path); err == nil {
		t.Fatal("Load without an API key should fail validation")
	}

	cfg, err := LoadUnvalidated(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("provider: %q", cfg.LLM.Provider)
	}
}

func TestValidate_PortRange(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "mock"
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 must fail validation")
	}
}
