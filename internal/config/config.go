// Package config loads the application configuration: defaults, then an
// optional YAML file, then environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/healthyoda/intake/internal/llm"
	"github.com/healthyoda/intake/internal/server"
)

// Config is the full application configuration.
type Config struct {
	Server server.Config `yaml:"server"`
	LLM    llm.Config    `yaml:"llm"`

	QuestionBank QuestionBankConfig `yaml:"question_bank"`
	Evaluation   EvaluationConfig   `yaml:"evaluation"`
	Storage      StorageConfig      `yaml:"storage"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// QuestionBankConfig locates the question book and its Redis cache.
type QuestionBankConfig struct {
	// Path is the question book document, HTML or plain text.
	Path string `yaml:"path"`

	// RedisAddr enables the parse cache when set, e.g. "localhost:6379".
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// EvaluationConfig gates the two judges.
type EvaluationConfig struct {
	// Enabled turns the rubric evaluator on.
	Enabled bool `yaml:"enabled"`

	// Axes turns the secondary multi-axis judge on.
	Axes bool `yaml:"axes"`

	// CriterionTimeout bounds one judge call.
	CriterionTimeout time.Duration `yaml:"criterion_timeout"`
}

// StorageConfig locates the SQLite event log.
type StorageConfig struct {
	// Enabled turns event persistence on.
	Enabled bool `yaml:"enabled"`

	// DBPath overrides the default database location.
	DBPath string `yaml:"db_path"`
}

// LoggingConfig tunes zerolog.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Pretty switches to the human console writer.
	Pretty bool `yaml:"pretty"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: server.DefaultConfig(),
		LLM:    llm.DefaultConfig(),
		QuestionBank: QuestionBankConfig{
			Path:     "questions.html",
			CacheTTL: 24 * time.Hour,
		},
		Evaluation: EvaluationConfig{
			Enabled:          true,
			Axes:             false,
			CriterionTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// configPaths are tried in order; the first readable file wins.
var configPaths = []string{
	"healthyoda.yaml",
	"configs/healthyoda.yaml",
	"/etc/healthyoda/config.yaml",
}

// Load builds the configuration: defaults, optional YAML file, then
// environment overrides. path, when non-empty, names the YAML file
// explicitly and must exist.
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without the cross-field validation. Commands
// that only read local state (stats) use it so a missing provider API
// key does not block them.
func LoadUnvalidated(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else {
		for _, p := range configPaths {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", p, err)
			}
			break
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays HEALTHYODA_* environment variables.
func (c *Config) applyEnv() {
	c.LLM.ApplyEnv()

	if v := os.Getenv("HEALTHYODA_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("HEALTHYODA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("HEALTHYODA_QUESTION_BANK"); v != "" {
		c.QuestionBank.Path = v
	}
	if v := os.Getenv("HEALTHYODA_REDIS_ADDR"); v != "" {
		c.QuestionBank.RedisAddr = v
	}
	if v := os.Getenv("HEALTHYODA_REDIS_PASSWORD"); v != "" {
		c.QuestionBank.RedisPassword = v
	}
	if v := os.Getenv("HEALTHYODA_EVALUATION"); v != "" {
		c.Evaluation.Enabled = parseBool(v, c.Evaluation.Enabled)
	}
	if v := os.Getenv("HEALTHYODA_EVALUATION_AXES"); v != "" {
		c.Evaluation.Axes = parseBool(v, c.Evaluation.Axes)
	}
	if v := os.Getenv("HEALTHYODA_STORAGE"); v != "" {
		c.Storage.Enabled = parseBool(v, c.Storage.Enabled)
	}
	if v := os.Getenv("HEALTHYODA_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("HEALTHYODA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return nil
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
