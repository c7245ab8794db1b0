package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvDSN       = "CLAIMREADY_DB_URL"
	EnvLLMAPIKey = "CLAIMREADY_LLM_API_KEY"
)

// Defaults applied by Default.
const (
	DefaultCatalogPath   = "data/procedures.parquet"
	DefaultPolicyDir     = "data/policies"
	DefaultRetryAttempts = 2
	DefaultRetryDelay    = time.Second
)

// LLM configures the judgment collaborator. An empty APIKey disables it and
// every judgment degrades to its manual-review default.
type LLM struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
}

// Retry bounds calls to the judgment collaborator.
type Retry struct {
	Attempts uint          `yaml:"attempts" validate:"gte=1,lte=10"`
	Delay    time.Duration `yaml:"delay" validate:"gte=0,lte=1m"`
}

// Config holds all runtime configuration for a claimready run.
type Config struct {
	DSN         string `yaml:"-"`
	LogFormat   string `yaml:"log_format" validate:"oneof=text json"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	CatalogPath string `yaml:"catalog_path" validate:"required"`
	PolicyDir   string `yaml:"policy_dir" validate:"required"`
	LLM         LLM    `yaml:"llm"`
	Retry       Retry  `yaml:"retry"`
}

// yamlConfig is the on-disk YAML structure. Pointers distinguish unset keys
// so a file only overrides what it names.
type yamlConfig struct {
	LogFormat   *string `yaml:"log_format"`
	LogLevel    *string `yaml:"log_level"`
	CatalogPath *string `yaml:"catalog_path"`
	PolicyDir   *string `yaml:"policy_dir"`
	LLM         struct {
		BaseURL *string `yaml:"base_url"`
		Model   *string `yaml:"model"`
	} `yaml:"llm"`
	Retry struct {
		Attempts *uint          `yaml:"attempts"`
		Delay    *time.Duration `yaml:"delay"`
	} `yaml:"retry"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns a Config with every optional field populated.
func Default() Config {
	return Config{
		LogFormat:   "text",
		CatalogPath: DefaultCatalogPath,
		PolicyDir:   DefaultPolicyDir,
		Retry:       Retry{Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay},
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	set(&c.LogFormat, yc.LogFormat)
	set(&c.LogLevel, yc.LogLevel)
	set(&c.CatalogPath, yc.CatalogPath)
	set(&c.PolicyDir, yc.PolicyDir)
	set(&c.LLM.BaseURL, yc.LLM.BaseURL)
	set(&c.LLM.Model, yc.LLM.Model)
	set(&c.Retry.Attempts, yc.Retry.Attempts)
	set(&c.Retry.Delay, yc.Retry.Delay)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ApplyEnv fills secrets that were not given as flags from the environment.
func (c *Config) ApplyEnv() {
	if c.DSN == "" {
		c.DSN = os.Getenv(EnvDSN)
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(EnvLLMAPIKey)
	}
}

// Validate checks field constraints and that the reference data is reachable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := os.Stat(c.CatalogPath); err != nil {
		return fmt.Errorf("procedure catalog not accessible: %w", err)
	}
	info, err := os.Stat(c.PolicyDir)
	if err != nil {
		return fmt.Errorf("policy directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("policy directory %s is not a directory", c.PolicyDir)
	}
	return nil
}

// ValidateWithDSN checks the reference data and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.RequireDSN()
}

// RequireDSN checks only that a database is configured.
func (c *Config) RequireDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or %s is required", EnvDSN)
	}
	return nil
}

// LLMEnabled reports whether a judgment collaborator is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
