package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// validConfig returns a Config whose reference data paths exist.
func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	c := Default()
	c.CatalogPath = writeFile(t, dir, "procedures.parquet", "PAR1")
	c.PolicyDir = filepath.Join(dir, "policies")
	if err := os.Mkdir(c.PolicyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadFromFile_Merges(t *testing.T) {
	path := writeFile(t, t.TempDir(), "claimready.yaml", `
log_format: json
policy_dir: /srv/policies
llm:
  base_url: https://llm.internal/v1
  model: gpt-4o-mini
retry:
  attempts: 3
  delay: 250ms
`)
	c := Default()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.LogFormat != "json" || c.PolicyDir != "/srv/policies" {
		t.Errorf("unexpected values: %+v", c)
	}
	if c.CatalogPath != DefaultCatalogPath {
		t.Errorf("unset key should keep default, got %q", c.CatalogPath)
	}
	if c.LLM.Model != "gpt-4o-mini" || c.LLM.BaseURL != "https://llm.internal/v1" {
		t.Errorf("llm = %+v", c.LLM)
	}
	if c.Retry.Attempts != 3 || c.Retry.Delay != 250*time.Millisecond {
		t.Errorf("retry = %+v", c.Retry)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	c := Default()
	if err := c.LoadFromFile("/nonexistent/claimready.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "retry: [1, 2\n")
	c := Default()
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDSN, "postgres://env/claims")
	t.Setenv(EnvLLMAPIKey, "sk-env")

	c := Default()
	c.DSN = "postgres://flag/claims"
	c.ApplyEnv()
	if c.DSN != "postgres://flag/claims" {
		t.Errorf("flag value should win, got %q", c.DSN)
	}
	if c.LLM.APIKey != "sk-env" || !c.LLMEnabled() {
		t.Errorf("api key = %q", c.LLM.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LogLevel"},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.Attempts = 0 }, wantErr: "Attempts"},
		{name: "bad llm url", mutate: func(c *Config) { c.LLM.BaseURL = "not a url" }, wantErr: "BaseURL"},
		{name: "missing catalog", mutate: func(c *Config) { c.CatalogPath = "/nonexistent.parquet" }, wantErr: "catalog"},
		{name: "policy dir is a file", mutate: func(c *Config) { c.PolicyDir = c.CatalogPath }, wantErr: "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig(t)
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateWithDSN(t *testing.T) {
	c := validConfig(t)
	if err := c.ValidateWithDSN(); err == nil || !strings.Contains(err.Error(), EnvDSN) {
		t.Fatalf("expected DSN error, got %v", err)
	}
	c.DSN = "postgres://localhost/claims"
	if err := c.ValidateWithDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
