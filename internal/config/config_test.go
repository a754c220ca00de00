package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func validConfig() *Config {
	return &Config{
		LLM:       LLMConfig{Provider: "anthropic"},
		Anthropic: AnthropicConfig{Key: "sk-test"},
		Leadgen: LeadgenConfig{
			Concurrency:     1,
			DefaultCategory: "NE_B2B",
			Categories:      DefaultCategories(),
		},
		Store:  StoreConfig{Driver: "sqlite"},
		Output: OutputConfig{Format: "csv"},
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, 10, cfg.Leadgen.MaxURLs)
	assert.Equal(t, 1, cfg.Leadgen.Concurrency)
	assert.Equal(t, 1000, cfg.Leadgen.RecordDelayMs)
	assert.Equal(t, "NE_B2B", cfg.Leadgen.DefaultCategory)
	assert.Equal(t, DefaultGenericNames(), cfg.Leadgen.GenericNames)
	require.Len(t, cfg.Leadgen.Categories, 2)
	assert.Equal(t, "HR", cfg.Leadgen.Categories[0].Name)
	assert.Contains(t, cfg.Leadgen.Categories[0].SourceKeywords, "payroll")
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2000, cfg.Retry.InitialBackoffMs)
	assert.InDelta(t, 2.0, cfg.Retry.Multiplier, 0.001)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
llm:
  provider: gemini
gemini:
  key: g-key
leadgen:
  concurrency: 4
  default_category: General
  categories:
    - name: Legal
      source_keywords: [law-, legal]
      review: false
    - name: General
store:
  driver: memory
output:
  format: xlsx
  path: leads.xlsx
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.Gemini.Key)
	assert.Equal(t, 4, cfg.Leadgen.Concurrency)
	require.Len(t, cfg.Leadgen.Categories, 2)
	assert.Equal(t, []string{"law-", "legal"}, cfg.Leadgen.Categories[0].SourceKeywords)
	assert.False(t, cfg.Leadgen.Categories[0].Review)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "leads.xlsx", cfg.Output.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LEADGEN_ANTHROPIC_KEY", "env-key")
	t.Setenv("LEADGEN_LEADGEN_MAX_URLS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Anthropic.Key)
	assert.Equal(t, 3, cfg.Leadgen.MaxURLs)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("llm: [unterminated"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "openai" }, "unknown llm.provider"},
		{"missing anthropic key", func(c *Config) { c.Anthropic.Key = "" }, "anthropic.key"},
		{"missing perplexity key", func(c *Config) { c.LLM.Provider = "perplexity" }, "perplexity.key"},
		{"missing gemini key", func(c *Config) { c.LLM.Provider = "gemini" }, "gemini.key"},
		{"no categories", func(c *Config) { c.Leadgen.Categories = nil }, "at least one"},
		{"empty category name", func(c *Config) { c.Leadgen.Categories[0].Name = "" }, "empty name"},
		{"duplicate category", func(c *Config) { c.Leadgen.Categories[0].Name = "NE_B2B" }, "duplicate"},
		{"undeclared default", func(c *Config) { c.Leadgen.DefaultCategory = "Other" }, "not declared"},
		{"zero concurrency", func(c *Config) { c.Leadgen.Concurrency = 0 }, "concurrency"},
		{"unknown store", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"unknown format", func(c *Config) { c.Output.Format = "json" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCategory(t *testing.T) {
	cfg := validConfig()
	hr, ok := cfg.Category("HR")
	require.True(t, ok)
	assert.True(t, hr.Review)

	_, ok = cfg.Category("Nope")
	assert.False(t, ok)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
