package config

import (
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once by Load
// and passed by pointer into every component constructor; nothing mutates it
// after startup.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Leadgen    LeadgenConfig    `yaml:"leadgen" mapstructure:"leadgen"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects the generative text provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina reader and search settings. An empty key disables
// search grounding and the Jina scraper.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// CategoryConfig declares one lead category: how sources are recognized,
// what to search for, and how its analyst and reviewer are prompted.
type CategoryConfig struct {
	Name           string   `yaml:"name" mapstructure:"name"`
	Label          string   `yaml:"label" mapstructure:"label"`
	SourceKeywords []string `yaml:"source_keywords" mapstructure:"source_keywords"`
	SearchQueries  []string `yaml:"search_queries" mapstructure:"search_queries"`
	AnalysisFocus  string   `yaml:"analysis_focus" mapstructure:"analysis_focus"`
	ReviewFocus    string   `yaml:"review_focus" mapstructure:"review_focus"`
	Review         bool     `yaml:"review" mapstructure:"review"`
}

// LeadgenConfig controls the run itself.
type LeadgenConfig struct {
	MaxURLs         int              `yaml:"max_urls" mapstructure:"max_urls"`
	Concurrency     int              `yaml:"concurrency" mapstructure:"concurrency"`
	RecordDelayMs   int              `yaml:"record_delay_ms" mapstructure:"record_delay_ms"`
	GenericNames    []string         `yaml:"generic_names" mapstructure:"generic_names"`
	DefaultCategory string           `yaml:"default_category" mapstructure:"default_category"`
	Categories      []CategoryConfig `yaml:"categories" mapstructure:"categories"`
}

// RetryConfig controls the collaborator retry policy.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig controls the per-provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ScrapeConfig controls page fetching for source and company pages.
type ScrapeConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxTextChars int    `yaml:"max_text_chars" mapstructure:"max_text_chars"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OutputConfig configures the tabular export.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NotionConfig holds Notion credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID   string `yaml:"client_id" mapstructure:"client_id"`
	Username   string `yaml:"username" mapstructure:"username"`
	KeyPath    string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string `yaml:"login_url" mapstructure:"login_url"`
	LeadSource string `yaml:"lead_source" mapstructure:"lead_source"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Providers lists the supported generative text providers.
var Providers = []string{"anthropic", "perplexity", "gemini"}

// Load reads configuration from config.yaml (optional), a .env file
// (optional) and LEADGEN_* environment variables.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("leadgen.max_urls", 10)
	v.SetDefault("leadgen.concurrency", 1)
	v.SetDefault("leadgen.record_delay_ms", 1000)
	v.SetDefault("leadgen.generic_names", DefaultGenericNames())
	v.SetDefault("leadgen.default_category", "NE_B2B")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 2000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("scrape.timeout_secs", 20)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; leadgen/1.0)")
	v.SetDefault("scrape.max_text_chars", 15000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadgen.db")
	v.SetDefault("output.path", "output.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.lead_source", "HR Conference Prospecting")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Unmarshal only sees env vars for keys viper already knows about.
	for _, key := range []string{
		"anthropic.key", "perplexity.key", "gemini.key", "jina.key",
		"notion.token", "notion.lead_db",
		"salesforce.client_id", "salesforce.username", "salesforce.key_path",
	} {
		v.SetDefault(key, "")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Leadgen.Categories) == 0 {
		cfg.Leadgen.Categories = DefaultCategories()
	}

	return &cfg, nil
}

// Validate reports the first configuration problem that must stop a run
// before any record is processed.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "anthropic":
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic.key is required for provider anthropic")
		}
	case "perplexity":
		if c.Perplexity.Key == "" {
			return eris.New("config: perplexity.key is required for provider perplexity")
		}
	case "gemini":
		if c.Gemini.Key == "" {
			return eris.New("config: gemini.key is required for provider gemini")
		}
	default:
		return eris.Errorf("config: unknown llm.provider %q (want one of %s)",
			c.LLM.Provider, strings.Join(Providers, ", "))
	}

	if len(c.Leadgen.Categories) == 0 {
		return eris.New("config: at least one leadgen category is required")
	}
	seen := make(map[string]bool, len(c.Leadgen.Categories))
	for _, cat := range c.Leadgen.Categories {
		if cat.Name == "" {
			return eris.New("config: leadgen category with empty name")
		}
		if seen[cat.Name] {
			return eris.Errorf("config: duplicate leadgen category %q", cat.Name)
		}
		seen[cat.Name] = true
	}
	if !seen[c.Leadgen.DefaultCategory] {
		return eris.Errorf("config: default category %q is not declared", c.Leadgen.DefaultCategory)
	}

	if c.Leadgen.Concurrency < 1 {
		return eris.Errorf("config: leadgen.concurrency must be >= 1, got %d", c.Leadgen.Concurrency)
	}
	if !slices.Contains([]string{"sqlite", "postgres", "memory"}, c.Store.Driver) {
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if !slices.Contains([]string{"csv", "xlsx"}, c.Output.Format) {
		return eris.Errorf("config: unknown output.format %q", c.Output.Format)
	}
	return nil
}

// Category returns the named category config.
func (c *Config) Category(name string) (CategoryConfig, bool) {
	for _, cat := range c.Leadgen.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}

// DefaultGenericNames are placeholder company names dropped before analysis.
func DefaultGenericNames() []string {
	return []string{
		"company", "organization", "the firm", "client",
		"example", "test", "none", "n/a", "website", "url",
	}
}

// DefaultCategories returns the HR-industry and New England B2B streams.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name:  "HR",
			Label: "HR industry company",
			SourceKeywords: []string{
				"hr-", "human-resources", "recruiting", "payroll", "benefits",
				"talent-acquisition", "hrtech", "hcm", "applicant-tracking",
			},
			SearchQueries: []string{
				"top HR software companies list",
				"HR consulting firms directory",
				"best recruiting and staffing agencies",
				"payroll and benefits providers list",
			},
			AnalysisFocus: "This is an HR-focused company. Consider aspects relevant to their specific HR niche " +
				"(competition for consultants, changing regulations for compliance firms, technology adoption for software vendors). " +
				"Think about why attending or sponsoring an HR conference could be directly beneficial within their industry " +
				"(networking with peers and buyers, lead generation, brand visibility, learning industry trends).",
			ReviewFocus: "This is an HR-focused company. Check that each point is specific to the HR sector, not a generic " +
				"business platitude, and clearly linked to the value of sponsoring an HR industry conference. Refine generic points " +
				"into specific HR challenges or opportunities.",
			Review: true,
		},
		{
			Name:  "NE_B2B",
			Label: "New England B2B company",
			SearchQueries: []string{
				"New England business journal fastest growing B2B companies",
				"Massachusetts B2B service providers directory",
				"Connecticut and Rhode Island top technology companies list",
				"New Hampshire Vermont Maine business association members",
			},
			AnalysisFocus: "This is likely a general B2B company in New England. Consider why this type of B2B company " +
				"might want to reach HR professionals or business leaders who attend regional HR conferences " +
				"(selling to HR departments, recruiting talent, building regional brand awareness, meeting large clients). " +
				"Frame the points with HR conference sponsorship in mind.",
			ReviewFocus: "This is likely a general B2B company in New England. Check that each point gives a plausible, " +
				"clear reason why this non-HR company would benefit from sponsoring a regional HR conference. Refine weak " +
				"points into a specific angle connecting their offering to the HR conference audience.",
			Review: true,
		},
	}
}

// InitLogger configures the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
