package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/lead-scout/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Demo      DemoConfig      `yaml:"demo" mapstructure:"demo"`
	Outreach  OutreachConfig  `yaml:"outreach" mapstructure:"outreach"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DiscoveryConfig configures the discovery job runner.
type DiscoveryConfig struct {
	QualifyThreshold       int      `yaml:"qualify_threshold" mapstructure:"qualify_threshold"`
	HighScoreThreshold     int      `yaml:"high_score_threshold" mapstructure:"high_score_threshold"`
	AcquireTimeoutSecs     int      `yaml:"acquire_timeout_secs" mapstructure:"acquire_timeout_secs"`
	EnrichTimeoutSecs      int      `yaml:"enrich_timeout_secs" mapstructure:"enrich_timeout_secs"`
	EnforceExtendedFilters bool     `yaml:"enforce_extended_filters" mapstructure:"enforce_extended_filters"`
	ChainNames             []string `yaml:"chain_names" mapstructure:"chain_names"`
}

// AcquireTimeout returns the acquisition timeout as a duration.
func (d DiscoveryConfig) AcquireTimeout() time.Duration {
	return time.Duration(d.AcquireTimeoutSecs) * time.Second
}

// EnrichTimeout returns the per-call enrichment timeout as a duration.
func (d DiscoveryConfig) EnrichTimeout() time.Duration {
	return time.Duration(d.EnrichTimeoutSecs) * time.Second
}

// ClassifyConfig configures the website fetcher used for classification.
type ClassifyConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the classification fetch timeout as a duration.
func (c ClassifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	MaxPages  int     `yaml:"max_pages" mapstructure:"max_pages"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// JinaConfig holds Jina search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// DemoConfig configures placeholder demo asset URLs.
type DemoConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OutreachConfig configures outreach drafts.
type OutreachConfig struct {
	Sender string `yaml:"sender" mapstructure:"sender"`
}

// RetryConfig configures retries for transient upstream failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMS     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ScheduleConfig configures recurring discovery searches.
type ScheduleConfig struct {
	Spec     string        `yaml:"spec" mapstructure:"spec"`
	Searches []SavedSearch `yaml:"searches" mapstructure:"searches"`
}

// SavedSearch is a search run on every schedule tick. Nil filter flags fall
// back to the search defaults.
type SavedSearch struct {
	Location        string `yaml:"location" mapstructure:"location"`
	BusinessType    string `yaml:"business_type" mapstructure:"business_type"`
	NoWebsite       *bool  `yaml:"no_website" mapstructure:"no_website"`
	SocialOnly      *bool  `yaml:"social_only" mapstructure:"social_only"`
	OutdatedSite    *bool  `yaml:"outdated_site" mapstructure:"outdated_site"`
	IndependentOnly *bool  `yaml:"independent_only" mapstructure:"independent_only"`
	VerifiedOwner   *bool  `yaml:"verified_owner" mapstructure:"verified_owner"`
	ActiveSocial    *bool  `yaml:"active_social" mapstructure:"active_social"`
}

// SearchConfig converts the saved search into a discovery search, applying
// filter defaults for unset flags.
func (s SavedSearch) SearchConfig() model.SearchConfig {
	sc := model.NewSearchConfig(s.Location, s.BusinessType)
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&sc.Filters.NoWebsite, s.NoWebsite)
	set(&sc.Filters.SocialOnly, s.SocialOnly)
	set(&sc.Filters.OutdatedSite, s.OutdatedSite)
	set(&sc.Filters.IndependentOnly, s.IndependentOnly)
	set(&sc.Filters.VerifiedOwner, s.VerifiedOwner)
	set(&sc.Filters.ActiveSocial, s.ActiveSocial)
	return sc
}

var validDrivers = map[string]bool{
	"memory":   true,
	"sqlite":   true,
	"postgres": true,
	"redis":    true,
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("discovery.qualify_threshold", 40)
	v.SetDefault("discovery.high_score_threshold", 80)
	v.SetDefault("discovery.acquire_timeout_secs", 15)
	v.SetDefault("discovery.enrich_timeout_secs", 10)
	v.SetDefault("discovery.enforce_extended_filters", true)
	v.SetDefault("discovery.chain_names", []string{
		"starbucks", "mcdonald's", "subway", "dunkin", "chipotle",
		"panera", "great clips", "supercuts", "applebee's", "olive garden",
	})
	v.SetDefault("classify.timeout_secs", 10)
	v.SetDefault("classify.user_agent", "Mozilla/5.0 (compatible; LeadScout/1.0)")
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.max_pages", 3)
	v.SetDefault("places.rate_limit", 5.0)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("demo.base_url", "https://example.com/demo")
	v.SetDefault("outreach.sender", "Alex")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("schedule.spec", "@every 24h")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values Load cannot default its way out of.
func (c *Config) Validate() error {
	var errs []string

	if !validDrivers[c.Store.Driver] {
		errs = append(errs, "unknown store driver "+c.Store.Driver)
	}
	if (c.Store.Driver == "postgres" || c.Store.Driver == "sqlite") && c.Store.DatabaseURL == "" {
		errs = append(errs, c.Store.Driver+" driver requires store.database_url")
	}
	if c.Store.Driver == "redis" && c.Store.RedisURL == "" {
		errs = append(errs, "redis driver requires store.redis_url")
	}

	d := c.Discovery
	if d.QualifyThreshold < 1 || d.QualifyThreshold > 100 {
		errs = append(errs, "discovery.qualify_threshold must be within 1-100")
	}
	if d.HighScoreThreshold < d.QualifyThreshold || d.HighScoreThreshold > 100 {
		errs = append(errs, "discovery.high_score_threshold must be within qualify_threshold-100")
	}
	if d.AcquireTimeoutSecs <= 0 || d.EnrichTimeoutSecs <= 0 || c.Classify.TimeoutSecs <= 0 {
		errs = append(errs, "timeouts must be positive")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
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
