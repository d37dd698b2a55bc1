package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/data-reconciler-service/internal/fetch"
	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// Config holds all configuration for data-reconciler-service. Fields carry
// mapstructure tags so viper's snake_case keys bind to the CamelCase fields.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"` // Topic to publish to (canonical_games)
}

// RedisConfig holds Redis configuration for the canonical-game cache
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CacheConfig holds the persistent HTTP response cache configuration
type CacheConfig struct {
	Path string `mapstructure:"path"` // SQLite database file
}

// FetchConfig holds the resilient HTTP fetch layer configuration
type FetchConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	AttemptTimeout   time.Duration `mapstructure:"attempt_timeout"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	BackoffCap       time.Duration `mapstructure:"backoff_cap"`
	FastFailDomains  []string      `mapstructure:"fast_fail_domains"`
	FastFailTimeout  time.Duration `mapstructure:"fast_fail_timeout"`
	FastFailAttempts int           `mapstructure:"fast_fail_attempts"`
	WaybackURL       string        `mapstructure:"wayback_url"`
	DefaultTTL       time.Duration `mapstructure:"default_ttl"`
	UserAgent        string        `mapstructure:"user_agent"`
}

// PipelineConfig holds the reconciliation workload: which leagues and seasons
// to combine, and which feeds supply them. The same season range applies to
// every configured league; feed order is merge priority.
type PipelineConfig struct {
	Leagues   []string     `mapstructure:"leagues"`
	StartYear int          `mapstructure:"start_year"`
	EndYear   int          `mapstructure:"end_year"`
	Feeds     []FeedConfig `mapstructure:"feeds"`
}

// FeedConfig identifies one upstream season feed. URL is a template with
// {league} and {year} placeholders; TTLRules declare how long the feed's
// responses stay valid in the response cache.
type FeedConfig struct {
	Name     string          `mapstructure:"name"`
	URL      string          `mapstructure:"url"`
	TTLRules []TTLRuleConfig `mapstructure:"ttl_rules"`
}

// TTLRuleConfig maps a URL regexp to a cache lifetime; TTL 0 means entries
// matching the pattern never expire.
type TTLRuleConfig struct {
	Pattern string        `mapstructure:"pattern"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "canonical_games")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("cache.path", "responses.db")

	v.SetDefault("fetch.max_attempts", 64)
	v.SetDefault("fetch.attempt_timeout", 30*time.Second)
	v.SetDefault("fetch.backoff_base", 250*time.Millisecond)
	v.SetDefault("fetch.backoff_cap", 30*time.Second)
	v.SetDefault("fetch.fast_fail_domains", []string{})
	v.SetDefault("fetch.fast_fail_timeout", 5*time.Second)
	v.SetDefault("fetch.fast_fail_attempts", 3)
	v.SetDefault("fetch.wayback_url", "https://archive.org/wayback/available")
	v.SetDefault("fetch.default_ttl", time.Hour)
	v.SetDefault("fetch.user_agent", "")

	v.SetDefault("pipeline.leagues", []string{})
	v.SetDefault("pipeline.start_year", 0)
	v.SetDefault("pipeline.end_year", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("DATA_RECONCILER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToFetchConfig converts config to the fetch layer's tuning struct
func (c *FetchConfig) ToFetchConfig() fetch.Config {
	return fetch.Config{
		MaxAttempts:      c.MaxAttempts,
		AttemptTimeout:   c.AttemptTimeout,
		BackoffBase:      c.BackoffBase,
		BackoffCap:       c.BackoffCap,
		FastFailDomains:  c.FastFailDomains,
		FastFailTimeout:  c.FastFailTimeout,
		FastFailAttempts: c.FastFailAttempts,
		WaybackURL:       c.WaybackURL,
		DefaultTTL:       c.DefaultTTL,
		UserAgent:        c.UserAgent,
	}
}

// LeagueList validates and converts the configured league names. Unknown
// names are rejected rather than silently skipped.
func (c *PipelineConfig) LeagueList() ([]models.League, error) {
	leagues := make([]models.League, 0, len(c.Leagues))
	for _, name := range c.Leagues {
		league := models.League(strings.ToLower(name))
		if !league.Valid() {
			return nil, fmt.Errorf("unknown league %q", name)
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

// TTLRules compiles every feed's cache-expiry rules into the fetch layer's
// form, in feed (priority) order. A pattern that does not compile is a
// configuration error, not a silently dropped rule.
func (c *PipelineConfig) TTLRules() ([]fetch.TTLRule, error) {
	var rules []fetch.TTLRule
	for _, f := range c.Feeds {
		for _, r := range f.TTLRules {
			pattern, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("feed %s: invalid ttl pattern %q: %w", f.Name, r.Pattern, err)
			}
			rules = append(rules, fetch.TTLRule{Pattern: pattern, TTL: r.TTL})
		}
	}
	return rules, nil
}

// YearList expands the configured season range.
func (c *PipelineConfig) YearList() []int {
	if c.StartYear == 0 || c.EndYear < c.StartYear {
		return nil
	}
	years := make([]int, 0, c.EndYear-c.StartYear+1)
	for y := c.StartYear; y <= c.EndYear; y++ {
		years = append(years, y)
	}
	return years
}
