package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// TestLoadConfig_Defaults tests loading configuration with default values
func TestLoadConfig_Defaults(t *testing.T) {
	// Load config without a file (should use defaults)
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify server defaults
	assert.Equal(t, 8082, config.Server.Port)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)

	// Verify Kafka defaults
	assert.Equal(t, []string{"localhost:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "canonical_games", config.Kafka.Topic)

	// Verify Redis defaults
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, "", config.Redis.Password)
	assert.Equal(t, 0, config.Redis.DB)
	assert.Equal(t, 24*time.Hour, config.Redis.TTL)

	// Verify response cache defaults
	assert.Equal(t, "responses.db", config.Cache.Path)

	// Verify fetch defaults
	assert.Equal(t, 64, config.Fetch.MaxAttempts)
	assert.Equal(t, 30*time.Second, config.Fetch.AttemptTimeout)
	assert.Equal(t, 250*time.Millisecond, config.Fetch.BackoffBase)
	assert.Equal(t, 30*time.Second, config.Fetch.BackoffCap)
	assert.Empty(t, config.Fetch.FastFailDomains)
	assert.Equal(t, 5*time.Second, config.Fetch.FastFailTimeout)
	assert.Equal(t, 3, config.Fetch.FastFailAttempts)
	assert.Equal(t, "https://archive.org/wayback/available", config.Fetch.WaybackURL)
	assert.Equal(t, time.Hour, config.Fetch.DefaultTTL)

	// Verify logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

// TestLoadConfig_WithFile tests loading configuration from file
func TestLoadConfig_WithFile(t *testing.T) {
	// Create temporary config file
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	configContent := `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 45s

kafka:
  brokers:
    - broker1:9092
    - broker2:9092
  topic: test_topic

redis:
  addr: redis:6379
  password: test_password
  db: 1
  ttl: 48h

cache:
  path: /var/lib/reconciler/responses.db

fetch:
  max_attempts: 16
  attempt_timeout: 10s
  backoff_base: 100ms
  backoff_cap: 5s
  fast_fail_domains:
    - stats.example.com
  fast_fail_timeout: 2s
  fast_fail_attempts: 2
  default_ttl: 30m

pipeline:
  leagues:
    - afl
    - nfl
  start_year: 2020
  end_year: 2023
  feeds:
    - name: footy-feed
      url: https://feeds.example.com/{league}/{year}.json
      ttl_rules:
        - pattern: /archive/
          ttl: 0s
        - pattern: \.json$
          ttl: 1h
    - name: scoreboard-api
      url: https://scores.example.com/api/{league}/{year}

logging:
  level: debug
  format: console
`

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	tmpFile.Close()

	// Load config from file
	config, err := LoadConfig(tmpFile.Name())

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify server config
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 45*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, config.Server.WriteTimeout)

	// Verify Kafka config
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "test_topic", config.Kafka.Topic)

	// Verify Redis config
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "test_password", config.Redis.Password)
	assert.Equal(t, 1, config.Redis.DB)
	assert.Equal(t, 48*time.Hour, config.Redis.TTL)

	// Verify response cache config
	assert.Equal(t, "/var/lib/reconciler/responses.db", config.Cache.Path)

	// Verify fetch config
	assert.Equal(t, 16, config.Fetch.MaxAttempts)
	assert.Equal(t, 10*time.Second, config.Fetch.AttemptTimeout)
	assert.Equal(t, 100*time.Millisecond, config.Fetch.BackoffBase)
	assert.Equal(t, 5*time.Second, config.Fetch.BackoffCap)
	assert.Equal(t, []string{"stats.example.com"}, config.Fetch.FastFailDomains)
	assert.Equal(t, 2*time.Second, config.Fetch.FastFailTimeout)
	assert.Equal(t, 2, config.Fetch.FastFailAttempts)
	assert.Equal(t, 30*time.Minute, config.Fetch.DefaultTTL)

	// Verify pipeline config
	assert.Equal(t, []string{"afl", "nfl"}, config.Pipeline.Leagues)
	assert.Equal(t, 2020, config.Pipeline.StartYear)
	assert.Equal(t, 2023, config.Pipeline.EndYear)
	require.Len(t, config.Pipeline.Feeds, 2)
	assert.Equal(t, "footy-feed", config.Pipeline.Feeds[0].Name)
	assert.Equal(t, "https://feeds.example.com/{league}/{year}.json", config.Pipeline.Feeds[0].URL)
	require.Len(t, config.Pipeline.Feeds[0].TTLRules, 2)
	assert.Equal(t, "/archive/", config.Pipeline.Feeds[0].TTLRules[0].Pattern)
	assert.Equal(t, time.Duration(0), config.Pipeline.Feeds[0].TTLRules[0].TTL)
	assert.Equal(t, time.Hour, config.Pipeline.Feeds[0].TTLRules[1].TTL)
	assert.Equal(t, "scoreboard-api", config.Pipeline.Feeds[1].Name)

	// Verify logging config
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
}

// TestLoadConfig_InvalidFile tests loading with non-existent file
func TestLoadConfig_InvalidFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_MalformedFile tests loading with malformed YAML
func TestLoadConfig_MalformedFile(t *testing.T) {
	// Create temporary config file with malformed YAML
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	malformedContent := `
server:
  port: invalid_port
  read_timeout: not_a_duration
`

	_, err = tmpFile.WriteString(malformedContent)
	require.NoError(t, err)
	tmpFile.Close()

	// Load config from file
	config, err := LoadConfig(tmpFile.Name())

	// Should error on unmarshal
	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_PartialFile tests loading with partial configuration
func TestLoadConfig_PartialFile(t *testing.T) {
	// Create temporary config file with partial config
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	partialContent := `
server:
  port: 9090

pipeline:
  leagues:
    - afl
  start_year: 2022
  end_year: 2022

# Other configs will use defaults
`

	_, err = tmpFile.WriteString(partialContent)
	require.NoError(t, err)
	tmpFile.Close()

	// Load config from file
	config, err := LoadConfig(tmpFile.Name())

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify overridden values
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, []string{"afl"}, config.Pipeline.Leagues)

	// Verify defaults are still used for non-specified values
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, "canonical_games", config.Kafka.Topic)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 64, config.Fetch.MaxAttempts)
}

// TestLoadConfig_EnvironmentVariables tests environment variable overrides
func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	os.Setenv("DATA_RECONCILER_SERVER_PORT", "7777")
	os.Setenv("DATA_RECONCILER_REDIS_ADDR", "env-redis:6379")
	os.Setenv("DATA_RECONCILER_KAFKA_TOPIC", "env_topic")
	defer func() {
		os.Unsetenv("DATA_RECONCILER_SERVER_PORT")
		os.Unsetenv("DATA_RECONCILER_REDIS_ADDR")
		os.Unsetenv("DATA_RECONCILER_KAFKA_TOPIC")
	}()

	// Load config (env vars should override defaults)
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify environment variables were used
	assert.Equal(t, 7777, config.Server.Port)
	assert.Equal(t, "env-redis:6379", config.Redis.Addr)
	assert.Equal(t, "env_topic", config.Kafka.Topic)
}

// TestToFetchConfig tests conversion to the fetch layer's tuning struct
func TestToFetchConfig(t *testing.T) {
	fetchConfig := FetchConfig{
		MaxAttempts:      8,
		AttemptTimeout:   12 * time.Second,
		BackoffBase:      200 * time.Millisecond,
		BackoffCap:       10 * time.Second,
		FastFailDomains:  []string{"aux.example.com"},
		FastFailTimeout:  3 * time.Second,
		FastFailAttempts: 2,
		WaybackURL:       "https://archive.example.com/available",
		DefaultTTL:       2 * time.Hour,
		UserAgent:        "test-agent/1.0",
	}

	cfg := fetchConfig.ToFetchConfig()

	assert.Equal(t, 8, cfg.MaxAttempts)
	assert.Equal(t, 12*time.Second, cfg.AttemptTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, 10*time.Second, cfg.BackoffCap)
	assert.Equal(t, []string{"aux.example.com"}, cfg.FastFailDomains)
	assert.Equal(t, 3*time.Second, cfg.FastFailTimeout)
	assert.Equal(t, 2, cfg.FastFailAttempts)
	assert.Equal(t, "https://archive.example.com/available", cfg.WaybackURL)
	assert.Equal(t, 2*time.Hour, cfg.DefaultTTL)
	assert.Equal(t, "test-agent/1.0", cfg.UserAgent)
}

// TestTTLRules tests compilation of feed-declared cache-expiry rules
func TestTTLRules(t *testing.T) {
	pipeline := PipelineConfig{Feeds: []FeedConfig{
		{
			Name: "footy-feed",
			URL:  "https://feeds.example.com/{league}/{year}.json",
			TTLRules: []TTLRuleConfig{
				{Pattern: `/archive/`, TTL: 0},
				{Pattern: `\.json$`, TTL: time.Hour},
			},
		},
		{
			Name: "scoreboard-api",
			URL:  "https://scores.example.com/api/{league}/{year}",
			TTLRules: []TTLRuleConfig{
				{Pattern: `/api/`, TTL: 30 * time.Minute},
			},
		},
	}}

	rules, err := pipeline.TTLRules()

	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.True(t, rules[0].Pattern.MatchString("https://feeds.example.com/archive/afl/2023.json"))
	assert.Equal(t, time.Duration(0), rules[0].TTL)
	assert.True(t, rules[1].Pattern.MatchString("https://feeds.example.com/afl/2023.json"))
	assert.Equal(t, time.Hour, rules[1].TTL)
	assert.Equal(t, 30*time.Minute, rules[2].TTL)
}

// TestTTLRules_InvalidPattern tests that a bad regexp is a config error
func TestTTLRules_InvalidPattern(t *testing.T) {
	pipeline := PipelineConfig{Feeds: []FeedConfig{
		{Name: "footy-feed", TTLRules: []TTLRuleConfig{{Pattern: `([`, TTL: time.Hour}}},
	}}

	rules, err := pipeline.TTLRules()

	assert.Error(t, err)
	assert.Nil(t, rules)
	assert.Contains(t, err.Error(), "footy-feed")
}

// TestTTLRules_NoFeeds tests the empty workload case
func TestTTLRules_NoFeeds(t *testing.T) {
	pipeline := PipelineConfig{}

	rules, err := pipeline.TTLRules()

	require.NoError(t, err)
	assert.Empty(t, rules)
}

// TestLeagueList tests league name validation and conversion
func TestLeagueList(t *testing.T) {
	pipeline := PipelineConfig{Leagues: []string{"AFL", "nfl", "Hkjc"}}

	leagues, err := pipeline.LeagueList()

	require.NoError(t, err)
	assert.Equal(t, []models.League{models.LeagueAFL, models.LeagueNFL, models.LeagueHKJC}, leagues)
}

// TestLeagueList_UnknownLeague tests that unknown leagues are rejected
func TestLeagueList_UnknownLeague(t *testing.T) {
	pipeline := PipelineConfig{Leagues: []string{"afl", "curling"}}

	leagues, err := pipeline.LeagueList()

	assert.Error(t, err)
	assert.Nil(t, leagues)
	assert.Contains(t, err.Error(), "curling")
}

// TestYearList tests season range expansion
func TestYearList(t *testing.T) {
	tests := []struct {
		name     string
		pipeline PipelineConfig
		want     []int
	}{
		{
			name:     "Multi-year range",
			pipeline: PipelineConfig{StartYear: 2020, EndYear: 2023},
			want:     []int{2020, 2021, 2022, 2023},
		},
		{
			name:     "Single year",
			pipeline: PipelineConfig{StartYear: 2022, EndYear: 2022},
			want:     []int{2022},
		},
		{
			name:     "Unset range",
			pipeline: PipelineConfig{},
			want:     nil,
		},
		{
			name:     "Inverted range",
			pipeline: PipelineConfig{StartYear: 2023, EndYear: 2020},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pipeline.YearList())
		})
	}
}
