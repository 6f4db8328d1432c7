package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"

	"github.com/NullMeDev/trendwire/pkg/store"
)

// Config holds application configuration
type Config struct {
	Version     string `yaml:"version"`
	SourcesPath string `yaml:"sources_path"`
	StatePath   string `yaml:"state_path"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Batch    BatchConfig    `yaml:"batch"`
	Topics   TopicsConfig   `yaml:"topics"`
	Tags     TagsConfig     `yaml:"tags"`
	Discord  DiscordConfig  `yaml:"discord"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the read API
type ServerConfig struct {
	Port       int     `yaml:"port"`
	AdminToken string  `yaml:"admin_token"`
	RateLimit  float64 `yaml:"rate_limit"`
	RateBurst  int     `yaml:"rate_burst"`
}

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// BatchConfig controls the periodic topic run
type BatchConfig struct {
	Cron         string        `yaml:"cron"`
	TagWindow    time.Duration `yaml:"tag_window"`
	TopicsToGet  int           `yaml:"topics_to_get"`
	Timeout      time.Duration `yaml:"timeout"`
	RunOnStartup bool          `yaml:"run_on_startup"`
}

// TopicsConfig tunes topic selection
type TopicsConfig struct {
	MinSourceCount int `yaml:"min_source_count"`
	MaxAttempts    int `yaml:"max_attempts"`
	PreviewLimit   int `yaml:"preview_limit"`
}

// TagsConfig tunes tag extraction
type TagsConfig struct {
	MinFrequency int      `yaml:"min_frequency"`
	MaxRelated   int      `yaml:"max_related"`
	SkipTerms    []string `yaml:"skip_terms"`
	EnglishOnly  bool     `yaml:"english_only"`
}

// DiscordConfig enables the topic digest
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether a digest can be posted
func (d DiscordConfig) Enabled() bool {
	return d.Token != "" && d.ChannelID != ""
}

// OpenAIConfig enables topic summaries
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Enabled reports whether summaries can be requested
func (o OpenAIConfig) Enabled() bool {
	return o.APIKey != ""
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// LoadConfig reads the YAML file, applies defaults and environment
// overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrConfigLoad, "read config file", err)
	}
	return ParseConfig(data)
}

// ParseConfig builds a validated config from YAML bytes
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewConfigError(ErrConfigLoad, "parse config yaml", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, NewConfigError(ErrConfigValidation, "validate config", err)
	}
	return cfg, nil
}

// DefaultConfig returns a config with only defaults and environment applied
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = AppVersion
	}
	if cfg.SourcesPath == "" {
		cfg.SourcesPath = DefaultSourcesPath
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultAPIPort
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = DefaultRateLimit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDBDriver
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = DefaultDBDSN
	}
	if cfg.Batch.Cron == "" {
		cfg.Batch.Cron = DefaultBatchCron
	}
	if cfg.Batch.TagWindow == 0 {
		cfg.Batch.TagWindow = DefaultTagWindow
	}
	if cfg.Batch.TopicsToGet == 0 {
		cfg.Batch.TopicsToGet = DefaultTopicsToGet
	}
	if cfg.Batch.Timeout == 0 {
		cfg.Batch.Timeout = DefaultBatchTimeout
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = DefaultLogDir
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	cfg.SourcesPath = GetEnvString(EnvSourcesPath, cfg.SourcesPath)
	cfg.Logging.Level = GetEnvString(EnvLogLevel, cfg.Logging.Level)
	cfg.Server.Port = GetEnvInt(EnvAPIPort, cfg.Server.Port)
	cfg.Server.AdminToken = GetEnvString(EnvAdminToken, cfg.Server.AdminToken)
	cfg.Database.Driver = GetEnvString(EnvDBDriver, cfg.Database.Driver)
	cfg.Database.DSN = GetEnvString(EnvDBDSN, cfg.Database.DSN)
	cfg.Batch.Cron = GetEnvString(EnvBatchCron, cfg.Batch.Cron)
	cfg.Batch.RunOnStartup = GetEnvBool(EnvRunOnStart, cfg.Batch.RunOnStartup)
	cfg.Discord.Token = GetEnvString(EnvDiscordTok, cfg.Discord.Token)
	cfg.Discord.ChannelID = GetEnvString(EnvDiscordChan, cfg.Discord.ChannelID)
	cfg.OpenAI.APIKey = GetEnvString(EnvOpenAIKey, cfg.OpenAI.APIKey)
}

func validate(cfg *Config) error {
	var issues []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Server.RateLimit < 0 || cfg.Server.RateBurst < 0 {
		issues = append(issues, "server.rate_limit and server.rate_burst must not be negative")
	}
	if cfg.Database.Driver != store.DriverSQLite && cfg.Database.Driver != store.DriverPostgres {
		issues = append(issues, fmt.Sprintf("database.driver must be %q or %q, got %q",
			store.DriverSQLite, store.DriverPostgres, cfg.Database.Driver))
	}
	if _, err := cron.ParseStandard(cfg.Batch.Cron); err != nil {
		issues = append(issues, fmt.Sprintf("batch.cron %q is invalid: %v", cfg.Batch.Cron, err))
	}
	if cfg.Batch.TopicsToGet < 1 {
		issues = append(issues, "batch.topics_to_get must be at least 1")
	}
	if cfg.Batch.TagWindow < 0 || cfg.Batch.Timeout < 0 {
		issues = append(issues, "batch durations must not be negative")
	}
	if cfg.Topics.MinSourceCount < 0 || cfg.Topics.MaxAttempts < 0 || cfg.Topics.PreviewLimit < 0 {
		issues = append(issues, "topics settings must not be negative")
	}
	if (cfg.Discord.Token == "") != (cfg.Discord.ChannelID == "") {
		issues = append(issues, "discord.token and discord.channel_id must be set together")
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
