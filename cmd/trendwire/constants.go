package main

import "time"

// Application constants
const (
	AppName    = "trendwire"
	AppVersion = "1.0.0"
	AppAuthor  = "NullMeDev"

	// Default paths
	DefaultConfigPath  = "config/config.yml"
	DefaultSourcesPath = "config/sources.yml"
	DefaultStatePath   = "data/state.json"
	DefaultLogDir      = "logs"
	DefaultDBDriver    = "sqlite"
	DefaultDBDSN       = "data/trendwire.db"

	// Batch defaults
	DefaultBatchCron    = "@every 15m"
	DefaultTagWindow    = 7 * 24 * time.Hour
	DefaultTopicsToGet  = 2
	DefaultBatchTimeout = 2 * time.Minute
	RecentBatchLimit    = 24 * 4

	// API defaults
	DefaultAPIPort       = 8080
	DefaultRateLimit     = 10.0
	DefaultRateBurst     = 20
	MaxArticlesPerQuery  = 100
	SourceArticleLimit   = 20
	DefaultCacheDuration = 5 * time.Minute
	MaxCacheSize         = 100
	ShutdownTimeout      = 10 * time.Second

	// Notifications
	DefaultOpenAIModel = "gpt-3.5-turbo"
	DigestHeroLinks    = 3
	SummaryTimeout     = 30 * time.Second

	// Sources reload
	SourcesCheckInterval = time.Minute
)

// Status codes
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusStarting = "starting"
	StatusRunning  = "running"
)

// Event types
const (
	EventInit     = "init"
	EventSnapshot = "snapshot"
)

// Cache keys
const (
	CacheKeySnapshot = "snapshot"
	CacheKeyPool     = "pool"
	CacheKeyToday    = "today"
)

// Environment variables
const (
	EnvConfigPath  = "TRENDWIRE_CONFIG"
	EnvSourcesPath = "TRENDWIRE_SOURCES"
	EnvLogLevel    = "TRENDWIRE_LOG_LEVEL"
	EnvAPIPort     = "TRENDWIRE_API_PORT"
	EnvDBDriver    = "TRENDWIRE_DB_DRIVER"
	EnvDBDSN       = "TRENDWIRE_DB_DSN"
	EnvAdminToken  = "TRENDWIRE_ADMIN_TOKEN"
	EnvBatchCron   = "TRENDWIRE_BATCH_CRON"
	EnvRunOnStart  = "TRENDWIRE_RUN_ON_STARTUP"
	EnvDiscordTok  = "DISCORD_TOKEN"
	EnvDiscordChan = "DISCORD_CHANNEL_ID"
	EnvOpenAIKey   = "OPENAI_API_KEY"
)

// HTTP headers
const (
	HeaderAdminToken = "X-Trendwire-Token"
)

// Error messages
const (
	ErrMsgNoSnapshot  = "no_snapshot"
	ErrMsgRateLimit   = "rate limit exceeded"
	ErrMsgNotFound    = "resource not found"
	ErrMsgInternal    = "internal server error"
	ErrMsgAuthFailed  = "authentication failed"
	ErrMsgBadRequest  = "bad request"
	ErrMsgBatchActive = "batch already running"
)
