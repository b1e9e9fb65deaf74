package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Crawl    CrawlConfig    `yaml:"crawl"`
	Retry    RetryConfig    `yaml:"retry"`
	HTTP     HTTPConfig     `yaml:"http"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Merge    MergeConfig    `yaml:"merge"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds storage connection settings.
// For the sqlite driver DSN is a file path (or ":memory:").
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CrawlConfig holds settings of the initial pass.
type CrawlConfig struct {
	Workers           int           `yaml:"workers"            env:"CRAWL_WORKERS"            env-default:"5"`
	BatchSize         int           `yaml:"batch_size"         env:"CRAWL_BATCH_SIZE"         env-default:"50"`
	TranslateDelay    time.Duration `yaml:"translate_delay"    env:"CRAWL_TRANSLATE_DELAY"    env-default:"300ms"`
	DictionaryTimeout time.Duration `yaml:"dictionary_timeout" env:"CRAWL_DICTIONARY_TIMEOUT" env-default:"15s"`
	TranslateTimeout  time.Duration `yaml:"translate_timeout"  env:"CRAWL_TRANSLATE_TIMEOUT"  env-default:"10s"`
	GlossMaxLen       int           `yaml:"gloss_max_len"      env:"CRAWL_GLOSS_MAX_LEN"      env-default:"200"`
	FailedFile        string        `yaml:"failed_file"        env:"CRAWL_FAILED_FILE"        env-default:"failed_words.txt"`
	WordList          string        `yaml:"word_list"          env:"CRAWL_WORD_LIST"          env-default:"https://raw.githubusercontent.com/first20hours/google-10000-english/master/google-10000-english.txt"`
	ProgressEvery     int           `yaml:"progress_every"     env:"CRAWL_PROGRESS_EVERY"     env-default:"100"`
}

// RetryConfig holds settings of the retry pass.
type RetryConfig struct {
	Workers           int           `yaml:"workers"            env:"RETRY_WORKERS"            env-default:"1"`
	BatchSize         int           `yaml:"batch_size"         env:"RETRY_BATCH_SIZE"         env-default:"100"`
	TranslateDelay    time.Duration `yaml:"translate_delay"    env:"RETRY_TRANSLATE_DELAY"    env-default:"700ms"`
	StrategyDelay     time.Duration `yaml:"strategy_delay"     env:"RETRY_STRATEGY_DELAY"     env-default:"500ms"`
	DictionaryTimeout time.Duration `yaml:"dictionary_timeout" env:"RETRY_DICTIONARY_TIMEOUT" env-default:"15s"`
	TranslateTimeout  time.Duration `yaml:"translate_timeout"  env:"RETRY_TRANSLATE_TIMEOUT"  env-default:"10s"`
	InputFile         string        `yaml:"input_file"         env:"RETRY_INPUT_FILE"         env-default:"failed_words.txt"`
	StillFailedFile   string        `yaml:"still_failed_file"  env:"RETRY_STILL_FAILED_FILE"  env-default:"still_failed_words.txt"`
	ProgressEvery     int           `yaml:"progress_every"     env:"RETRY_PROGRESS_EVERY"     env-default:"50"`
}

// HTTPConfig holds outbound HTTP client settings shared by all upstreams.
type HTTPConfig struct {
	MaxRetries        int           `yaml:"max_retries"         env:"HTTP_MAX_RETRIES"         env-default:"3"`
	BackoffBase       time.Duration `yaml:"backoff_base"        env:"HTTP_BACKOFF_BASE"        env-default:"500ms"`
	RetryStatuses     []int         `yaml:"retry_statuses"      env:"HTTP_RETRY_STATUSES"      env-default:"429,500,502,503,504"`
	UserAgent         string        `yaml:"user_agent"          env:"HTTP_USER_AGENT"          env-default:"envi-dictionary/1.0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"HTTP_REQUESTS_PER_SECOND" env-default:"0"`
	Burst             int           `yaml:"burst"               env:"HTTP_BURST"               env-default:"1"`
}

// BreakerConfig holds circuit breaker settings applied to every upstream.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" env:"BREAKER_CONSECUTIVE_FAILURES" env-default:"10"`
	OpenTimeout         time.Duration `yaml:"open_timeout"         env:"BREAKER_OPEN_TIMEOUT"         env-default:"30s"`
}

// UpstreamConfig holds base URLs of the public APIs.
type UpstreamConfig struct {
	DictionaryURL string `yaml:"dictionary_url" env:"UPSTREAM_DICTIONARY_URL" env-default:"https://api.dictionaryapi.dev"`
	TranslateURL  string `yaml:"translate_url"  env:"UPSTREAM_TRANSLATE_URL"  env-default:"https://translate.googleapis.com"`
	MyMemoryURL   string `yaml:"mymemory_url"   env:"UPSTREAM_MYMEMORY_URL"   env-default:"https://api.mymemory.translated.net"`
	WiktionaryURL string `yaml:"wiktionary_url" env:"UPSTREAM_WIKTIONARY_URL" env-default:"https://en.wiktionary.org"`
}

// MergeConfig holds settings of the offline dump merge.
type MergeConfig struct {
	ENFile      string `yaml:"en_file"      env:"MERGE_EN_FILE"      env-default:"data/simple-extract.jsonl"`
	VIFile      string `yaml:"vi_file"      env:"MERGE_VI_FILE"      env-default:"data/vi-extract.jsonl"`
	CommitEvery int    `yaml:"commit_every" env:"MERGE_COMMIT_EVERY" env-default:"1000"`
}

// MetricsConfig holds metrics export settings.
// An empty Textfile disables export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}
