package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/hybridchat/hchat"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Session    SessionConfig    `mapstructure:"session"`
	Learned    LearnedConfig    `mapstructure:"learned"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
	Canned     CannedConfig     `mapstructure:"canned"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig stores HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // "libsql" or "supabase"
	DSN       string `mapstructure:"dsn"`
	AuthToken string `mapstructure:"auth_token"`

	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
}

// SessionConfig stores the session store driver and its retention policy.
type SessionConfig struct {
	Driver    string        `mapstructure:"driver"`     // "memory" or "redis"
	MaxTurns  int           `mapstructure:"max_turns"`  // truncation kicks in above this length
	KeepTurns int           `mapstructure:"keep_turns"` // trailing window kept on truncation
	TTL       time.Duration `mapstructure:"ttl"`        // redis only

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// LearnedConfig stores learned-answer matching settings.
type LearnedConfig struct {
	Threshold      float64 `mapstructure:"threshold"`
	DegradeOnError bool    `mapstructure:"degrade_on_error"` // treat store outages as "no match"
}

// ClassifierConfig stores the intent classifier artifacts.
type ClassifierConfig struct {
	Backend       string `mapstructure:"backend"` // "sequence", "hugot", "none"
	IntentsPath   string `mapstructure:"intents_path"`
	ModelPath     string `mapstructure:"model_path"`
	TokenizerPath string `mapstructure:"tokenizer_path"`
	LabelsPath    string `mapstructure:"labels_path"`
	MaxSeqLen     int    `mapstructure:"max_seq_len"`
	HugotModel    string `mapstructure:"hugot_model"` // directory with model.onnx + tokenizer.json
}

// EscalationConfig stores the keyword override.
type EscalationConfig struct {
	Keywords []string `mapstructure:"keywords"`
	Response string   `mapstructure:"response"`
}

// FallbackConfig stores the remote generation service settings.
type FallbackConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"` // supplied via HCHAT_FALLBACK_TOKEN
	Timeout      time.Duration `mapstructure:"timeout"`
	Retries      int           `mapstructure:"retries"` // retries on 503 only
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`

	CacheEnabled    bool `mapstructure:"cache_enabled"`
	CacheCapacity   int  `mapstructure:"cache_capacity"`
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds"`

	RateLimitEnabled    bool          `mapstructure:"rate_limit_enabled"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"`
}

// CannedConfig stores the last-resort replies.
type CannedConfig struct {
	Responses []string `mapstructure:"responses"`
}

// LogConfig stores logging settings.
type LogConfig struct {
	Level   string `mapstructure:"level"`  // zerolog level name
	Format  string `mapstructure:"format"` // "console" or "json"
	Tracing bool   `mapstructure:"tracing"`
}

// DefaultEscalationKeywords are matched as case-insensitive substrings.
var DefaultEscalationKeywords = []string{"manager", "supervisor", "human support"}

const DefaultEscalationResponse = "I understand you need human assistance. My manager will help you shortly."

// DefaultCannedResponses keep the conversation alive when nothing else answers.
var DefaultCannedResponses = []string{
	"Hmm, I’m thinking… can you give me more details?",
	"I hear you. Can you elaborate?",
	"Interesting… tell me more!",
	"I’m following you. What happened next?",
	"Could you clarify that for me?",
	"I’m listening, please continue.",
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.AutomaticEnv()
	// fallback.token becomes HCHAT_FALLBACK_TOKEN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file in the search path; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	AppConfig = cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", internal.DefaultServerAddr)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", internal.DefaultDatabaseType)
	v.SetDefault("database.dsn", internal.DefaultDatabaseDSN)
	v.SetDefault("database.auth_token", "")
	v.SetDefault("database.supabase_url", "")
	v.SetDefault("database.supabase_key", "")

	// Sliding window: keep the last 8 turns.
	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.max_turns", 8)
	v.SetDefault("session.keep_turns", 8)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)

	v.SetDefault("learned.threshold", 0.6)
	v.SetDefault("learned.degrade_on_error", false)

	v.SetDefault("classifier.backend", "sequence")
	v.SetDefault("classifier.intents_path", internal.DefaultIntentsPath)
	v.SetDefault("classifier.model_path", filepath.Join(internal.DefaultModelDir, "model.json"))
	v.SetDefault("classifier.tokenizer_path", filepath.Join(internal.DefaultModelDir, "tokenizer.json"))
	v.SetDefault("classifier.labels_path", filepath.Join(internal.DefaultModelDir, "labels.json"))
	v.SetDefault("classifier.max_seq_len", 20)
	v.SetDefault("classifier.hugot_model", "")

	v.SetDefault("escalation.keywords", DefaultEscalationKeywords)
	v.SetDefault("escalation.response", DefaultEscalationResponse)

	v.SetDefault("fallback.enabled", true)
	v.SetDefault("fallback.url", "https://api-inference.huggingface.co/models/facebook/blenderbot-400M-distill")
	v.SetDefault("fallback.token", "")
	v.SetDefault("fallback.timeout", "10s")
	v.SetDefault("fallback.retries", 1)
	v.SetDefault("fallback.retry_backoff", "500ms")
	v.SetDefault("fallback.cache_enabled", true)
	v.SetDefault("fallback.cache_capacity", 512)
	v.SetDefault("fallback.cache_ttl_seconds", 600)
	v.SetDefault("fallback.rate_limit_enabled", true)
	v.SetDefault("fallback.rate_limit_capacity", 10)
	v.SetDefault("fallback.rate_limit_refill_rate", "1s")

	v.SetDefault("canned.responses", DefaultCannedResponses)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.tracing", true)
}
