package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Transcription providers
const (
	ProviderAssemblyAI = "assemblyai"
	ProviderDeepgram   = "deepgram"
)

// Summary providers
const (
	SummaryPlaceholder = "placeholder"
	SummaryGroq        = "groq"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	Browser       BrowserConfig
	Join          JoinConfig
	Transcription TranscriptionConfig
	Summary       SummaryConfig
	LiveKit       LiveKitConfig
	Storage       StorageConfig
	Redis         RedisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"3001"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`
	MetricsEnabled  bool     `envconfig:"METRICS_ENABLED" default:"true"`
}

// BrowserConfig controls the headless browser used as the automation handle
type BrowserConfig struct {
	Bin               string        `envconfig:"BROWSER_BIN"`
	Headless          bool          `envconfig:"BROWSER_HEADLESS" default:"true"`
	NavigationTimeout time.Duration `envconfig:"BROWSER_NAVIGATION_TIMEOUT" default:"45s"`
}

// JoinConfig holds join strategy settings
type JoinConfig struct {
	Timeout            time.Duration `envconfig:"JOIN_TIMEOUT" default:"60s"`
	BotName            string        `envconfig:"JOIN_BOT_NAME" default:"Meeting Bot"`
	FailureScreenshots bool          `envconfig:"JOIN_FAILURE_SCREENSHOTS" default:"false"`
}

// TranscriptionConfig holds real-time transcription backend settings
type TranscriptionConfig struct {
	Provider   string           `envconfig:"TRANSCRIPTION_PROVIDER" default:"assemblyai"`
	SampleRate int              `envconfig:"TRANSCRIPTION_SAMPLE_RATE" default:"16000"`
	Assembly   AssemblyAIConfig `ignored:"true"`
	Deepgram   DeepgramConfig   `ignored:"true"`
}

// AssemblyAIConfig holds AssemblyAI credentials.
// APIKey, when set, is used to mint a short-lived token per session instead of Token.
type AssemblyAIConfig struct {
	Token    string        `envconfig:"ASSEMBLYAI_API_TOKEN"`
	APIKey   string        `envconfig:"ASSEMBLYAI_API_KEY"`
	TokenTTL time.Duration `envconfig:"ASSEMBLYAI_TOKEN_TTL" default:"1h"`
}

// DeepgramConfig holds Deepgram streaming settings
type DeepgramConfig struct {
	APIKey   string `envconfig:"DEEPGRAM_API_KEY"`
	Model    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	Language string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`
}

// SummaryConfig selects the summary collaborator
type SummaryConfig struct {
	Provider string     `envconfig:"SUMMARY_PROVIDER" default:"placeholder"`
	Groq     GroqConfig `ignored:"true"`
}

// GroqConfig holds Groq API settings
type GroqConfig struct {
	APIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL string `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"GROQ_MODEL" default:"llama-3.1-70b-versatile"`
}

// LiveKitConfig holds LiveKit settings for the livekit join strategy.
// The strategy is enabled only when MeetHost is set.
type LiveKitConfig struct {
	URL       string `envconfig:"LIVEKIT_URL"`
	APIKey    string `envconfig:"LIVEKIT_API_KEY"`
	APISecret string `envconfig:"LIVEKIT_API_SECRET"`
	MeetHost  string `envconfig:"LIVEKIT_MEET_HOST"`
}

// StorageConfig holds object storage configuration for join diagnostics
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-bot"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string `envconfig:"STORAGE_PUBLIC_URL"`
}

// RedisConfig holds Redis configuration for lifecycle event publishing
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Channel  string `envconfig:"REDIS_EVENTS_CHANNEL" default:"meeting-bot:sessions"`
}

// Load loads configuration from .env (if present) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	var cfg Config

	// envconfig prefixes nested structs with the field name, so each section is
	// processed on its own to keep the flat variable names.
	sections := []interface{}{
		&cfg.Server,
		&cfg.Browser,
		&cfg.Join,
		&cfg.Transcription,
		&cfg.Transcription.Assembly,
		&cfg.Transcription.Deepgram,
		&cfg.Summary,
		&cfg.Summary.Groq,
		&cfg.LiveKit,
		&cfg.Storage,
		&cfg.Redis,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.Transcription.Provider = strings.ToLower(cfg.Transcription.Provider)
	cfg.Summary.Provider = strings.ToLower(cfg.Summary.Provider)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Transcription.Provider {
	case ProviderAssemblyAI:
		if c.Transcription.Assembly.Token == "" && c.Transcription.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_TOKEN or ASSEMBLYAI_API_KEY is required")
		}
	case ProviderDeepgram:
		if c.Transcription.Deepgram.APIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported TRANSCRIPTION_PROVIDER %q", c.Transcription.Provider)
	}

	switch c.Summary.Provider {
	case SummaryPlaceholder:
	case SummaryGroq:
		if c.Summary.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when SUMMARY_PROVIDER=groq")
		}
	default:
		return fmt.Errorf("unsupported SUMMARY_PROVIDER %q", c.Summary.Provider)
	}

	if c.LiveKit.MeetHost != "" && (c.LiveKit.URL == "" || c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "") {
		return fmt.Errorf("LIVEKIT_URL, LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required when LIVEKIT_MEET_HOST is set")
	}

	if c.Join.Timeout <= 0 {
		return fmt.Errorf("JOIN_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// StorageEnabled reports whether object storage is configured
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != ""
}

// RedisEnabled reports whether lifecycle events should be published to Redis
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
