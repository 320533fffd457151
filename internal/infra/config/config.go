package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	LLM          LLMConfig          `yaml:"llm"`
	Assistant    AssistantConfig    `yaml:"assistant"`
	Providers    ProvidersConfig    `yaml:"providers"`
	Geo          GeoConfig          `yaml:"geo"`
	Conversation ConversationConfig `yaml:"conversation"`
	Profiles     ProfilesConfig     `yaml:"profiles"`
	Auth         AuthConfig         `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists the browser origins allowed to call the API. Empty means any.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AssistantConfig tunes the conversation flow.
type AssistantConfig struct {
	Timezone           string `yaml:"timezone"`
	HistoryWindow      int    `yaml:"historyWindow"`
	HistoryTokenBudget int    `yaml:"historyTokenBudget"`
	SchedulePolicy     string `yaml:"schedulePolicy"`
	GraphPoints        int    `yaml:"graphPoints"`
	GraphStepHours     int    `yaml:"graphStepHours"`
}

// ProvidersConfig holds the outbound client settings shared by every data provider.
type ProvidersConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	RetryMax     int           `yaml:"retryMax"`
	RetryWaitMax time.Duration `yaml:"retryWaitMax"`
	Breaker      BreakerConfig `yaml:"breaker"`
	OpenWeather  APIConfig     `yaml:"openWeather"`
	Ambee        APIConfig     `yaml:"ambee"`
	Kakao        APIConfig     `yaml:"kakao"`
}

// BreakerConfig configures the per-provider circuit breakers.
type BreakerConfig struct {
	MaxRequests uint32        `yaml:"maxRequests"`
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
}

// APIConfig is a keyed upstream API. A blank key disables the provider.
type APIConfig struct {
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
	Language string `yaml:"language"`
}

// GeoConfig sizes the geocoding cache.
type GeoConfig struct {
	CacheSize int           `yaml:"cacheSize"`
	CacheTTL  time.Duration `yaml:"cacheTtl"`
}

// ConversationConfig controls how long chat sessions are kept.
type ConversationConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	Valkey        ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the session store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ProfilesConfig points at the user profile sources.
type ProfilesConfig struct {
	SeedPath string         `yaml:"seedPath"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AuthConfig enables bearer identity when a secret is set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

const (
	schedulePolicyPreferSchedule = "prefer_schedule"
	schedulePolicyPreferDevice   = "prefer_device"
)

// Load reads configuration from a YAML file and environment variables. A .env
// file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("ASSISTANT_TIMEZONE"); v != "" {
		cfg.Assistant.Timezone = v
	}
	if v := os.Getenv("ASSISTANT_HISTORY_WINDOW"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Assistant.HistoryWindow = parsed
		}
	}
	if v := os.Getenv("ASSISTANT_SCHEDULE_POLICY"); v != "" {
		cfg.Assistant.SchedulePolicy = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Providers.OpenWeather.APIKey = v
	}
	if v := os.Getenv("AMBEE_API_KEY"); v != "" {
		cfg.Providers.Ambee.APIKey = v
	}
	if v := os.Getenv("KAKAO_API_KEY"); v != "" {
		cfg.Providers.Kakao.APIKey = v
	}
	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Providers.Timeout = parsed
		}
	}
	if v := os.Getenv("PROVIDER_RETRY_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Providers.RetryMax = parsed
		}
	}
	if v := os.Getenv("CONVERSATION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Conversation.TTL = parsed
		}
	}
	if v := os.Getenv("CONVERSATION_VALKEY_ENABLED"); v != "" {
		cfg.Conversation.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CONVERSATION_VALKEY_ADDR"); v != "" {
		cfg.Conversation.Valkey.Addr = v
	}
	if v := os.Getenv("PROFILES_SEED_PATH"); v != "" {
		cfg.Profiles.SeedPath = v
	}
	if v := os.Getenv("PROFILES_POSTGRES_DSN"); v != "" {
		cfg.Profiles.Postgres.DSN = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/chat",
				},
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.5,
			Timeout:     20 * time.Second,
		},
		Assistant: AssistantConfig{
			Timezone:           "Asia/Seoul",
			HistoryWindow:      10,
			HistoryTokenBudget: 2000,
			SchedulePolicy:     schedulePolicyPreferSchedule,
			GraphPoints:        6,
			GraphStepHours:     3,
		},
		Providers: ProvidersConfig{
			Timeout:      5 * time.Second,
			RetryMax:     2,
			RetryWaitMax: 2 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests: 1,
				Interval:    time.Minute,
				Timeout:     30 * time.Second,
			},
			OpenWeather: APIConfig{
				BaseURL:  "https://api.openweathermap.org",
				Language: "kr",
			},
			Ambee: APIConfig{
				BaseURL: "https://api.ambeedata.com",
			},
			Kakao: APIConfig{
				BaseURL: "https://dapi.kakao.com",
			},
		},
		Geo: GeoConfig{
			CacheSize: 512,
			CacheTTL:  24 * time.Hour,
		},
		Conversation: ConversationConfig{
			TTL:           6 * time.Hour,
			SweepInterval: 10 * time.Minute,
			Valkey: ValkeyConfig{
				Enabled: false,
				Addr:    "",
				Prefix:  "lumee:conversation",
			},
		},
		Profiles: ProfilesConfig{
			Postgres: PostgresConfig{
				DSN:      "",
				MaxConns: 4,
				MinConns: 0,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if strings.TrimSpace(c.Assistant.Timezone) == "" {
		return errors.New("assistant.timezone cannot be empty")
	}
	if c.Assistant.HistoryWindow < 0 {
		return errors.New("assistant.historyWindow cannot be negative")
	}
	if c.Assistant.HistoryTokenBudget < 0 {
		return errors.New("assistant.historyTokenBudget cannot be negative")
	}
	switch c.Assistant.SchedulePolicy {
	case schedulePolicyPreferSchedule, schedulePolicyPreferDevice:
	default:
		return fmt.Errorf("assistant.schedulePolicy must be %q or %q", schedulePolicyPreferSchedule, schedulePolicyPreferDevice)
	}
	if c.Assistant.GraphPoints <= 0 {
		return errors.New("assistant.graphPoints must be positive")
	}
	if c.Assistant.GraphStepHours <= 0 {
		return errors.New("assistant.graphStepHours must be positive")
	}
	if c.Providers.Timeout <= 0 {
		return errors.New("providers.timeout must be positive")
	}
	if c.Providers.RetryMax < 0 {
		return errors.New("providers.retryMax cannot be negative")
	}
	if c.Geo.CacheSize <= 0 {
		return errors.New("geo.cacheSize must be positive")
	}
	if c.Conversation.TTL < 0 {
		return errors.New("conversation.ttl cannot be negative")
	}
	if c.Conversation.SweepInterval < 0 {
		return errors.New("conversation.sweepInterval cannot be negative")
	}
	if c.Conversation.Valkey.Enabled && strings.TrimSpace(c.Conversation.Valkey.Addr) == "" {
		return errors.New("conversation.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
