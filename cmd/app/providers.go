package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/lumee/internal/domain/assistant"
	"github.com/yanqian/lumee/internal/domain/auth"
	"github.com/yanqian/lumee/internal/domain/conversation"
	"github.com/yanqian/lumee/internal/domain/geo"
	"github.com/yanqian/lumee/internal/domain/profile"
	"github.com/yanqian/lumee/internal/domain/weather"
	"github.com/yanqian/lumee/internal/infra/ambee"
	"github.com/yanqian/lumee/internal/infra/config"
	"github.com/yanqian/lumee/internal/infra/conversationstore"
	"github.com/yanqian/lumee/internal/infra/httpx"
	"github.com/yanqian/lumee/internal/infra/kakao"
	"github.com/yanqian/lumee/internal/infra/llm/chatgpt"
	"github.com/yanqian/lumee/internal/infra/openweather"
	"github.com/yanqian/lumee/internal/infra/profilerepo"
	"github.com/yanqian/lumee/internal/infra/tokenizer"
	"github.com/yanqian/lumee/pkg/metrics"
	"github.com/yanqian/lumee/pkg/util"
)

// seoulOffset is used when the host has no tzdata for the configured zone.
const seoulOffset = 9 * time.Hour

func provideAssistantConfig(cfg *config.Config) assistant.Config {
	return assistant.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		Location:           util.LoadLocation(cfg.Assistant.Timezone, seoulOffset),
		HistoryWindow:      cfg.Assistant.HistoryWindow,
		HistoryTokenBudget: cfg.Assistant.HistoryTokenBudget,
		SchedulePolicy:     assistant.SchedulePolicy(cfg.Assistant.SchedulePolicy),
		GraphPoints:        cfg.Assistant.GraphPoints,
		GraphStepHours:     cfg.Assistant.GraphStepHours,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{Secret: cfg.Auth.JWTSecret}
}

func provideBreakerConfig(cfg *config.Config) httpx.BreakerConfig {
	return httpx.BreakerConfig{
		MaxRequests: cfg.Providers.Breaker.MaxRequests,
		Interval:    cfg.Providers.Breaker.Interval,
		Timeout:     cfg.Providers.Breaker.Timeout,
	}
}

// provideHTTPClient is the retrying client shared by the data providers.
func provideHTTPClient(cfg *config.Config, logger *slog.Logger) *http.Client {
	return httpx.NewClient(httpx.Config{
		Timeout:      cfg.Providers.Timeout,
		RetryMax:     cfg.Providers.RetryMax,
		RetryWaitMax: cfg.Providers.RetryWaitMax,
	}, logger)
}

func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) (*chatgpt.Client, error) {
	httpClient := httpx.NewClient(httpx.Config{
		Timeout:      cfg.LLM.Timeout,
		RetryMax:     cfg.Providers.RetryMax,
		RetryWaitMax: cfg.Providers.RetryWaitMax,
	}, logger)
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, httpClient)
}

func provideOpenWeatherClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *openweather.Client {
	if strings.TrimSpace(cfg.Providers.OpenWeather.APIKey) == "" {
		logger.Warn("openweather api key not set, weather and air quality disabled")
		return nil
	}
	client, err := openweather.NewClient(openweather.Config{
		APIKey:   cfg.Providers.OpenWeather.APIKey,
		BaseURL:  cfg.Providers.OpenWeather.BaseURL,
		Language: cfg.Providers.OpenWeather.Language,
		Breaker:  provideBreakerConfig(cfg),
	}, httpClient, logger)
	if err != nil {
		logger.Error("openweather client disabled", "error", err)
		return nil
	}
	return client
}

func provideAmbeeClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *ambee.Client {
	if strings.TrimSpace(cfg.Providers.Ambee.APIKey) == "" {
		logger.Warn("ambee api key not set, pollen disabled")
		return nil
	}
	client, err := ambee.NewClient(ambee.Config{
		APIKey:  cfg.Providers.Ambee.APIKey,
		BaseURL: cfg.Providers.Ambee.BaseURL,
		Breaker: provideBreakerConfig(cfg),
	}, httpClient, logger)
	if err != nil {
		logger.Error("ambee client disabled", "error", err)
		return nil
	}
	return client
}

func provideKakaoGeocoder(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *kakao.Geocoder {
	if strings.TrimSpace(cfg.Providers.Kakao.APIKey) == "" {
		logger.Info("kakao api key not set, using openweather geocoding only")
		return nil
	}
	geocoder, err := kakao.NewGeocoder(kakao.Config{
		APIKey:  cfg.Providers.Kakao.APIKey,
		BaseURL: cfg.Providers.Kakao.BaseURL,
		Breaker: provideBreakerConfig(cfg),
	}, httpClient)
	if err != nil {
		logger.Error("kakao geocoder disabled", "error", err)
		return nil
	}
	return geocoder
}

// provideWeatherGateway keeps absent providers as untyped nil interfaces so the
// gateway reports them as unavailable.
func provideWeatherGateway(ow *openweather.Client, pollen *ambee.Client, recorder *metrics.Recorder, logger *slog.Logger) weather.Gateway {
	var (
		forecast weather.ForecastProvider
		air      weather.AirProvider
		pollenP  weather.PollenProvider
	)
	if ow != nil {
		forecast, air = ow, ow
	}
	if pollen != nil {
		pollenP = pollen
	}
	return weather.NewGateway(forecast, air, pollenP, recorder, logger)
}

// provideGeoResolver prefers Kakao keyword search for Korean names and falls
// back to OpenWeather direct geocoding.
func provideGeoResolver(cfg *config.Config, kakaoGeocoder *kakao.Geocoder, ow *openweather.Client, logger *slog.Logger) geo.Resolver {
	var (
		geocoders []geo.Geocoder
		reverse   geo.ReverseGeocoder
	)
	if kakaoGeocoder != nil {
		geocoders = append(geocoders, kakaoGeocoder)
	}
	if ow != nil {
		geocoders = append(geocoders, ow)
		reverse = ow
	}
	return geo.NewResolver(geo.Config{
		CacheSize: cfg.Geo.CacheSize,
		CacheTTL:  cfg.Geo.CacheTTL,
	}, geocoders, reverse, logger)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) assistant.TokenCounter {
	return tokenizer.NewCounter(cfg.LLM.Model, logger)
}

func provideConversationStore(cfg *config.Config, logger *slog.Logger) conversation.Store {
	if cfg.Conversation.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return conversationstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return conversationstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("conversation valkey store enabled", "addr", cfg.Conversation.Valkey.Addr)
			return conversationstore.NewValkeyStore(client, cfg.Conversation.Valkey.Prefix, cfg.Conversation.TTL)
		}
	}
	return conversationstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Conversation.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Conversation.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Conversation.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideProfileRepository(cfg *config.Config, logger *slog.Logger) profile.Repository {
	fallback := memoryProfiles(cfg, logger)
	dsn := strings.TrimSpace(cfg.Profiles.Postgres.DSN)
	if dsn == "" {
		logger.Info("profiles postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Profiles.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Profiles.Postgres.MaxConns
	}
	if cfg.Profiles.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Profiles.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := profilerepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("profile schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("profiles postgres repository enabled")
	return repo
}

func memoryProfiles(cfg *config.Config, logger *slog.Logger) *profilerepo.MemoryRepository {
	path := strings.TrimSpace(cfg.Profiles.SeedPath)
	if path == "" {
		return profilerepo.NewMemoryRepository()
	}
	seed, err := profilerepo.LoadSeed(path)
	if err != nil {
		logger.Error("profile seed not loaded", "path", path, "error", err)
		return profilerepo.NewMemoryRepository()
	}
	logger.Info("profile seed loaded", "path", path, "count", len(seed))
	return profilerepo.NewMemoryRepository(seed...)
}
