package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "Asia/Seoul", cfg.Assistant.Timezone)
	require.Equal(t, 10, cfg.Assistant.HistoryWindow)
	require.Equal(t, "prefer_schedule", cfg.Assistant.SchedulePolicy)
	require.Equal(t, 6, cfg.Assistant.GraphPoints)
	require.Equal(t, 3, cfg.Assistant.GraphStepHours)
	require.Equal(t, "lumee:conversation", cfg.Conversation.Valkey.Prefix)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
http:
  address: ":9090"
assistant:
  timezone: "Asia/Tokyo"
  historyWindow: 4
providers:
  openWeather:
    apiKey: "from-file"
conversation:
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ASSISTANT_HISTORY_WINDOW", "8")
	t.Setenv("ASSISTANT_SCHEDULE_POLICY", " PREFER_DEVICE ")
	t.Setenv("CONVERSATION_VALKEY_ENABLED", "true")
	t.Setenv("CONVERSATION_VALKEY_ADDR", "localhost:6379")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "Asia/Tokyo", cfg.Assistant.Timezone)
	require.Equal(t, 8, cfg.Assistant.HistoryWindow)
	require.Equal(t, "prefer_device", cfg.Assistant.SchedulePolicy)
	require.Equal(t, "from-file", cfg.Providers.OpenWeather.APIKey)
	require.Equal(t, "https://api.openweathermap.org", cfg.Providers.OpenWeather.BaseURL)
	require.Equal(t, time.Hour, cfg.Conversation.TTL)
	require.True(t, cfg.Conversation.Valkey.Enabled)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORS.AllowedOrigins)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unterminated"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown schedule policy", mutate: func(c *Config) { c.Assistant.SchedulePolicy = "prefer_nothing" }, wantErr: "assistant.schedulePolicy"},
		{name: "valkey without addr", mutate: func(c *Config) { c.Conversation.Valkey.Enabled = true }, wantErr: "conversation.valkey.addr"},
		{name: "zero graph points", mutate: func(c *Config) { c.Assistant.GraphPoints = 0 }, wantErr: "assistant.graphPoints"},
		{name: "negative history window", mutate: func(c *Config) { c.Assistant.HistoryWindow = -1 }, wantErr: "assistant.historyWindow"},
		{name: "rate limit without budget", mutate: func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }, wantErr: "http.rateLimit.requestsPerMinute"},
		{name: "missing model", mutate: func(c *Config) { c.LLM.Model = " " }, wantErr: "llm.model"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
