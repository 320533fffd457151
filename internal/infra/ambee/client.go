package ambee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/yanqian/lumee/internal/domain/weather"
	"github.com/yanqian/lumee/internal/infra/httpx"
)

const defaultBaseURL = "https://api.ambeedata.com"

// Config holds Ambee credentials.
type Config struct {
	APIKey  string
	BaseURL string
	Breaker httpx.BreakerConfig
}

// Client fetches the latest pollen levels from Ambee.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ambee api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    httpx.NewBreaker("ambee", cfg.Breaker),
		validate:   validator.New(),
		logger:     logger.With("component", "ambee.client"),
	}, nil
}

type pollenResponse struct {
	Message string        `json:"message"`
	Data    []pollenEntry `json:"data" validate:"required,min=1,dive"`
}

type pollenEntry struct {
	Count     map[string]int `json:"Count" validate:"required,min=1"`
	Risk      orderedRisk    `json:"Risk" validate:"required,min=1"`
	UpdatedAt string         `json:"updatedAt"`
}

type riskEntry struct {
	Key   string
	Level string
}

// orderedRisk keeps the Risk object's keys in document order so ties resolve
// to the first species the provider lists.
type orderedRisk []riskEntry

func (o *orderedRisk) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("risk must be an object, got %v", tok)
	}
	var entries orderedRisk
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var level string
		if err := dec.Decode(&level); err != nil {
			return fmt.Errorf("risk %q: %w", key, err)
		}
		entries = append(entries, riskEntry{Key: key, Level: level})
	}
	*o = entries
	return nil
}

// Pollen returns every species reading in provider order.
func (c *Client) Pollen(ctx context.Context, lat, lon float64) (weather.PollenReport, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(lon, 'f', 6, 64))
	endpoint := c.baseURL + "/latest/pollen/by-lat-lng?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return weather.PollenReport{}, fmt.Errorf("build pollen request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	body, err := httpx.Do(c.httpClient, c.breaker, req)
	if err != nil {
		return weather.PollenReport{}, fmt.Errorf("pollen request failed: %w", err)
	}
	var raw pollenResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return weather.PollenReport{}, fmt.Errorf("decode pollen response: %w", err)
	}
	if err := c.validate.Struct(raw); err != nil {
		return weather.PollenReport{}, fmt.Errorf("invalid pollen payload: %w", err)
	}
	return raw.Data[0].toReport(), nil
}

func (e pollenEntry) toReport() weather.PollenReport {
	readings := make([]weather.PollenReading, 0, len(e.Risk))
	for _, r := range e.Risk {
		readings = append(readings, weather.PollenReading{
			Type:  strings.TrimSuffix(r.Key, "_pollen"),
			Risk:  r.Level,
			Count: e.Count[r.Key],
		})
	}
	report := weather.PollenReport{Readings: readings}
	if ts, err := time.Parse(time.RFC3339, e.UpdatedAt); err == nil {
		report.UpdatedAt = ts
	}
	return report
}
