package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/yanqian/lumee/internal/infra/httpx"
)

const defaultBaseURL = "https://api.openweathermap.org"

var errNoResults = errors.New("no results")

// Config holds OpenWeather credentials and request defaults.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Breaker  httpx.BreakerConfig
}

// Endpoint families, each behind its own breaker.
const (
	familyOneCall = "onecall"
	familyAir30   = "air-3.0"
	familyAir25   = "air-2.5"
	familyGeo     = "geo"
)

// Client talks to the OneCall, air pollution and geocoding APIs.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	breakers   map[string]*gobreaker.CircuitBreaker
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewClient builds an OpenWeather client on top of the shared retrying http client.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openweather api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	lang := cfg.Language
	if lang == "" {
		lang = "kr"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   lang,
		httpClient: httpClient,
		breakers:   newBreakers(cfg.Breaker),
		validate:   validator.New(),
		logger:     logger.With("component", "openweather.client"),
	}, nil
}

func newBreakers(cfg httpx.BreakerConfig) map[string]*gobreaker.CircuitBreaker {
	breakers := make(map[string]*gobreaker.CircuitBreaker, 4)
	for _, family := range []string{familyOneCall, familyAir30, familyAir25, familyGeo} {
		breakers[family] = httpx.NewBreaker("openweather-"+family, cfg)
	}
	return breakers
}

// get issues a GET against path through the family's breaker and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, family, path string, params url.Values, out any) error {
	breaker, ok := c.breakers[family]
	if !ok {
		return fmt.Errorf("openweather: unknown endpoint family %q", family)
	}
	params.Set("appid", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build openweather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httpx.Do(c.httpClient, breaker, req)
	if err != nil {
		return fmt.Errorf("openweather %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode openweather %s: %w", path, err)
	}
	return nil
}

func coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	return params
}
