package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/yanqian/lumee/internal/domain/geo"
	"github.com/yanqian/lumee/internal/infra/httpx"
)

const defaultBaseURL = "https://dapi.kakao.com"

var errNoResults = errors.New("no results")

// Config holds the Kakao REST API key.
type Config struct {
	APIKey  string
	BaseURL string
	Breaker httpx.BreakerConfig
}

// Geocoder resolves Korean place names with Kakao local keyword search.
type Geocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewGeocoder(cfg Config, httpClient *http.Client) (*Geocoder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("kakao api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Geocoder{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    httpx.NewBreaker("kakao", cfg.Breaker),
	}, nil
}

func (g *Geocoder) Name() string { return "kakao" }

// keywordResponse carries coordinates as decimal strings; x is longitude.
type keywordResponse struct {
	Documents []struct {
		PlaceName string `json:"place_name"`
		X         string `json:"x"`
		Y         string `json:"y"`
	} `json:"documents"`
}

// Geocode returns the coordinates of the best keyword match.
func (g *Geocoder) Geocode(ctx context.Context, query string) (geo.Coords, error) {
	endpoint := g.baseURL + "/v2/local/search/keyword.json?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Coords{}, fmt.Errorf("build kakao request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+g.apiKey)

	body, err := httpx.Do(g.httpClient, g.breaker, req)
	if err != nil {
		return geo.Coords{}, fmt.Errorf("kakao keyword search: %w", err)
	}
	var raw keywordResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return geo.Coords{}, fmt.Errorf("decode kakao response: %w", err)
	}
	if len(raw.Documents) == 0 {
		return geo.Coords{}, fmt.Errorf("kakao %q: %w", query, errNoResults)
	}
	doc := raw.Documents[0]
	lon, err := strconv.ParseFloat(doc.X, 64)
	if err != nil {
		return geo.Coords{}, fmt.Errorf("parse kakao longitude %q: %w", doc.X, err)
	}
	lat, err := strconv.ParseFloat(doc.Y, 64)
	if err != nil {
		return geo.Coords{}, fmt.Errorf("parse kakao latitude %q: %w", doc.Y, err)
	}
	return geo.Coords{Lat: lat, Lon: lon}, nil
}
