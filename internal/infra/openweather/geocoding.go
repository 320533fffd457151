package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yanqian/lumee/internal/domain/geo"
)

type geoEntry struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
}

// Name identifies the geocoder in logs and resolved places.
func (c *Client) Name() string { return "openweather" }

// Geocode resolves a place name with the direct geocoding API.
func (c *Client) Geocode(ctx context.Context, query string) (geo.Coords, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	var entries []geoEntry
	if err := c.get(ctx, familyGeo, "/geo/1.0/direct", params, &entries); err != nil {
		return geo.Coords{}, err
	}
	if len(entries) == 0 {
		return geo.Coords{}, fmt.Errorf("geocode %q: %w", query, errNoResults)
	}
	return geo.Coords{Lat: entries[0].Lat, Lon: entries[0].Lon}, nil
}

// Reverse names coordinates as "City, CC".
func (c *Client) Reverse(ctx context.Context, coords geo.Coords) (string, error) {
	params := coordParams(coords.Lat, coords.Lon)
	params.Set("limit", "1")

	var entries []geoEntry
	if err := c.get(ctx, familyGeo, "/geo/1.0/reverse", params, &entries); err != nil {
		return "", err
	}
	if len(entries) == 0 || strings.TrimSpace(entries[0].Name) == "" {
		return "", fmt.Errorf("reverse geocode: %w", errNoResults)
	}
	e := entries[0]
	if e.Country == "" {
		return e.Name, nil
	}
	return e.Name + ", " + e.Country, nil
}
