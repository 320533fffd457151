package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrLocationNotFound is returned when neither a named lookup nor device
// coordinates produce a position.
var ErrLocationNotFound = errors.New("location not found")

// Coords is a WGS84 position.
type Coords struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Place is a resolved position with the name shown to the user.
type Place struct {
	Name   string
	Coords Coords
	// Source names the geocoder that produced the coordinates, or "device".
	Source string
}

// Query describes what to resolve. Name wins over Device when both are set.
type Query struct {
	Name     string
	Device   *Coords
	Language string
}

// Geocoder turns a place name into coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (Coords, error)
}

// ReverseGeocoder turns coordinates into a short place label.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c Coords) (string, error)
}

// Resolver maps a Query to a Place.
type Resolver interface {
	Resolve(ctx context.Context, q Query) (Place, error)
}

// Config controls the lookup caches.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

type resolver struct {
	geocoders []Geocoder
	reverse   ReverseGeocoder
	named     *expirable.LRU[string, Coords]
	labels    *expirable.LRU[string, string]
	logger    *slog.Logger
}

// NewResolver tries geocoders in order for named lookups. reverse may be nil.
func NewResolver(cfg Config, geocoders []Geocoder, reverse ReverseGeocoder, logger *slog.Logger) Resolver {
	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &resolver{
		geocoders: geocoders,
		reverse:   reverse,
		named:     expirable.NewLRU[string, Coords](size, nil, ttl),
		labels:    expirable.NewLRU[string, string](size, nil, ttl),
		logger:    logger.With("component", "geo.resolver"),
	}
}

func (r *resolver) Resolve(ctx context.Context, q Query) (Place, error) {
	name := strings.TrimSpace(q.Name)
	if name != "" {
		place, err := r.lookup(ctx, name)
		if err == nil {
			return place, nil
		}
		if q.Device == nil {
			return Place{}, fmt.Errorf("%w: %s", ErrLocationNotFound, name)
		}
		r.logger.Info("named lookup failed, using device coordinates", "query", name)
	}
	if q.Device == nil {
		return Place{}, ErrLocationNotFound
	}
	return Place{
		Name:   r.deviceLabel(ctx, *q.Device, q.Language),
		Coords: *q.Device,
		Source: "device",
	}, nil
}

func (r *resolver) lookup(ctx context.Context, name string) (Place, error) {
	if coords, ok := r.named.Get(name); ok {
		return Place{Name: name, Coords: coords, Source: "cache"}, nil
	}
	var errs []error
	for _, g := range r.geocoders {
		coords, err := g.Geocode(ctx, name)
		if err != nil {
			r.logger.Debug("geocoder miss", "geocoder", g.Name(), "query", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}
		r.named.Add(name, coords)
		return Place{Name: name, Coords: coords, Source: g.Name()}, nil
	}
	if len(errs) == 0 {
		return Place{}, errors.New("no geocoders configured")
	}
	return Place{}, errors.Join(errs...)
}

func (r *resolver) deviceLabel(ctx context.Context, c Coords, lang string) string {
	key := fmt.Sprintf("%.3f,%.3f", c.Lat, c.Lon)
	if label, ok := r.labels.Get(key); ok {
		return label
	}
	if r.reverse != nil {
		label, err := r.reverse.Reverse(ctx, c)
		if err == nil && strings.TrimSpace(label) != "" {
			r.labels.Add(key, label)
			return label
		}
		r.logger.Debug("reverse geocode failed", "lat", c.Lat, "lon", c.Lon, "error", err)
	}
	return CurrentLocationLabel(lang)
}

// CurrentLocationLabel is the display name used when device coordinates cannot be named.
func CurrentLocationLabel(lang string) string {
	if lang == "ko" {
		return "현재 위치"
	}
	return "current location"
}
