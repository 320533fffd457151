package weather

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/yanqian/lumee/pkg/metrics"
)

// ForecastProvider returns current conditions and the hourly forecast.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (Forecast, error)
}

// AirProvider returns particulate readings. Implementations own any endpoint
// version fallback.
type AirProvider interface {
	AirQuality(ctx context.Context, lat, lon float64) (AirReading, error)
}

// PollenProvider returns validated per-species pollen readings.
type PollenProvider interface {
	Pollen(ctx context.Context, lat, lon float64) (PollenReport, error)
}

// Gateway fetches normalized data for a coordinate pair. A nil result means
// the source is unavailable; failures never propagate to the caller.
type Gateway interface {
	Weather(ctx context.Context, lat, lon float64, asOf *time.Time) *Snapshot
	AirQuality(ctx context.Context, lat, lon float64) *AirQuality
	Pollen(ctx context.Context, lat, lon float64) *PollenRecord
}

const (
	SourceWeather = "weather"
	SourceAir     = "air_quality"
	SourcePollen  = "pollen"
)

var errNoProvider = errors.New("provider not configured")

type gateway struct {
	forecast ForecastProvider
	air      AirProvider
	pollen   PollenProvider
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewGateway wires the providers. Any provider may be nil when its credentials are missing.
func NewGateway(forecast ForecastProvider, air AirProvider, pollen PollenProvider, recorder *metrics.Recorder, logger *slog.Logger) Gateway {
	return &gateway{
		forecast: forecast,
		air:      air,
		pollen:   pollen,
		metrics:  recorder,
		logger:   logger.With("component", "weather.gateway"),
	}
}

func (g *gateway) Weather(ctx context.Context, lat, lon float64, asOf *time.Time) *Snapshot {
	if g.forecast == nil {
		g.fail(SourceWeather, lat, lon, errNoProvider)
		return nil
	}
	start := time.Now()
	forecast, err := g.forecast.Forecast(ctx, lat, lon)
	g.metrics.ObserveUpstream(SourceWeather, time.Since(start).Seconds())
	if err != nil {
		g.fail(SourceWeather, lat, lon, err)
		return nil
	}
	snapshot := BuildSnapshot(forecast, asOf)
	return &snapshot
}

func (g *gateway) AirQuality(ctx context.Context, lat, lon float64) *AirQuality {
	if g.air == nil {
		g.fail(SourceAir, lat, lon, errNoProvider)
		return nil
	}
	start := time.Now()
	reading, err := g.air.AirQuality(ctx, lat, lon)
	g.metrics.ObserveUpstream(SourceAir, time.Since(start).Seconds())
	if err != nil {
		g.fail(SourceAir, lat, lon, err)
		return nil
	}
	quality := NewAirQuality(reading)
	return &quality
}

func (g *gateway) Pollen(ctx context.Context, lat, lon float64) *PollenRecord {
	if g.pollen == nil {
		g.fail(SourcePollen, lat, lon, errNoProvider)
		return nil
	}
	start := time.Now()
	report, err := g.pollen.Pollen(ctx, lat, lon)
	g.metrics.ObserveUpstream(SourcePollen, time.Since(start).Seconds())
	if err != nil {
		g.fail(SourcePollen, lat, lon, err)
		return nil
	}
	record, ok := SelectPollen(report)
	if !ok {
		g.fail(SourcePollen, lat, lon, errors.New("no pollen readings"))
		return nil
	}
	return &record
}

func (g *gateway) fail(source string, lat, lon float64, err error) {
	g.metrics.UpstreamFailure(source)
	g.logger.Warn("upstream unavailable", "source", source, "lat", lat, "lon", lon, "error", err)
}

// BuildSnapshot selects current conditions, or the hourly point nearest asOf,
// and derives the display fields.
func BuildSnapshot(f Forecast, asOf *time.Time) Snapshot {
	target := f.Current
	forecasted := false
	if asOf != nil && len(f.Hourly) > 0 {
		target = nearestObservation(f.Hourly, *asOf)
		forecasted = true
	}

	pop := target.Pop
	if !forecasted && len(f.Hourly) > 0 {
		pop = nearestObservation(f.Hourly, target.Time).Pop
	}

	tempMin, tempMax := dailyRange(f.Hourly, target)

	hourly := make([]HourlyPoint, 0, len(f.Hourly))
	for _, h := range f.Hourly {
		hourly = append(hourly, HourlyPoint{Time: h.Time, Temp: h.Temp, Pop: h.Pop})
	}

	return Snapshot{
		ObservedAt:          target.Time,
		Forecasted:          forecasted,
		Temp:                roundInt(target.Temp),
		FeelsLike:           roundInt(target.FeelsLike),
		TempMin:             tempMin,
		TempMax:             tempMax,
		Condition:           conditionOrDefault(target.Condition),
		Icon:                target.Icon,
		Humidity:            target.Humidity,
		UVI:                 target.UVI,
		UVLevel:             UVLevel(target.UVI),
		Clouds:              target.Clouds,
		DewPoint:            target.DewPoint,
		DewComfort:          DewComfort(target.DewPoint),
		Visibility:          target.Visibility,
		WindSpeed:           target.WindSpeed,
		WindDeg:             target.WindDeg,
		WindDirection:       WindDirection(target.WindDeg, "en"),
		PrecipitationChance: roundInt(pop * 100),
		Sunrise:             f.Current.Sunrise,
		Sunset:              f.Current.Sunset,
		TimezoneOffset:      f.TimezoneOffset,
		Hourly:              hourly,
	}
}

func nearestObservation(points []Observation, at time.Time) Observation {
	best := points[0]
	bestDiff := absDuration(best.Time.Sub(at))
	for _, p := range points[1:] {
		if diff := absDuration(p.Time.Sub(at)); diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	return best
}

// dailyRange is the min/max over the 24 hourly points starting at the target sample.
func dailyRange(hourly []Observation, target Observation) (int, int) {
	lo, hi := target.Temp, target.Temp
	count := 0
	for _, h := range hourly {
		if h.Time.Before(target.Time.Add(-30 * time.Minute)) {
			continue
		}
		lo = math.Min(lo, h.Temp)
		hi = math.Max(hi, h.Temp)
		count++
		if count == 24 {
			break
		}
	}
	return roundInt(lo), roundInt(hi)
}

func conditionOrDefault(condition string) string {
	if condition == "" {
		return "정보 없음"
	}
	return condition
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
