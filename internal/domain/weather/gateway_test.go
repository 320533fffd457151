package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/pkg/metrics"
)

type stubForecast struct {
	forecast Forecast
	err      error
	calls    int
}

func (s *stubForecast) Forecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	s.calls++
	return s.forecast, s.err
}

type stubAir struct {
	reading AirReading
	err     error
}

func (s *stubAir) AirQuality(ctx context.Context, lat, lon float64) (AirReading, error) {
	return s.reading, s.err
}

type stubPollen struct {
	report PollenReport
	err    error
}

func (s *stubPollen) Pollen(ctx context.Context, lat, lon float64) (PollenReport, error) {
	return s.report, s.err
}

func sampleForecast(start time.Time) Forecast {
	current := Observation{
		Time: start, Temp: 21.6, FeelsLike: 22.4, Condition: "맑음", Icon: "01d",
		Humidity: 55, UVI: 6.2, Clouds: 10, DewPoint: 12, Visibility: 10000,
		WindSpeed: 3.1, WindDeg: 45,
		Sunrise: start.Add(-8 * time.Hour), Sunset: start.Add(6 * time.Hour),
	}
	hourly := make([]Observation, 0, 30)
	for i := 0; i < 30; i++ {
		hourly = append(hourly, Observation{
			Time: start.Truncate(time.Hour).Add(time.Duration(i) * time.Hour),
			Temp: 15 + float64(i%12),
			Pop:  0.1 * float64(i%5),
		})
	}
	return Forecast{Current: current, Hourly: hourly, TimezoneOffset: 32400}
}

func TestBuildSnapshotCurrent(t *testing.T) {
	start := time.Date(2025, 6, 4, 5, 10, 0, 0, time.UTC)

	snap := BuildSnapshot(sampleForecast(start), nil)

	require.False(t, snap.Forecasted)
	require.Equal(t, 22, snap.Temp)
	require.Equal(t, 22, snap.FeelsLike)
	require.Equal(t, "high", snap.UVLevel)
	require.Equal(t, "NE", snap.WindDirection)
	require.Equal(t, "comfortable", snap.DewComfort)
	require.Equal(t, 15, snap.TempMin)
	require.Equal(t, 26, snap.TempMax)
	require.Equal(t, 0, snap.PrecipitationChance)
	require.Equal(t, 32400, snap.TimezoneOffset)
	require.Len(t, snap.Hourly, 30)
}

func TestBuildSnapshotNearestHourly(t *testing.T) {
	start := time.Date(2025, 6, 4, 5, 0, 0, 0, time.UTC)
	asOf := start.Add(3*time.Hour + 20*time.Minute)

	snap := BuildSnapshot(sampleForecast(start), &asOf)

	require.True(t, snap.Forecasted)
	require.Equal(t, start.Add(3*time.Hour), snap.ObservedAt)
	require.Equal(t, 18, snap.Temp)
	require.Equal(t, 30, snap.PrecipitationChance)
	require.Equal(t, start.Add(-8*time.Hour), snap.Sunrise)
}

func TestGatewayDegradesFailuresToNil(t *testing.T) {
	recorder := metrics.NewRecorder()
	gw := NewGateway(
		&stubForecast{forecast: sampleForecast(time.Now())},
		&stubAir{err: errors.New("both versions failed")},
		&stubPollen{report: PollenReport{Readings: []PollenReading{{Type: "tree", Risk: "Low", Count: 3}}}},
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	require.NotNil(t, gw.Weather(ctx, 37.5, 127.0, nil))
	require.Nil(t, gw.AirQuality(ctx, 37.5, 127.0))
	pollen := gw.Pollen(ctx, 37.5, 127.0)
	require.NotNil(t, pollen)
	require.Equal(t, "tree", pollen.Type)

	count, err := testutil.GatherAndCount(recorder.Registry(), "lumee_upstream_failures_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGatewayMissingProviders(t *testing.T) {
	recorder := metrics.NewRecorder()
	gw := NewGateway(nil, nil, &stubPollen{}, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.Nil(t, gw.Weather(ctx, 1, 2, nil))
	require.Nil(t, gw.AirQuality(ctx, 1, 2))
	require.Nil(t, gw.Pollen(ctx, 1, 2))
	count, err := testutil.GatherAndCount(recorder.Registry(), "lumee_upstream_failures_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
