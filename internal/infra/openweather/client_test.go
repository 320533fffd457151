package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/internal/domain/geo"
	"github.com/yanqian/lumee/internal/infra/httpx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{APIKey: "key", BaseURL: server.URL}, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

const oneCallBody = `{
  "timezone_offset": 32400,
  "current": {"dt": 1749014400, "sunrise": 1748981000, "sunset": 1749033500, "temp": 24.6, "feels_like": 25.1,
    "humidity": 60, "dew_point": 16.2, "uvi": 6.3, "clouds": 20, "visibility": 10000, "wind_speed": 3.4, "wind_deg": 225,
    "weather": [{"main": "Clear", "description": "맑음", "icon": "01d"}]},
  "hourly": [
    {"dt": 1749014400, "temp": 24.6, "pop": 0.1, "weather": [{"description": "맑음"}]},
    {"dt": 1749018000, "temp": 25.2, "pop": 0.4, "weather": [{"description": "구름 조금"}]}
  ]
}`

func TestForecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/3.0/onecall", r.URL.Path)
		require.Equal(t, "key", r.URL.Query().Get("appid"))
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		require.Equal(t, "minutely,daily,alerts", r.URL.Query().Get("exclude"))
		_, _ = w.Write([]byte(oneCallBody))
	})

	forecast, err := client.Forecast(context.Background(), 37.5665, 126.978)
	require.NoError(t, err)
	require.Equal(t, 32400, forecast.TimezoneOffset)
	require.Equal(t, 24.6, forecast.Current.Temp)
	require.Equal(t, "맑음", forecast.Current.Condition)
	require.Equal(t, "01d", forecast.Current.Icon)
	require.Equal(t, time.Unix(1748981000, 0).UTC(), forecast.Current.Sunrise)
	require.Len(t, forecast.Hourly, 2)
	require.Equal(t, 0.4, forecast.Hourly[1].Pop)
}

func TestForecastRejectsMalformedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current": {"dt": 1749014400}, "hourly": []}`))
	})

	_, err := client.Forecast(context.Background(), 1, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid onecall payload")
}

func TestAirQualityFallsBackToOlderVersion(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/data/3.0/air_pollution" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401}`))
			return
		}
		_, _ = w.Write([]byte(`{"list":[{"dt":1749014400,"components":{"pm2_5":38.2,"pm10":61.0}}]}`))
	})

	reading, err := client.AirQuality(context.Background(), 37.5, 127)
	require.NoError(t, err)
	require.Equal(t, 38.2, reading.PM25)
	require.Equal(t, 61.0, reading.PM10)
	require.Equal(t, []string{"/data/3.0/air_pollution", "/data/2.5/air_pollution"}, paths)
}

func TestAirQualityFailsWhenEveryVersionFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[{"components":{"pm10":12}}]}`))
	})

	_, err := client.AirQuality(context.Background(), 37.5, 127)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid air pollution 3.0 payload")
	require.Contains(t, err.Error(), "invalid air pollution 2.5 payload")
}

func TestAirOutageDoesNotBlockForecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/3.0/onecall":
			_, _ = w.Write([]byte(oneCallBody))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	for i := 0; i < 6; i++ {
		_, err := client.AirQuality(context.Background(), 37.5, 127)
		require.Error(t, err)
	}
	_, err := client.AirQuality(context.Background(), 37.5, 127)
	require.ErrorIs(t, err, httpx.ErrCircuitOpen)

	forecast, err := client.Forecast(context.Background(), 37.5, 127)
	require.NoError(t, err)
	require.Equal(t, 24.6, forecast.Current.Temp)
}

func TestGeocodeAndReverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/1.0/direct":
			if r.URL.Query().Get("q") == "Atlantis" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"name":"Busan","lat":35.1796,"lon":129.0756,"country":"KR"}]`))
		case "/geo/1.0/reverse":
			_, _ = w.Write([]byte(`[{"name":"Seongnam-si","lat":37.42,"lon":127.12,"country":"KR"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	coords, err := client.Geocode(context.Background(), "부산광역시")
	require.NoError(t, err)
	require.Equal(t, geo.Coords{Lat: 35.1796, Lon: 129.0756}, coords)

	_, err = client.Geocode(context.Background(), "Atlantis")
	require.ErrorIs(t, err, errNoResults)

	label, err := client.Reverse(context.Background(), geo.Coords{Lat: 37.42, Lon: 127.12})
	require.NoError(t, err)
	require.Equal(t, "Seongnam-si, KR", label)
	require.Equal(t, "openweather", client.Name())
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
