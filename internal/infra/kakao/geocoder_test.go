package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/internal/domain/geo"
)

func TestGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/local/search/keyword.json", r.URL.Path)
		require.Equal(t, "KakaoAK rest-key", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("query") {
		case "해운대구":
			_, _ = w.Write([]byte(`{"documents":[{"place_name":"해운대구","x":"129.163","y":"35.1631"}],"meta":{"total_count":1}}`))
		case "broken":
			_, _ = w.Write([]byte(`{"documents":[{"x":"east","y":"35.1"}]}`))
		default:
			_, _ = w.Write([]byte(`{"documents":[]}`))
		}
	}))
	defer server.Close()

	g, err := NewGeocoder(Config{APIKey: "rest-key", BaseURL: server.URL}, server.Client())
	require.NoError(t, err)
	require.Equal(t, "kakao", g.Name())

	coords, err := g.Geocode(context.Background(), "해운대구")
	require.NoError(t, err)
	require.Equal(t, geo.Coords{Lat: 35.1631, Lon: 129.163}, coords)

	_, err = g.Geocode(context.Background(), "없는곳")
	require.ErrorIs(t, err, errNoResults)

	_, err = g.Geocode(context.Background(), "broken")
	require.Error(t, err)
}

func TestNewGeocoderRequiresKey(t *testing.T) {
	_, err := NewGeocoder(Config{APIKey: " "}, nil)
	require.Error(t, err)
}
