package ambee

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/internal/domain/weather"
)

func newTestClient(t *testing.T, body string, status int) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/latest/pollen/by-lat-lng", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NotEmpty(t, r.URL.Query().Get("lng"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL}, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func TestPollenKeepsProviderOrder(t *testing.T) {
	body := `{"message":"success","data":[{
		"Count":{"weed_pollen":13,"grass_pollen":27,"tree_pollen":47},
		"Risk":{"weed_pollen":"Low","grass_pollen":"Low","tree_pollen":"Low"},
		"updatedAt":"2025-06-04T11:00:00.000Z"}]}`
	client := newTestClient(t, body, http.StatusOK)

	report, err := client.Pollen(context.Background(), 37.5, 127)
	require.NoError(t, err)
	require.Equal(t, []weather.PollenReading{
		{Type: "weed", Risk: "Low", Count: 13},
		{Type: "grass", Risk: "Low", Count: 27},
		{Type: "tree", Risk: "Low", Count: 47},
	}, report.Readings)
	require.Equal(t, time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC), report.UpdatedAt)

	top, ok := weather.SelectPollen(report)
	require.True(t, ok)
	require.Equal(t, "weed", top.Type)
}

func TestPollenSelectsHighestRisk(t *testing.T) {
	body := `{"data":[{"Count":{"grass_pollen":27,"tree_pollen":470,"weed_pollen":13},
		"Risk":{"grass_pollen":"Low","tree_pollen":"High","weed_pollen":"Moderate"}}]}`
	client := newTestClient(t, body, http.StatusOK)

	report, err := client.Pollen(context.Background(), 37.5, 127)
	require.NoError(t, err)
	top, ok := weather.SelectPollen(report)
	require.True(t, ok)
	require.Equal(t, "tree", top.Type)
	require.Equal(t, "High", top.Risk)
	require.Equal(t, 470, top.Count)
}

func TestPollenRejectsMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"no data":       `{"message":"success","data":[]}`,
		"empty risk":    `{"data":[{"Count":{"tree_pollen":3},"Risk":{}}]}`,
		"risk array":    `{"data":[{"Count":{"tree_pollen":3},"Risk":["Low"]}]}`,
		"missing count": `{"data":[{"Risk":{"grass_pollen":"High","tree_pollen":"Low"}}]}`,
		"empty count":   `{"data":[{"Count":{},"Risk":{"grass_pollen":"High"}}]}`,
		"count array":   `{"data":[{"Count":[3],"Risk":{"grass_pollen":"High"}}]}`,
		"not json":      `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, body, http.StatusOK)
			_, err := client.Pollen(context.Background(), 1, 2)
			require.Error(t, err)
		})
	}
}

func TestPollenStatusError(t *testing.T) {
	client := newTestClient(t, `{"message":"forbidden"}`, http.StatusForbidden)
	_, err := client.Pollen(context.Background(), 1, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
