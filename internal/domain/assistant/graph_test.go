package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/internal/domain/weather"
)

func hourlySeries(start time.Time, hours int) []weather.HourlyPoint {
	points := make([]weather.HourlyPoint, 0, hours)
	for i := 0; i < hours; i++ {
		points = append(points, weather.HourlyPoint{Time: start.Add(time.Duration(i) * time.Hour), Temp: float64(10 + i)})
	}
	return points
}

func TestBuildGraphLabelsAndSamples(t *testing.T) {
	start := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	now := start.Add(20 * time.Minute)

	graph := BuildGraph(hourlySeries(start, 24), now, 0, 6, 3)

	require.Equal(t, []GraphPoint{
		{Hour: "10am", Temp: 10},
		{Hour: "1pm", Temp: 13},
		{Hour: "4pm", Temp: 16},
		{Hour: "7pm", Temp: 19},
		{Hour: "10pm", Temp: 22},
		{Hour: "1am", Temp: 25},
	}, graph)
}

func TestBuildGraphUsesLocalOffset(t *testing.T) {
	// 01:00 UTC is 10:00 in UTC+9.
	start := time.Date(2025, 6, 4, 1, 0, 0, 0, time.UTC)
	graph := BuildGraph(hourlySeries(start, 24), start.Add(5*time.Minute), 9*3600, 6, 3)

	require.Len(t, graph, 6)
	require.Equal(t, "10am", graph[0].Hour)
	require.Equal(t, "1am", graph[5].Hour)
}

func TestBuildGraphClosestSample(t *testing.T) {
	start := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	sparse := []weather.HourlyPoint{
		{Time: start, Temp: 20.4},
		{Time: start.Add(4 * time.Hour), Temp: 25.6},
	}
	graph := BuildGraph(sparse, start, 0, 2, 3)
	require.Equal(t, []GraphPoint{{Hour: "10am", Temp: 20}, {Hour: "1pm", Temp: 26}}, graph)
}

func TestBuildGraphEmpty(t *testing.T) {
	require.Nil(t, BuildGraph(nil, time.Now(), 0, 6, 3))
}
