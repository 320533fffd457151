package assistant

import (
	"fmt"
	"math"
	"time"

	"github.com/yanqian/lumee/internal/domain/weather"
)

// BuildGraph samples the hourly series at step-hour intervals starting at the
// top of the current local hour. Each point takes the closest sample.
func BuildGraph(hourly []weather.HourlyPoint, now time.Time, offsetSeconds, points, stepHours int) []GraphPoint {
	if len(hourly) == 0 || points <= 0 {
		return nil
	}
	if stepHours <= 0 {
		stepHours = 3
	}
	offset := time.Duration(offsetSeconds) * time.Second
	local := now.UTC().Add(offset)
	localHourStart := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, time.UTC)
	start := localHourStart.Add(-offset)

	graph := make([]GraphPoint, 0, points)
	for i := 0; i < points; i++ {
		target := start.Add(time.Duration(i*stepHours) * time.Hour)
		sample := closestHourly(hourly, target)
		graph = append(graph, GraphPoint{
			Hour: hourLabel(target.Add(offset).Hour()),
			Temp: int(math.Round(sample.Temp)),
		})
	}
	return graph
}

func closestHourly(hourly []weather.HourlyPoint, at time.Time) weather.HourlyPoint {
	best := hourly[0]
	bestDiff := absDuration(best.Time.Sub(at))
	for _, h := range hourly[1:] {
		if diff := absDuration(h.Time.Sub(at)); diff < bestDiff {
			best, bestDiff = h, diff
		}
	}
	return best
}

func hourLabel(hour int) string {
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d%s", h, suffix)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
