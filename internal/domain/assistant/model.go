package assistant

import (
	"time"

	"github.com/yanqian/lumee/internal/domain/geo"
	"github.com/yanqian/lumee/internal/domain/weather"
)

// SchedulePolicy decides between a schedule-derived place and device
// coordinates when the user names no place.
type SchedulePolicy string

const (
	PreferSchedule SchedulePolicy = "prefer_schedule"
	PreferDevice   SchedulePolicy = "prefer_device"
)

// Config drives the chat service and orchestrator.
type Config struct {
	Model              string
	Temperature        float32
	Location           *time.Location
	HistoryWindow      int
	HistoryTokenBudget int
	SchedulePolicy     SchedulePolicy
	GraphPoints        int
	GraphStepHours     int
}

// ChatRequest is one user utterance.
type ChatRequest struct {
	UserInput string      `json:"userInput" validate:"required,max=1000"`
	Coords    *geo.Coords `json:"coords,omitempty"`
	UserID    string      `json:"userId,omitempty" validate:"max=128"`
	SessionID string      `json:"sessionId,omitempty" validate:"max=128"`
}

// ChatResponse is the reply with optional structured attachments.
type ChatResponse struct {
	Reply     string       `json:"reply"`
	Graph     []GraphPoint `json:"graph,omitempty"`
	Dust      *DustSummary `json:"dust,omitempty"`
	SessionID string       `json:"sessionId"`
}

// GraphPoint is one temperature sample labeled with a 12-hour clock hour.
type GraphPoint struct {
	Hour string `json:"hour"`
	Temp int    `json:"temp"`
}

// DustSummary is the PM2.5 value with its localized grade.
type DustSummary struct {
	Value float64 `json:"value"`
	Level string  `json:"level"`
}

// ResponseContext is everything the final LLM call and the assembler need.
type ResponseContext struct {
	Location    string
	Coords      geo.Coords
	Date        time.Time
	DateLabel   string
	IsToday     bool
	Weather     *weather.Snapshot
	Air         *weather.AirQuality
	Pollen      *weather.PollenRecord
	Graph       []GraphPoint
	Requested   []Domain
	Unavailable []Domain
	Outputs     []ToolOutput
}

// AllUnavailable reports whether every requested source failed.
func (rc ResponseContext) AllUnavailable() bool {
	return len(rc.Requested) > 0 && len(rc.Unavailable) == len(rc.Requested)
}
