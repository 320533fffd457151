package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/yanqian/lumee/internal/domain/extract"
	"github.com/yanqian/lumee/internal/domain/weather"
	"github.com/yanqian/lumee/internal/infra/llm/chatgpt"
)

// CurrentLocation is the tool argument meaning "use the device position".
const CurrentLocation = "CURRENT_LOCATION"

const (
	ToolWeather     = "get_weather"
	ToolAirQuality  = "get_air_quality"
	ToolPollen      = "get_pollen_info"
	ToolFullWeather = "get_full_weather"
)

var toolDomains = map[string][]Domain{
	ToolWeather:     {DomainWeather},
	ToolAirQuality:  {DomainAir},
	ToolPollen:      {DomainPollen},
	ToolFullWeather: allDomains,
}

var domainTools = map[Domain]string{
	DomainWeather: ToolWeather,
	DomainAir:     ToolAirQuality,
	DomainPollen:  ToolPollen,
}

// ToolRequest is a validated tool call ready for the orchestrator.
type ToolRequest struct {
	ID      string
	Name    string
	Args    ToolArgs
	Domains []Domain
	// Local marks requests planned from keywords rather than by the LLM.
	Local bool
}

// ToolArgs are the arguments shared by every data tool.
type ToolArgs struct {
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`
	GraphNeeded bool   `json:"graph_needed,omitempty"`
}

// ToolOutput is the payload returned to the LLM for one tool call.
type ToolOutput struct {
	CallID  string
	Name    string
	Payload ToolPayload
}

// ToolPayload is serialized into the tool message.
type ToolPayload struct {
	Location    string          `json:"location"`
	Date        string          `json:"date"`
	Weather     *WeatherPayload `json:"weather,omitempty"`
	Air         *AirPayload     `json:"air,omitempty"`
	Pollen      *PollenPayload  `json:"pollen,omitempty"`
	Unavailable []Domain        `json:"unavailable,omitempty"`
}

type WeatherPayload struct {
	Temp          int     `json:"temp"`
	FeelsLike     int     `json:"feelsLike"`
	TempMax       int     `json:"tempMax"`
	TempMin       int     `json:"tempMin"`
	Condition     string  `json:"condition"`
	Humidity      int     `json:"humidity"`
	UVI           float64 `json:"uvi"`
	UVLevel       string  `json:"uvLevel"`
	Clouds        int     `json:"clouds"`
	DewPoint      float64 `json:"dew_point"`
	DewComfort    string  `json:"dewComfort"`
	Visibility    int     `json:"visibility"`
	Wind          float64 `json:"wind"`
	WindDirection string  `json:"windDirection"`
	Pop           int     `json:"pop"`
	Sunrise       string  `json:"sunrise,omitempty"`
	Sunset        string  `json:"sunset,omitempty"`
	Forecasted    bool    `json:"forecasted"`
}

type AirPayload struct {
	PM25  float64 `json:"pm2_5"`
	PM10  float64 `json:"pm10"`
	Grade string  `json:"grade"`
}

type PollenPayload struct {
	Type      string `json:"type"`
	TypeLabel string `json:"typeLabel"`
	Risk      string `json:"risk"`
	RiskLabel string `json:"riskLabel"`
	Count     int    `json:"count"`
}

var locationParam = map[string]any{
	"type":        "string",
	"description": "Place name only if the user explicitly named one in this message, otherwise CURRENT_LOCATION.",
}

var dateParam = map[string]any{
	"type":        "string",
	"description": "Target date or time as the user phrased it, or YYYY-MM-DD. Omit for now.",
}

// ToolDefinitions describes the fine-grained data tools.
func ToolDefinitions() []chatgpt.Tool {
	return []chatgpt.Tool{
		{
			Type: "function",
			Function: chatgpt.ToolFunction{
				Name:        ToolWeather,
				Description: "Current conditions or hourly forecast: temperature, feels-like, rain probability, humidity, wind, UV, clouds, visibility, dew point, sunrise and sunset.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"location": locationParam,
						"date":     dateParam,
						"graph_needed": map[string]any{
							"type":        "boolean",
							"description": "True when the user asks about temperature, a graph, or what to wear.",
						},
					},
				},
			},
		},
		{
			Type: "function",
			Function: chatgpt.ToolFunction{
				Name:        ToolAirQuality,
				Description: "Fine dust (PM2.5, PM10) and air quality grade. Use for air, dust and mask questions.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{"location": locationParam, "date": dateParam},
				},
			},
		},
		{
			Type: "function",
			Function: chatgpt.ToolFunction{
				Name:        ToolPollen,
				Description: "Pollen species with the highest risk. Use for pollen, allergy and mask questions.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{"location": locationParam, "date": dateParam},
				},
			},
		},
	}
}

// parseToolArguments decodes LLM arguments, repairing malformed JSON such as
// single quotes or trailing commas before giving up.
func parseToolArguments(raw string) (ToolArgs, error) {
	var args ToolArgs
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
		return args, nil
	}
	repaired, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return args, fmt.Errorf("repair tool arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return args, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}

// planFromToolCalls keeps the calls naming a known tool. Unknown names and
// undecodable arguments are reported through skipped.
func planFromToolCalls(calls []chatgpt.ToolCall) (plan []ToolRequest, skipped []error) {
	for _, call := range calls {
		domains, ok := toolDomains[call.Function.Name]
		if !ok {
			skipped = append(skipped, fmt.Errorf("unknown tool %q", call.Function.Name))
			continue
		}
		args, err := parseToolArguments(call.Function.Arguments)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", call.Function.Name, err))
			args = ToolArgs{}
		}
		plan = append(plan, ToolRequest{ID: call.ID, Name: call.Function.Name, Args: args, Domains: domains})
	}
	return plan, skipped
}

// planFromFeatures builds one local call per domain the features need.
func planFromFeatures(features FeatureSet) []ToolRequest {
	var plan []ToolRequest
	for _, d := range features.Domains() {
		name := domainTools[d]
		args := ToolArgs{}
		if d == DomainWeather {
			args.GraphNeeded = features.Has(FeatureGraph)
		}
		plan = append(plan, ToolRequest{ID: "local-" + name, Name: name, Args: args, Domains: []Domain{d}, Local: true})
	}
	return plan
}

// assistantToolMessage replays the accepted plan as the assistant turn that
// precedes the tool results.
func assistantToolMessage(content string, plan []ToolRequest) chatgpt.Message {
	calls := make([]chatgpt.ToolCall, 0, len(plan))
	for _, req := range plan {
		raw, _ := json.Marshal(req.Args)
		calls = append(calls, chatgpt.ToolCall{
			ID:       req.ID,
			Type:     "function",
			Function: chatgpt.ToolCallDefinition{Name: req.Name, Arguments: string(raw)},
		})
	}
	return chatgpt.Message{Role: "assistant", Content: content, ToolCalls: calls}
}

// explicitLocation returns the tool-supplied place, ignoring the sentinel and
// weather vocabulary the model sometimes puts there.
func explicitLocation(plan []ToolRequest) string {
	for _, req := range plan {
		loc := strings.TrimSpace(req.Args.Location)
		if loc == "" || strings.EqualFold(loc, CurrentLocation) || extract.IsWeatherTerm(loc) {
			continue
		}
		return extract.CanonicalPlace(loc)
	}
	return ""
}

// llmPlanned reports whether the LLM chose any of the calls. Its location
// argument, the sentinel included, is then authoritative over the utterance.
func llmPlanned(plan []ToolRequest) bool {
	for _, req := range plan {
		if !req.Local {
			return true
		}
	}
	return false
}

func dateArgument(plan []ToolRequest) string {
	for _, req := range plan {
		if d := strings.TrimSpace(req.Args.Date); d != "" {
			return d
		}
	}
	return ""
}

func graphRequested(plan []ToolRequest) bool {
	for _, req := range plan {
		if req.Args.GraphNeeded {
			return true
		}
	}
	return false
}

func planDomains(plan []ToolRequest) []Domain {
	seen := map[Domain]bool{}
	for _, req := range plan {
		for _, d := range req.Domains {
			seen[d] = true
		}
	}
	var out []Domain
	for _, d := range allDomains {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

func newWeatherPayload(s *weather.Snapshot, loc *time.Location, lang string) *WeatherPayload {
	if s == nil {
		return nil
	}
	p := &WeatherPayload{
		Temp:          s.Temp,
		FeelsLike:     s.FeelsLike,
		TempMax:       s.TempMax,
		TempMin:       s.TempMin,
		Condition:     s.Condition,
		Humidity:      s.Humidity,
		UVI:           s.UVI,
		UVLevel:       s.UVLevel,
		Clouds:        s.Clouds,
		DewPoint:      s.DewPoint,
		DewComfort:    s.DewComfort,
		Visibility:    s.Visibility,
		Wind:          s.WindSpeed,
		WindDirection: weather.WindDirection(s.WindDeg, lang),
		Pop:           s.PrecipitationChance,
		Forecasted:    s.Forecasted,
	}
	zone := time.FixedZone("local", s.TimezoneOffset)
	if s.TimezoneOffset == 0 && loc != nil {
		zone = loc
	}
	if !s.Sunrise.IsZero() {
		p.Sunrise = s.Sunrise.In(zone).Format("15:04")
	}
	if !s.Sunset.IsZero() {
		p.Sunset = s.Sunset.In(zone).Format("15:04")
	}
	return p
}

func newAirPayload(a *weather.AirQuality, lang string) *AirPayload {
	if a == nil {
		return nil
	}
	return &AirPayload{PM25: a.PM25, PM10: a.PM10, Grade: a.Grade.Label(lang)}
}

func newPollenPayload(p *weather.PollenRecord, lang string) *PollenPayload {
	if p == nil {
		return nil
	}
	return &PollenPayload{
		Type:      p.Type,
		TypeLabel: weather.PollenTypeLabel(p.Type, lang),
		Risk:      p.Risk,
		RiskLabel: weather.PollenRiskLabel(p.Risk, lang),
		Count:     p.Count,
	}
}
