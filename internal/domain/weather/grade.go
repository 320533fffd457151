package weather

import (
	"math"
	"strings"
)

// AirGrade is the PM2.5 severity band.
type AirGrade int

const (
	AirGood AirGrade = iota
	AirModerate
	AirPoor
	AirVeryPoor
)

// GradePM25 classifies a PM2.5 concentration. Bands are closed on their upper
// bound so fractional readings such as 15.5 land in the next band and every
// value maps to exactly one grade.
func GradePM25(pm25 float64) AirGrade {
	switch {
	case pm25 <= 15:
		return AirGood
	case pm25 <= 35:
		return AirModerate
	case pm25 <= 75:
		return AirPoor
	default:
		return AirVeryPoor
	}
}

func (g AirGrade) String() string {
	switch g {
	case AirGood:
		return "Good"
	case AirModerate:
		return "Moderate"
	case AirPoor:
		return "Poor"
	default:
		return "VeryPoor"
	}
}

// Label returns the display label in the given language.
func (g AirGrade) Label(lang string) string {
	if lang == "ko" {
		switch g {
		case AirGood:
			return "좋음"
		case AirModerate:
			return "보통"
		case AirPoor:
			return "나쁨"
		default:
			return "매우 나쁨"
		}
	}
	if g == AirVeryPoor {
		return "Very Poor"
	}
	return g.String()
}

func (g AirGrade) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// NewAirQuality grades a raw reading.
func NewAirQuality(r AirReading) AirQuality {
	return AirQuality{PM25: r.PM25, PM10: r.PM10, Grade: GradePM25(r.PM25)}
}

var riskPriority = map[string]int{
	"low":       1,
	"medium":    2,
	"moderate":  2,
	"high":      3,
	"very high": 4,
	"veryhigh":  4,
}

// RiskPriority ranks a provider risk label; unknown labels rank lowest.
func RiskPriority(risk string) int {
	return riskPriority[strings.ToLower(strings.TrimSpace(risk))]
}

// SelectPollen picks the reading with the highest risk. Ties keep the
// earliest reading in provider order.
func SelectPollen(report PollenReport) (PollenRecord, bool) {
	if len(report.Readings) == 0 {
		return PollenRecord{}, false
	}
	top := report.Readings[0]
	for _, r := range report.Readings[1:] {
		if RiskPriority(r.Risk) > RiskPriority(top.Risk) {
			top = r
		}
	}
	return PollenRecord{
		Type:       top.Type,
		Risk:       top.Risk,
		Count:      top.Count,
		ObservedAt: report.UpdatedAt,
	}, true
}

var pollenTypeLabels = map[string][2]string{
	"grass":   {"잔디 꽃가루", "grass pollen"},
	"tree":    {"나무 꽃가루", "tree pollen"},
	"weed":    {"잡초 꽃가루", "weed pollen"},
	"ragweed": {"돼지풀 꽃가루", "ragweed pollen"},
}

// PollenTypeLabel localizes a pollen species.
func PollenTypeLabel(kind, lang string) string {
	labels, ok := pollenTypeLabels[kind]
	if !ok {
		return kind
	}
	if lang == "ko" {
		return labels[0]
	}
	return labels[1]
}

// PollenRiskLabel localizes a pollen risk level.
func PollenRiskLabel(risk, lang string) string {
	ko := [...]string{"정보 없음", "낮음", "보통", "높음", "매우 높음"}
	en := [...]string{"unknown", "low", "moderate", "high", "very high"}
	p := RiskPriority(risk)
	if lang == "ko" {
		return ko[p]
	}
	return en[p]
}

// UVLevel bands a UV index.
func UVLevel(uvi float64) string {
	switch {
	case uvi < 3:
		return "low"
	case uvi < 6:
		return "moderate"
	case uvi < 8:
		return "high"
	case uvi < 11:
		return "very_high"
	default:
		return "extreme"
	}
}

var windDirections = [...]string{"북", "북동", "동", "남동", "남", "남서", "서", "북서"}
var windDirectionsEN = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection converts a bearing in degrees to one of eight compass points.
func WindDirection(deg int, lang string) string {
	idx := int(math.Round(float64(((deg%360)+360)%360)/45)) % 8
	if lang == "ko" {
		return windDirections[idx]
	}
	return windDirectionsEN[idx]
}

// DewComfort bands a dew point in Celsius by how muggy it feels.
func DewComfort(dewPoint float64) string {
	switch {
	case dewPoint < 11:
		return "dry"
	case dewPoint < 16:
		return "comfortable"
	case dewPoint < 21:
		return "slightly_humid"
	case dewPoint < 25:
		return "humid"
	default:
		return "oppressive"
	}
}
