package weather

import "time"

// Observation is one provider sample, either current conditions or an hourly forecast point.
type Observation struct {
	Time       time.Time
	Temp       float64
	FeelsLike  float64
	Condition  string
	Icon       string
	Humidity   int
	UVI        float64
	Clouds     int
	DewPoint   float64
	Visibility int
	WindSpeed  float64
	WindDeg    int
	// Pop is the precipitation probability in [0,1]; current conditions carry none.
	Pop     float64
	Sunrise time.Time
	Sunset  time.Time
}

// Forecast is the normalized provider response for a coordinate pair.
type Forecast struct {
	Current        Observation
	Hourly         []Observation
	TimezoneOffset int
}

// HourlyPoint is a timestamped temperature sample of the snapshot series.
type HourlyPoint struct {
	Time time.Time `json:"time"`
	Temp float64   `json:"temp"`
	Pop  float64   `json:"pop"`
}

// Snapshot is the weather view handed to the LLM and the graph builder.
type Snapshot struct {
	ObservedAt          time.Time     `json:"observedAt"`
	Forecasted          bool          `json:"forecasted"`
	Temp                int           `json:"temp"`
	FeelsLike           int           `json:"feelsLike"`
	TempMin             int           `json:"tempMin"`
	TempMax             int           `json:"tempMax"`
	Condition           string        `json:"condition"`
	Icon                string        `json:"icon,omitempty"`
	Humidity            int           `json:"humidity"`
	UVI                 float64       `json:"uvi"`
	UVLevel             string        `json:"uvLevel"`
	Clouds              int           `json:"clouds"`
	DewPoint            float64       `json:"dewPoint"`
	DewComfort          string        `json:"dewComfort"`
	Visibility          int           `json:"visibility"`
	WindSpeed           float64       `json:"windSpeed"`
	WindDeg             int           `json:"windDeg"`
	WindDirection       string        `json:"windDirection"`
	PrecipitationChance int           `json:"precipitationChance"`
	Sunrise             time.Time     `json:"sunrise"`
	Sunset              time.Time     `json:"sunset"`
	TimezoneOffset      int           `json:"timezoneOffset"`
	Hourly              []HourlyPoint `json:"-"`
}

// AirReading is the raw particulate concentration returned by a provider, in µg/m³.
type AirReading struct {
	PM25 float64
	PM10 float64
}

// AirQuality is an AirReading with its derived grade.
type AirQuality struct {
	PM25  float64  `json:"pm25"`
	PM10  float64  `json:"pm10"`
	Grade AirGrade `json:"grade"`
}

// PollenReading is a single species entry in provider order.
type PollenReading struct {
	Type  string
	Risk  string
	Count int
}

// PollenReport is the validated provider response.
type PollenReport struct {
	Readings  []PollenReading
	UpdatedAt time.Time
}

// PollenRecord is the single most relevant species.
type PollenRecord struct {
	Type       string    `json:"type"`
	Risk       string    `json:"risk"`
	Count      int       `json:"count"`
	ObservedAt time.Time `json:"observedAt"`
}
