package openweather

import (
	"context"
	"fmt"
	"time"

	"github.com/yanqian/lumee/internal/domain/weather"
)

type oneCallResponse struct {
	TimezoneOffset int            `json:"timezone_offset"`
	Current        oneCallPoint   `json:"current"`
	Hourly         []oneCallPoint `json:"hourly" validate:"required,min=1,dive"`
}

type oneCallPoint struct {
	Dt         int64       `json:"dt" validate:"required"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
	Temp       *float64    `json:"temp" validate:"required"`
	FeelsLike  float64     `json:"feels_like"`
	Humidity   int         `json:"humidity"`
	DewPoint   float64     `json:"dew_point"`
	UVI        float64     `json:"uvi"`
	Clouds     int         `json:"clouds"`
	Visibility int         `json:"visibility"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    int         `json:"wind_deg"`
	Pop        float64     `json:"pop"`
	Weather    []condition `json:"weather"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Forecast fetches current conditions and the 48 hour hourly forecast.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	params := coordParams(lat, lon)
	params.Set("exclude", "minutely,daily,alerts")
	params.Set("units", "metric")
	params.Set("lang", c.language)

	var raw oneCallResponse
	if err := c.get(ctx, familyOneCall, "/data/3.0/onecall", params, &raw); err != nil {
		return weather.Forecast{}, err
	}
	if err := c.validate.Struct(raw); err != nil {
		return weather.Forecast{}, fmt.Errorf("invalid onecall payload: %w", err)
	}
	return raw.toForecast(), nil
}

func (r oneCallResponse) toForecast() weather.Forecast {
	hourly := make([]weather.Observation, 0, len(r.Hourly))
	for _, h := range r.Hourly {
		hourly = append(hourly, h.toObservation())
	}
	return weather.Forecast{
		Current:        r.Current.toObservation(),
		Hourly:         hourly,
		TimezoneOffset: r.TimezoneOffset,
	}
}

func (p oneCallPoint) toObservation() weather.Observation {
	obs := weather.Observation{
		Time:       time.Unix(p.Dt, 0).UTC(),
		FeelsLike:  p.FeelsLike,
		Humidity:   p.Humidity,
		UVI:        p.UVI,
		Clouds:     p.Clouds,
		DewPoint:   p.DewPoint,
		Visibility: p.Visibility,
		WindSpeed:  p.WindSpeed,
		WindDeg:    p.WindDeg,
		Pop:        p.Pop,
	}
	if p.Temp != nil {
		obs.Temp = *p.Temp
	}
	if len(p.Weather) > 0 {
		obs.Condition = p.Weather[0].Description
		obs.Icon = p.Weather[0].Icon
	}
	if p.Sunrise > 0 {
		obs.Sunrise = time.Unix(p.Sunrise, 0).UTC()
	}
	if p.Sunset > 0 {
		obs.Sunset = time.Unix(p.Sunset, 0).UTC()
	}
	return obs
}
