package openweather

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanqian/lumee/internal/domain/weather"
)

// airVersions are tried in order; 2.5 stays available on free plans.
var airVersions = []string{"3.0", "2.5"}

var airFamilies = map[string]string{"3.0": familyAir30, "2.5": familyAir25}

type airResponse struct {
	List []airEntry `json:"list" validate:"required,min=1,dive"`
}

type airEntry struct {
	Dt         int64         `json:"dt"`
	Components airComponents `json:"components"`
}

type airComponents struct {
	PM25 *float64 `json:"pm2_5" validate:"required,gte=0"`
	PM10 *float64 `json:"pm10" validate:"required,gte=0"`
}

// AirQuality returns the latest particulate reading, falling back through
// the API versions until one yields a valid payload.
func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (weather.AirReading, error) {
	var errs []error
	for _, version := range airVersions {
		reading, err := c.airQuality(ctx, version, lat, lon)
		if err == nil {
			return reading, nil
		}
		c.logger.Debug("air pollution version failed", "version", version, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return weather.AirReading{}, errors.Join(errs...)
}

func (c *Client) airQuality(ctx context.Context, version string, lat, lon float64) (weather.AirReading, error) {
	var raw airResponse
	if err := c.get(ctx, airFamilies[version], "/data/"+version+"/air_pollution", coordParams(lat, lon), &raw); err != nil {
		return weather.AirReading{}, err
	}
	if err := c.validate.Struct(raw); err != nil {
		return weather.AirReading{}, fmt.Errorf("invalid air pollution %s payload: %w", version, err)
	}
	components := raw.List[0].Components
	return weather.AirReading{PM25: *components.PM25, PM10: *components.PM10}, nil
}
