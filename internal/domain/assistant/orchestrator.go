package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/lumee/internal/domain/extract"
	"github.com/yanqian/lumee/internal/domain/geo"
	"github.com/yanqian/lumee/internal/domain/profile"
	"github.com/yanqian/lumee/internal/domain/weather"
	apperrors "github.com/yanqian/lumee/pkg/errors"
	"github.com/yanqian/lumee/pkg/metrics"
)

// CodeResolutionFailed marks errors whose message is a clarification for the user.
const CodeResolutionFailed = "resolution_failed"

// currentWindow is how close a target must be to now to use current conditions.
const currentWindow = 30 * time.Minute

// Input is one orchestration pass.
type Input struct {
	Utterance string
	Language  string
	Features  FeatureSet
	Device    *geo.Coords
	Profile   *profile.Profile
	Plan      []ToolRequest
	Now       time.Time
}

// Orchestrator resolves the target and fetches the data a tool plan needs.
type Orchestrator struct {
	cfg      Config
	resolver geo.Resolver
	gateway  weather.Gateway
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

func NewOrchestrator(cfg Config, resolver geo.Resolver, gateway weather.Gateway, recorder *metrics.Recorder, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		resolver: resolver,
		gateway:  gateway,
		metrics:  recorder,
		logger:   logger.With("component", "assistant.orchestrator"),
	}
}

// Run resolves place and date, fetches every requested source concurrently
// and assembles the context. Resolution failures are returned before any
// data fetch as CodeResolutionFailed errors carrying the user-facing text.
func (o *Orchestrator) Run(ctx context.Context, in Input) (ResponseContext, error) {
	now := in.Now
	if o.cfg.Location != nil {
		now = now.In(o.cfg.Location)
	}
	target := o.resolveDate(in, now)

	name := o.resolvePlaceName(in, target)
	if name == "" && in.Device == nil {
		return ResponseContext{}, apperrors.Wrap(CodeResolutionFailed, clarificationMessage(in.Language), nil)
	}
	place, err := o.resolver.Resolve(ctx, geo.Query{Name: name, Device: in.Device, Language: in.Language})
	if err != nil {
		if errors.Is(err, geo.ErrLocationNotFound) {
			return ResponseContext{}, apperrors.Wrap(CodeResolutionFailed, notFoundMessage(name, in.Language), err)
		}
		return ResponseContext{}, fmt.Errorf("resolve location: %w", err)
	}

	var asOf *time.Time
	if absDuration(target.Sub(now)) >= currentWindow {
		bucket := time.Unix(extract.NearestForecastBucket(target), 0)
		asOf = &bucket
	}

	rc := ResponseContext{
		Location:  place.Name,
		Coords:    place.Coords,
		Date:      target,
		DateLabel: extract.DateLabel(target, in.Language),
		IsToday:   extract.DateResult{Time: target}.IsToday(now),
		Requested: planDomains(in.Plan),
	}
	for _, req := range in.Plan {
		o.metrics.ToolCall(req.Name)
	}
	o.logger.Info("fetching data",
		"location", place.Name,
		"source", place.Source,
		"date", target.Format(time.RFC3339),
		"domains", rc.Requested,
	)

	lat, lon := place.Coords.Lat, place.Coords.Lon
	var g errgroup.Group
	for _, d := range rc.Requested {
		switch d {
		case DomainWeather:
			g.Go(func() error {
				rc.Weather = o.gateway.Weather(ctx, lat, lon, asOf)
				return nil
			})
		case DomainAir:
			g.Go(func() error {
				rc.Air = o.gateway.AirQuality(ctx, lat, lon)
				return nil
			})
		case DomainPollen:
			g.Go(func() error {
				rc.Pollen = o.gateway.Pollen(ctx, lat, lon)
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, d := range rc.Requested {
		if !rc.available(d) {
			rc.Unavailable = append(rc.Unavailable, d)
		}
	}

	if rc.Weather != nil && (graphRequested(in.Plan) || in.Features.Has(FeatureGraph)) {
		rc.Graph = BuildGraph(rc.Weather.Hourly, in.Now, rc.Weather.TimezoneOffset, o.graphPoints(), o.cfg.GraphStepHours)
	}

	rc.Outputs = o.buildOutputs(in, rc)
	return rc, nil
}

func (o *Orchestrator) resolveDate(in Input, now time.Time) time.Time {
	if arg := dateArgument(in.Plan); arg != "" {
		if t, ok := extract.ParseDateArgument(arg, now); ok {
			return t
		}
		o.logger.Debug("unparseable date argument", "date", arg)
	}
	return extract.ExtractDate(in.Utterance, now).Time
}

// resolvePlaceName returns the name to geocode, or "" to use device coordinates.
// The utterance is only searched for a place when no LLM call was made.
func (o *Orchestrator) resolvePlaceName(in Input, date time.Time) string {
	if name := explicitLocation(in.Plan); name != "" {
		return name
	}
	if !llmPlanned(in.Plan) {
		if name, ok := extract.ExtractLocation(in.Utterance); ok {
			return name
		}
	}
	if in.Profile == nil {
		return ""
	}
	if o.cfg.SchedulePolicy == PreferDevice && in.Device != nil {
		return ""
	}
	if name, ok := profile.ScheduleLocation(*in.Profile, date); ok {
		o.logger.Info("using schedule location", "location", name)
		return name
	}
	return ""
}

func (o *Orchestrator) graphPoints() int {
	if o.cfg.GraphPoints <= 0 {
		return 6
	}
	return o.cfg.GraphPoints
}

func (o *Orchestrator) buildOutputs(in Input, rc ResponseContext) []ToolOutput {
	outputs := make([]ToolOutput, 0, len(in.Plan))
	for _, req := range in.Plan {
		payload := ToolPayload{Location: rc.Location, Date: rc.DateLabel}
		for _, d := range req.Domains {
			switch d {
			case DomainWeather:
				payload.Weather = newWeatherPayload(rc.Weather, o.cfg.Location, in.Language)
			case DomainAir:
				payload.Air = newAirPayload(rc.Air, in.Language)
			case DomainPollen:
				payload.Pollen = newPollenPayload(rc.Pollen, in.Language)
			}
			if !rc.available(d) {
				payload.Unavailable = append(payload.Unavailable, d)
			}
		}
		outputs = append(outputs, ToolOutput{CallID: req.ID, Name: req.Name, Payload: payload})
	}
	return outputs
}

func (rc ResponseContext) available(d Domain) bool {
	switch d {
	case DomainWeather:
		return rc.Weather != nil
	case DomainAir:
		return rc.Air != nil
	case DomainPollen:
		return rc.Pollen != nil
	}
	return false
}
