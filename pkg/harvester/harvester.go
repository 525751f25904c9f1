package harvester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
	"github.com/travigo/srt-timetables/pkg/config"
	"github.com/travigo/srt-timetables/pkg/output"
	"github.com/travigo/srt-timetables/pkg/stats"
	"github.com/travigo/srt-timetables/pkg/timetable"
	"github.com/travigo/srt-timetables/pkg/util"
)

var ErrInterrupted = errors.New("harvest interrupted")

type StationSource interface {
	FetchStations(ctx context.Context) timetable.StationsResult
}

type WeekFetcher interface {
	FetchWeek(ctx context.Context, origin timetable.Identifier, destination timetable.Identifier) []timetable.AggregatedTrain
}

type RouteStore interface {
	SaveStations(stations []timetable.Station) error
	SaveRoute(forward []timetable.AggregatedTrain, backward []timetable.AggregatedTrain, from timetable.Station, to timetable.Station) (bool, error)
	RoutePath(from timetable.Station, to timetable.Station) string
}

type StationCache interface {
	Get(ctx context.Context) ([]timetable.Station, bool)
	Set(ctx context.Context, stations []timetable.Station) error
}

// Harvester walks the configured routes one at a time over a single portal session
type Harvester struct {
	Stations StationSource
	Weeks    WeekFetcher
	Store    RouteStore

	Sinks        []output.Sink
	StationCache StationCache
	Metrics      *stats.Metrics

	// Delay is the pause between the two directions of a route and between pairs
	Delay time.Duration
	// ErrorDelay replaces Delay after a failed pair
	ErrorDelay time.Duration
	IgnoreCase bool

	Now func() time.Time
}

func (h *Harvester) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}

	return time.Now()
}

func (h *Harvester) Run(ctx context.Context, routes []config.Route) Report {
	report := Report{StartedAt: h.now()}

	stations := h.loadStations(ctx)
	report.Stations = len(stations)

	for _, route := range routes {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("Harvest interrupted, skipping remaining routes")
			break
		}

		report.Routes = append(report.Routes, h.runRoute(ctx, route, stations))
	}

	h.finish(&report)

	return report
}

// RunPairs harvests every unordered pair of stations in the directory. A positive
// limit caps the number of pairs.
func (h *Harvester) RunPairs(ctx context.Context, limit int) Report {
	report := Report{StartedAt: h.now()}

	stations := h.loadStations(ctx)
	report.Stations = len(stations)

	pairs := timetable.AllStationPairs(stations)
	log.Info().Msgf("Generated %d station pairs", len(pairs))

	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}

	for i, pair := range pairs {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("Harvest interrupted, skipping remaining pairs")
			break
		}

		log.Info().Msgf("Processing pair %d/%d: %s <-> %s", i+1, len(pairs), pair.From.StationNameEn, pair.To.StationNameEn)

		route := config.Route{Source: pair.From.StationNameEn, Destination: pair.To.StationNameEn}
		result := h.protect(route, func() RouteResult {
			return h.harvestPair(ctx, route, pair.From, pair.To)
		})
		report.Routes = append(report.Routes, result)

		if i == len(pairs)-1 {
			break
		}

		delay := h.Delay
		if result.Status == StatusFailed {
			delay = h.ErrorDelay
		}
		if err := util.Sleep(ctx, delay); err != nil {
			log.Warn().Err(err).Msg("Harvest interrupted, skipping remaining pairs")
			break
		}
	}

	h.finish(&report)

	return report
}

func (h *Harvester) loadStations(ctx context.Context) []timetable.Station {
	result := h.Stations.FetchStations(ctx)
	if h.Metrics != nil {
		h.Metrics.ObserveStations(result)
	}

	if result.Outcome == timetable.OutcomeSuccess {
		log.Info().Msgf("Fetched %d stations", len(result.Stations))

		if err := h.Store.SaveStations(result.Stations); err != nil {
			log.Error().Err(err).Msg("Failed to save station data")
		}

		if h.StationCache != nil {
			if err := h.StationCache.Set(ctx, result.Stations); err != nil {
				log.Error().Err(err).Msg("Failed to cache station data")
			}
		}

		return result.Stations
	}

	log.Error().Err(result.Err).Str("outcome", string(result.Outcome)).Msg("Station directory unavailable")

	if h.StationCache != nil {
		if cached, found := h.StationCache.Get(ctx); found {
			log.Warn().Int("stations", len(cached)).Msg("Using cached station directory")
			return cached
		}
	}

	return nil
}

func (h *Harvester) runRoute(ctx context.Context, route config.Route, stations []timetable.Station) RouteResult {
	fromStation, fromFound := timetable.FindStation(stations, route.Source, h.IgnoreCase)
	toStation, toFound := timetable.FindStation(stations, route.Destination, h.IgnoreCase)

	if !fromFound || !toFound {
		log.Error().
			Bool("source_found", fromFound).
			Bool("destination_found", toFound).
			Msgf("Required stations not found for route: %s", route)

		result := RouteResult{
			Source:      route.Source,
			Destination: route.Destination,
			Status:      StatusSkippedUnresolved,
		}
		h.observeRoute(result)

		return result
	}

	return h.protect(route, func() RouteResult {
		return h.harvestPair(ctx, route, fromStation, toStation)
	})
}

// protect turns a panic inside one route into a failed result so the batch continues
func (h *Harvester) protect(route config.Route, harvest func() RouteResult) RouteResult {
	startTime := h.now()

	var result RouteResult
	var catcher panics.Catcher
	catcher.Try(func() {
		result = harvest()
	})

	if recovered := catcher.Recovered(); recovered != nil {
		result = RouteResult{
			Source:      route.Source,
			Destination: route.Destination,
			Status:      StatusFailed,
			Err:         recovered.AsError(),
		}
	}

	result.Duration = h.now().Sub(startTime)

	if result.Status == StatusFailed {
		log.Error().Err(result.Err).Str("route", route.String()).Msg("Error processing route")
	}

	h.observeRoute(result)

	return result
}

func (h *Harvester) harvestPair(ctx context.Context, route config.Route, from timetable.Station, to timetable.Station) RouteResult {
	result := RouteResult{
		Source:      route.Source,
		Destination: route.Destination,
		Slug:        timetable.RouteSlug(from, to),
	}

	log.Info().Msgf("Processing route: %s to %s", from.StationNameEn, to.StationNameEn)

	forward := h.Weeks.FetchWeek(ctx, from.StationID, to.StationID)
	if err := util.Sleep(ctx, h.Delay); err != nil {
		return result.failed(fmt.Errorf("%w: %w", ErrInterrupted, err))
	}

	log.Info().Msgf("Fetching trips from %s to %s...", to.StationNameEn, from.StationNameEn)
	backward := h.Weeks.FetchWeek(ctx, to.StationID, from.StationID)

	// A cancelled week is partial and must not replace the previous file
	if err := ctx.Err(); err != nil {
		return result.failed(fmt.Errorf("%w: %w", ErrInterrupted, err))
	}

	result.Forward = len(forward)
	result.Backward = len(backward)

	saved, err := h.Store.SaveRoute(forward, backward, from, to)
	if err != nil {
		return result.failed(err)
	}

	if !saved {
		log.Info().Str("route", result.Slug).Msg("No trips found for this route, skipping...")
		result.Status = StatusSkippedEmpty
		return result
	}

	result.Status = StatusSaved
	result.Path = h.Store.RoutePath(from, to)

	h.publish(ctx, output.SavedRoute{
		Slug: result.Slug,
		Path: result.Path,
		From: from,
		To:   to,
		Schedule: timetable.CombinedRouteSchedule{
			Forward:  forward,
			Backward: backward,
		},
		HarvestedAt: h.now(),
	})

	return result
}

func (h *Harvester) publish(ctx context.Context, route output.SavedRoute) {
	for _, sink := range h.Sinks {
		if err := sink.Publish(ctx, route); err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Str("route", route.Slug).Msg("Failed to publish route schedule")
		}
	}
}

func (h *Harvester) observeRoute(result RouteResult) {
	if h.Metrics != nil {
		h.Metrics.ObserveRoute(string(result.Status), result.Duration)
	}
}

func (h *Harvester) finish(report *Report) {
	report.FinishedAt = h.now()
	report.Log()

	if h.Metrics != nil {
		h.Metrics.Finished(report.FinishedAt)
	}
}
