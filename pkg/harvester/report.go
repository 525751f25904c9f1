package harvester

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RouteStatus string

const (
	StatusSaved             RouteStatus = "saved"
	StatusSkippedUnresolved RouteStatus = "skipped-unresolved"
	StatusSkippedEmpty      RouteStatus = "skipped-empty"
	StatusFailed            RouteStatus = "failed"
)

type RouteResult struct {
	Source      string
	Destination string

	Slug   string
	Path   string
	Status RouteStatus

	Forward  int
	Backward int

	Duration time.Duration
	Err      error
}

func (r RouteResult) failed(err error) RouteResult {
	r.Status = StatusFailed
	r.Err = err

	return r
}

type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Stations int
	Routes   []RouteResult
}

func (r Report) Count(status RouteStatus) int {
	count := 0
	for _, route := range r.Routes {
		if route.Status == status {
			count++
		}
	}

	return count
}

func (r Report) Log() {
	for _, route := range r.Routes {
		event := log.Info()
		if route.Status == StatusFailed {
			event = log.Warn().Err(route.Err)
		}

		event.
			Str("source", route.Source).
			Str("destination", route.Destination).
			Str("status", string(route.Status)).
			Int("forward", route.Forward).
			Int("backward", route.Backward).
			Msg("Route result")
	}

	log.Info().
		Int("stations", r.Stations).
		Int("routes", len(r.Routes)).
		Int("saved", r.Count(StatusSaved)).
		Int("unresolved", r.Count(StatusSkippedUnresolved)).
		Int("empty", r.Count(StatusSkippedEmpty)).
		Int("failed", r.Count(StatusFailed)).
		Str("duration", r.FinishedAt.Sub(r.StartedAt).String()).
		Msg("Scraping completed")
}
