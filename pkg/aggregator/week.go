package aggregator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/portal"
	"github.com/travigo/srt-timetables/pkg/timetable"
	"github.com/travigo/srt-timetables/pkg/util"
)

const DaysInWeek = 7

type DayFetcher interface {
	FetchDay(ctx context.Context, origin timetable.Identifier, destination timetable.Identifier, date time.Time) timetable.DayResult
}

type Aggregator struct {
	Trips DayFetcher

	// Delay is the pause after every daily query
	Delay    time.Duration
	Days     int
	Location *time.Location
	Now      func() time.Time

	Observe func(timetable.DayResult)
}

// Dates returns the calendar days after today that make up the query window
func (a *Aggregator) Dates() []time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	location := a.Location
	if location == nil {
		location = time.Local
	}

	days := a.Days
	if days <= 0 {
		days = DaysInWeek
	}

	today := now().In(location)

	dates := make([]time.Time, 0, days)
	for offset := 1; offset <= days; offset++ {
		dates = append(dates, time.Date(today.Year(), today.Month(), today.Day()+offset, 0, 0, 0, 0, location))
	}

	return dates
}

// FetchWeek queries each day of the window in turn and folds the results by train
// number. Failed days count as days without trains.
func (a *Aggregator) FetchWeek(ctx context.Context, origin timetable.Identifier, destination timetable.Identifier) []timetable.AggregatedTrain {
	fold := NewFold()
	totalTrips := 0

	for _, date := range a.Dates() {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("Weekly fetch interrupted")
			break
		}

		dayName := date.Weekday().String()
		log.Info().Msgf("Checking %s (%s)...", dayName, portal.FormatDate(date))

		result := a.Trips.FetchDay(ctx, origin, destination, date)
		if a.Observe != nil {
			a.Observe(result)
		}

		log.Info().Str("outcome", string(result.Outcome)).Msgf("Found %d trips for %s", len(result.Trips), dayName)

		fold.AddAll(result.Trips)
		totalTrips += len(result.Trips)

		if err := util.Sleep(ctx, a.Delay); err != nil {
			break
		}
	}

	log.Info().
		Str("origin", origin.String()).
		Str("destination", destination.String()).
		Int("trips", totalTrips).
		Int("trains", fold.Len()).
		Msg("Weekly fetch complete")

	return fold.Trains()
}
