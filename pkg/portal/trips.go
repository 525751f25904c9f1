package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

const DateFormat = "02/01/2006"

type tripRecord struct {
	DepartureTime   string               `json:"departureTime"`
	ArrivalTime     string               `json:"arrivalTime"`
	TrainTypeNameEn string               `json:"trainTypeNameEn"`
	TrainNo         timetable.Identifier `json:"trainNo"`
}

func FormatDate(date time.Time) string {
	return date.Format(DateFormat)
}

// FetchDay runs a single-date trip search. An empty result and a failed request both
// come back without trips; the Outcome says which one it was.
func (c *Client) FetchDay(ctx context.Context, origin timetable.Identifier, destination timetable.Identifier, date time.Time) timetable.DayResult {
	form := url.Values{}
	form.Set("tripType", "1")
	form.Set("provinceStartId", origin.String())
	form.Set("provinceEndId", destination.String())
	form.Set("dateStart", FormatDate(date))
	form.Set("dateEnd", "")
	form.Set("viewStateHolder", "")

	body, err := c.Page.PostForm(ctx, c.endpoint(tripEndpoint), form)
	if err != nil {
		log.Error().Err(err).
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Str("date", FormatDate(date)).
			Msg("Failed to fetch trips")
		return timetable.DayResult{Trips: []timetable.RawTrip{}, Outcome: timetable.OutcomeError, Err: err}
	}

	trips, err := parseTrips(body, date.Weekday())
	if err != nil {
		log.Error().Err(err).
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Str("date", FormatDate(date)).
			Msg("Failed to parse trip response")
		return timetable.DayResult{Trips: []timetable.RawTrip{}, Outcome: timetable.OutcomeError, Err: err}
	}

	if len(trips) == 0 {
		return timetable.DayResult{Trips: trips, Outcome: timetable.OutcomeEmpty}
	}

	return timetable.DayResult{Trips: trips, Outcome: timetable.OutcomeSuccess}
}

func parseTrips(body []byte, operatingDay time.Weekday) ([]timetable.RawTrip, error) {
	var response envelope[tripRecord]
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode trip envelope: %w", err)
	}

	trips := make([]timetable.RawTrip, 0, len(response.Data))
	for _, record := range response.Data {
		trips = append(trips, timetable.RawTrip{
			DepartureTime:   record.DepartureTime,
			ArrivalTime:     record.ArrivalTime,
			TrainTypeNameEn: record.TrainTypeNameEn,
			TrainNo:         record.TrainNo.String(),
			OperatingDay:    operatingDay,
		})
	}

	return trips, nil
}
