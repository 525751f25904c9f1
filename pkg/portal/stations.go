package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

type stationRecord struct {
	StationID     timetable.Identifier `json:"stationId"`
	StationNo     timetable.Identifier `json:"stationNo"`
	StationNameEn string               `json:"stationNameEn"`
	StationCodeEn string               `json:"stationCodeEn"`
}

func (r stationRecord) toStation() timetable.Station {
	stationNo, err := strconv.Atoi(r.StationNo.String())
	if err != nil && r.StationNo != "" {
		log.Debug().Str("station", r.StationNameEn).Str("stationNo", r.StationNo.String()).Msg("Non-numeric station number, storing 0")
	}

	return timetable.Station{
		StationID:     r.StationID,
		StationNo:     stationNo,
		StationNameEn: timetable.SanitiseStationName(r.StationNameEn),
		StationCodeEn: r.StationCodeEn,
	}
}

// FetchStations retrieves the station directory. Failures are logged and reported
// in the result, never returned as an error.
func (c *Client) FetchStations(ctx context.Context) timetable.StationsResult {
	log.Info().Msg("Fetching station data from portal")

	viewState, err := c.Page.ViewState(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Could not read view state, continuing without it")
		viewState = ""
	}

	form := url.Values{}
	form.Set("LineId", "")
	form.Set("viewStateHolder", viewState)

	body, err := c.Page.PostForm(ctx, c.endpoint(stationEndpoint), form)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch stations")
		return timetable.StationsResult{Outcome: timetable.OutcomeError, Err: err}
	}

	stations, err := parseStations(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse station response")
		return timetable.StationsResult{Outcome: timetable.OutcomeError, Err: err}
	}

	if len(stations) == 0 {
		log.Warn().Msg("Portal returned no stations")
		return timetable.StationsResult{Stations: stations, Outcome: timetable.OutcomeEmpty}
	}

	return timetable.StationsResult{Stations: stations, Outcome: timetable.OutcomeSuccess}
}

func parseStations(body []byte) ([]timetable.Station, error) {
	var response envelope[stationRecord]
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode station envelope: %w", err)
	}

	stations := make([]timetable.Station, 0, len(response.Data))
	for _, record := range response.Data {
		stations = append(stations, record.toStation())
	}

	return stations, nil
}
