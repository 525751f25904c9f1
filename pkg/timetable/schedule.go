package timetable

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugWhitespace = regexp.MustCompile(`\s+`)

type RawTrip struct {
	DepartureTime   string       `json:"departureTime"`
	ArrivalTime     string       `json:"arrivalTime"`
	TrainTypeNameEn string       `json:"trainTypeNameEn"`
	TrainNo         string       `json:"trainNo"`
	OperatingDay    time.Weekday `json:"operatingDay"`
}

type AggregatedTrain struct {
	TrainNo         string   `json:"trainNo"`
	TrainTypeNameEn string   `json:"trainTypeNameEn"`
	DepartureTime   string   `json:"departureTime"`
	ArrivalTime     string   `json:"arrivalTime"`
	OperatingDays   Weekdays `json:"operatingDays"`
	OffDay          string   `json:"offDay"`
}

type CombinedRouteSchedule struct {
	Forward  []AggregatedTrain `json:"forward"`
	Backward []AggregatedTrain `json:"backward"`
}

func (c CombinedRouteSchedule) IsEmpty() bool {
	return len(c.Forward) == 0 && len(c.Backward) == 0
}

// MarshalJSON always writes both directions as arrays, never null
func (c CombinedRouteSchedule) MarshalJSON() ([]byte, error) {
	type plain CombinedRouteSchedule

	if c.Forward == nil {
		c.Forward = []AggregatedTrain{}
	}
	if c.Backward == nil {
		c.Backward = []AggregatedTrain{}
	}

	return json.Marshal(plain(c))
}

// Slug lower-cases a station name and replaces whitespace runs with hyphens
func Slug(name string) string {
	return slugWhitespace.ReplaceAllString(strings.ToLower(name), "-")
}

func RouteSlug(from Station, to Station) string {
	return fmt.Sprintf("%s-to-%s", Slug(from.StationNameEn), Slug(to.StationNameEn))
}
