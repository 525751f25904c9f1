package timetable

import (
	"strings"
)

type Station struct {
	StationID     Identifier `json:"stationId"`
	StationNo     int        `json:"stationNo"`
	StationNameEn string     `json:"stationNameEn"`
	StationCodeEn string     `json:"stationCodeEn"`
}

// SanitiseStationName strips the "**" markers the portal decorates some names with
func SanitiseStationName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "**", ""))
}

// FindStation returns the first station whose English name contains fragment.
// Matching is case-sensitive unless ignoreCase is set.
func FindStation(stations []Station, fragment string, ignoreCase bool) (Station, bool) {
	if fragment == "" {
		return Station{}, false
	}

	if ignoreCase {
		fragment = strings.ToLower(fragment)
	}

	for _, station := range stations {
		name := station.StationNameEn
		if ignoreCase {
			name = strings.ToLower(name)
		}

		if strings.Contains(name, fragment) {
			return station, true
		}
	}

	return Station{}, false
}

type StationPair struct {
	From Station
	To   Station
}

// AllStationPairs lists every unordered pair of stations in directory order
func AllStationPairs(stations []Station) []StationPair {
	var pairs []StationPair

	for i := 0; i < len(stations); i++ {
		for j := i + 1; j < len(stations); j++ {
			pairs = append(pairs, StationPair{
				From: stations[i],
				To:   stations[j],
			})
		}
	}

	return pairs
}
