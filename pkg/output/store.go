package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

const (
	stationsFileName = "stations.json"
	tripsDirectory   = "trips"
)

// Store writes the JSON artifacts the website reads
type Store struct {
	Directory string
}

func NewStore(directory string) *Store {
	return &Store{Directory: directory}
}

func (s *Store) StationsPath() string {
	return filepath.Join(s.Directory, stationsFileName)
}

func (s *Store) RoutePath(from timetable.Station, to timetable.Station) string {
	return filepath.Join(s.Directory, tripsDirectory, RouteFileName(from, to))
}

func RouteFileName(from timetable.Station, to timetable.Station) string {
	return fmt.Sprintf("%s.json", timetable.RouteSlug(from, to))
}

func (s *Store) SaveStations(stations []timetable.Station) error {
	if stations == nil {
		stations = []timetable.Station{}
	}

	path := s.StationsPath()
	if err := writeJSONFile(path, stations); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("stations", len(stations)).Msg("Station data saved")

	return nil
}

// SaveRoute overwrites the combined schedule for a station pair. Nothing is written
// when neither direction has any trains so a bad harvest never replaces a good file.
func (s *Store) SaveRoute(forward []timetable.AggregatedTrain, backward []timetable.AggregatedTrain, from timetable.Station, to timetable.Station) (bool, error) {
	schedule := timetable.CombinedRouteSchedule{
		Forward:  forward,
		Backward: backward,
	}

	if schedule.IsEmpty() {
		return false, nil
	}

	path := s.RoutePath(from, to)
	if err := writeJSONFile(path, schedule); err != nil {
		return false, err
	}

	log.Info().Str("path", path).Int("forward", len(forward)).Int("backward", len(backward)).Msg("Combined trip data saved")

	return true, nil
}

// writeJSONFile writes to a temporary file alongside path and renames it into place
func writeJSONFile(path string, value interface{}) error {
	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(directory, "."+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(buffer.Bytes()); err != nil {
		tmpFile.Close()
		return err
	}

	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), path)
}
