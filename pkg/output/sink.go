package output

import (
	"context"
	"time"

	"github.com/travigo/srt-timetables/pkg/timetable"
)

// SavedRoute describes a schedule that has just been written to disk
type SavedRoute struct {
	Slug        string
	Path        string
	From        timetable.Station
	To          timetable.Station
	Schedule    timetable.CombinedRouteSchedule
	HarvestedAt time.Time
}

// Sink receives every saved route after the file write. Sinks are optional extras,
// their failures never affect the file artifacts.
type Sink interface {
	Name() string
	Publish(ctx context.Context, route SavedRoute) error
}
