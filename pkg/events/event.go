package events

import (
	"time"

	"github.com/travigo/srt-timetables/pkg/timetable"
)

const QueueName = "route-schedules"

type EventType string

const (
	EventTypeRouteScheduleUpdated EventType = "RouteScheduleUpdated"
)

type Event struct {
	Type      EventType
	Timestamp time.Time

	Body interface{}
}

type RouteScheduleUpdated struct {
	Slug string
	Path string

	From timetable.Station
	To   timetable.Station

	ForwardTrains  int
	BackwardTrains int
}
