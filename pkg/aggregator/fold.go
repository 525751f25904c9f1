package aggregator

import (
	"github.com/travigo/srt-timetables/pkg/timetable"
)

// Fold groups raw trips by train number. The first sighting of a train number fixes
// its type and times, later sightings only add operating days.
type Fold struct {
	order  []string
	trains map[string]*timetable.AggregatedTrain
}

func NewFold() *Fold {
	return &Fold{
		trains: map[string]*timetable.AggregatedTrain{},
	}
}

func (f *Fold) Add(trip timetable.RawTrip) {
	train, exists := f.trains[trip.TrainNo]
	if !exists {
		train = &timetable.AggregatedTrain{
			TrainNo:         trip.TrainNo,
			TrainTypeNameEn: trip.TrainTypeNameEn,
			DepartureTime:   trip.DepartureTime,
			ArrivalTime:     trip.ArrivalTime,
			OperatingDays:   timetable.Weekdays{},
		}

		f.trains[trip.TrainNo] = train
		f.order = append(f.order, trip.TrainNo)
	}

	train.OperatingDays.Add(trip.OperatingDay)
}

func (f *Fold) AddAll(trips []timetable.RawTrip) {
	for _, trip := range trips {
		f.Add(trip)
	}
}

func (f *Fold) Len() int {
	return len(f.order)
}

// Trains returns the folded trains in first-seen order with off days filled in
func (f *Fold) Trains() []timetable.AggregatedTrain {
	trains := make([]timetable.AggregatedTrain, 0, len(f.order))

	for _, trainNo := range f.order {
		train := *f.trains[trainNo]
		train.OperatingDays = append(timetable.Weekdays{}, train.OperatingDays...)
		train.OffDay = timetable.OffDay(train.OperatingDays)

		trains = append(trains, train)
	}

	return trains
}
