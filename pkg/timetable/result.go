package timetable

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
)

type StationsResult struct {
	Stations []Station
	Outcome  Outcome
	Err      error
}

type DayResult struct {
	Trips   []RawTrip
	Outcome Outcome
	Err     error
}

// HasData is false for both empty and failed fetches, callers cannot tell them apart
func (r DayResult) HasData() bool {
	return r.Outcome == OutcomeSuccess && len(r.Trips) > 0
}
