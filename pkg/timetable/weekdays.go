package timetable

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

const NoOffDay = "No off day"

const weekdaySeparator = ", "

// Week is the canonical order used for off day calculation
var Week = Weekdays{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// Weekdays is an ordered set of days. Order is insertion order, not calendar order.
type Weekdays []time.Weekday

func (w Weekdays) Contains(day time.Weekday) bool {
	return slices.Contains(w, day)
}

// Add appends day unless it is already present and reports whether it was added
func (w *Weekdays) Add(day time.Weekday) bool {
	if w.Contains(day) {
		return false
	}

	*w = append(*w, day)
	return true
}

func (w Weekdays) Complement() Weekdays {
	complement := Weekdays{}

	for _, day := range Week {
		if !w.Contains(day) {
			complement = append(complement, day)
		}
	}

	return complement
}

func (w Weekdays) String() string {
	names := make([]string, 0, len(w))
	for _, day := range w {
		names = append(names, day.String())
	}

	return strings.Join(names, weekdaySeparator)
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}

	days := Weekdays{}
	if strings.TrimSpace(joined) != "" {
		for _, name := range strings.Split(joined, ",") {
			day, err := ParseWeekday(name)
			if err != nil {
				return err
			}

			days.Add(day)
		}
	}

	*w = days
	return nil
}

func ParseWeekday(name string) (time.Weekday, error) {
	name = strings.TrimSpace(name)

	for _, day := range Week {
		if strings.EqualFold(day.String(), name) {
			return day, nil
		}
	}

	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}

// OffDay describes the days of the week a train was not seen running
func OffDay(operating Weekdays) string {
	complement := operating.Complement()

	if len(complement) == 0 {
		return NoOffDay
	}

	return complement.String()
}
