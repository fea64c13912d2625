package models

// Day identifies a weekday in the timetable grid.
type Day string

const (
	DayMonday    Day = "MONDAY"
	DayTuesday   Day = "TUESDAY"
	DayWednesday Day = "WEDNESDAY"
	DayThursday  Day = "THURSDAY"
	DayFriday    Day = "FRIDAY"
	DaySaturday  Day = "SATURDAY"
	DaySunday    Day = "SUNDAY"
)

// ScheduleMode determines which days a batch can be scheduled on.
type ScheduleMode string

const (
	ModeWeekday ScheduleMode = "WEEKDAY"
	ModeWeekend ScheduleMode = "WEEKEND"
)

var weekdayDays = []Day{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday}
var weekendDays = []Day{DaySaturday, DaySunday}

// Days returns the candidate day set for the mode. Unknown modes yield no days.
func (m ScheduleMode) Days() []Day {
	switch m {
	case ModeWeekday:
		return weekdayDays
	case ModeWeekend:
		return weekendDays
	}
	return nil
}

// IntervalsPerDay is the number of fixed 2-hour teaching windows per day.
const IntervalsPerDay = 4

// SessionHours is the length of one teaching window in hours.
const SessionHours = 2

// IntervalLabels maps interval indexes to their wall-clock windows.
var IntervalLabels = map[int]string{
	1: "08:00-10:00",
	2: "10:00-12:00",
	3: "13:00-15:00",
	4: "15:00-17:00",
}

// ExamPrepInterval is the canonical window exam-preparation sessions are pinned to.
const ExamPrepInterval = 1

// TimeSlot is a (day, interval) cell in the weekly grid.
type TimeSlot struct {
	Day      Day `json:"day"`
	Interval int `json:"interval"`
}

// Label returns the wall-clock window for the slot's interval.
func (t TimeSlot) Label() string {
	return IntervalLabels[t.Interval]
}

// ValidDay reports whether d is one of the seven known days.
func ValidDay(d Day) bool {
	switch d {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday:
		return true
	}
	return false
}

// ValidInterval reports whether i falls inside the fixed interval range.
func ValidInterval(i int) bool {
	return i >= 1 && i <= IntervalsPerDay
}

// SlotSpace enumerates every (day, interval) cell available to the mode,
// day-major then interval.
func SlotSpace(mode ScheduleMode) []TimeSlot {
	days := mode.Days()
	slots := make([]TimeSlot, 0, len(days)*IntervalsPerDay)
	for _, day := range days {
		for interval := 1; interval <= IntervalsPerDay; interval++ {
			slots = append(slots, TimeSlot{Day: day, Interval: interval})
		}
	}
	return slots
}
