// Package calendar builds the fixed 42-cell month grid used by the
// holiday views. Months are zero-based (January = 0) and weeks start on
// Sunday, matching the front end this grid is rendered by.
package calendar

import "time"

const GridCells = 42

type Event struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Optional    bool      `json:"optional"`
	Description string    `json:"description,omitempty"`
}

type Cell struct {
	Date    time.Time `json:"date"`
	Day     int       `json:"day"`
	InMonth bool      `json:"inMonth"`
	Today   bool      `json:"today"`
	Events  []Event   `json:"events,omitempty"`
}

// Normalize folds an out-of-range month into [0,11], carrying whole
// years. Navigating "prev" from January yields December of the prior
// year, "next" from December yields January of the next.
func Normalize(year, month int) (int, int) {
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	return year, month
}

// AddMonths steps the displayed month by delta, rolling years as needed.
func AddMonths(year, month, delta int) (int, int) {
	return Normalize(year, month+delta)
}

// DaysIn reports the day count of the (normalized) month.
func DaysIn(year, month int) int {
	year, month = Normalize(year, month)
	// day 0 of the following month is the last day of this one
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonthGrid produces exactly 42 cells: the tail of the previous
// month up to the first weekday, every day of the displayed month, then
// the head of the next month. Today is resolved against the wall clock.
func BuildMonthGrid(year, month int, events []Event) []Cell {
	return BuildMonthGridOn(time.Now(), year, month, events)
}

// BuildMonthGridOn is BuildMonthGrid with an explicit "today", compared
// date-only.
func BuildMonthGridOn(today time.Time, year, month int, events []Event) []Cell {
	year, month = Normalize(year, month)

	firstOfMonth := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	leading := int(firstOfMonth.Weekday())
	daysInMonth := DaysIn(year, month)

	cells := make([]Cell, 0, GridCells)

	for i := leading; i > 0; i-- {
		date := firstOfMonth.AddDate(0, 0, -i)
		cells = append(cells, newCell(date, false, today, events))
	}
	for day := 0; day < daysInMonth; day++ {
		date := firstOfMonth.AddDate(0, 0, day)
		cells = append(cells, newCell(date, true, today, events))
	}
	for next := 0; len(cells) < GridCells; next++ {
		date := firstOfMonth.AddDate(0, 0, daysInMonth+next)
		cells = append(cells, newCell(date, false, today, events))
	}

	return cells
}

func newCell(date time.Time, inMonth bool, today time.Time, events []Event) Cell {
	return Cell{
		Date:    date,
		Day:     date.Day(),
		InMonth: inMonth,
		Today:   SameDay(date, today),
		Events:  eventsOn(date, events),
	}
}

// SameDay compares two instants on their calendar date alone.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// eventsOn keeps every event landing on the date, in input order.
func eventsOn(date time.Time, events []Event) []Event {
	var matched []Event
	for _, event := range events {
		if SameDay(event.Date, date) {
			matched = append(matched, event)
		}
	}
	return matched
}
