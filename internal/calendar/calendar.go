// Package calendar provides the date arithmetic behind the month view:
// the day grid of a month and the bookable half-hour slots of a day.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date representation used across the application.
const DateLayout = "2006-01-02"

const (
	firstSlotHour = 8
	lastSlotHour  = 19
)

// Cell is one position in a calendar week.
// The zero value is a padding cell.
type Cell struct {
	Day  int
	Date string
}

// Empty reports whether the cell is padding outside the month.
func (c Cell) Empty() bool {
	return c.Day == 0
}

// Week is a Sunday-first row of the month grid.
type Week [7]Cell

// MonthGrid returns the weeks of the given month. The first week is padded
// up to the weekday of the 1st (Sunday = 0) and the last week is padded to
// seven cells.
func MonthGrid(year int, month time.Month) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := DaysIn(year, month)

	weeks := make([]Week, 0, 6)
	var week Week
	pos := int(first.Weekday())

	for day := 1; day <= days; day++ {
		week[pos] = Cell{
			Day:  day,
			Date: first.AddDate(0, 0, day-1).Format(DateLayout),
		}
		pos++
		if pos == len(week) {
			weeks = append(weeks, week)
			week = Week{}
			pos = 0
		}
	}

	if pos > 0 {
		weeks = append(weeks, week)
	}

	return weeks
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last dates of the month, inclusive.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// TimeSlots returns every half hour from 08:00 to 19:30 inclusive.
func TimeSlots() []string {
	slots := make([]string, 0, (lastSlotHour-firstSlotHour+1)*2)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return slots
}

// IsSlot reports whether s is one of the bookable slots.
func IsSlot(s string) bool {
	for _, slot := range TimeSlots() {
		if slot == s {
			return true
		}
	}
	return false
}

// ParseDate parses a canonical YYYY-MM-DD date.
// Non-canonical spellings such as "2025-6-1" are rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Normalize returns the requested month, or the month of now when year or
// month are out of range.
func Normalize(year, month int, now time.Time) Month {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return Month{Year: now.Year(), Month: now.Month()}
	}
	return Month{Year: year, Month: time.Month(month)}
}

// Prev returns the previous month.
func (m Month) Prev() Month {
	t := time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Grid returns MonthGrid for m.
func (m Month) Grid() []Week {
	return MonthGrid(m.Year, m.Month)
}

// Range returns MonthRange for m.
func (m Month) Range() (string, string) {
	return MonthRange(m.Year, m.Month)
}
