// utils/dates.go
package utils

import (
	"os"
	"time"
)

const (
	DateLayout = "2006-01-02"
	SlotLayout = "15:04"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// ServiceLocation returns the timezone bookings are expressed in.
func ServiceLocation() *time.Location {
	name := os.Getenv("APP_TIMEZONE")
	if name == "" {
		name = "Asia/Bangkok"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil && len(s) == len(DateLayout)
}

// ValidSlot reports whether s is a zero-padded HH:MM slot label.
func ValidSlot(s string) bool {
	_, err := time.Parse(SlotLayout, s)
	return err == nil && len(s) == len(SlotLayout)
}

// ParseSlot combines a date and slot label into a time in the given location.
func ParseSlot(date, slot string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+SlotLayout, date+" "+slot, loc)
}

// RoundToSlot rounds t down to the nearest slot boundary.
func RoundToSlot(t time.Time, stepMinutes int) time.Time {
	if stepMinutes <= 0 {
		stepMinutes = 60
	}
	step := time.Duration(stepMinutes) * time.Minute
	minutesIntoDay := t.Sub(BeginningOfDay(t))
	return BeginningOfDay(t).Add(minutesIntoDay / step * step)
}
