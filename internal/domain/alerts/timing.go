package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts used when rendering alert dates and times.
const (
	DateLayout = "Mon Jan 02 2006"
	TimeLayout = "3:04 pm"
	// WindowDateLayout is the configured start date format.
	WindowDateLayout = "2006-01-02"
)

var errNotScheduled = errors.New("alert window not scheduled")

// Window schedules an alert: it starts on Date at Hour (12-hour clock)
// and lasts LengthHours plus LengthDays.
type Window struct {
	Date        string
	Hour        int
	AmPm        string
	LengthHours int
	LengthDays  int
}

// Bounds returns the start and end of the window in loc.
func (w Window) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	if strings.TrimSpace(w.Date) == "" {
		return time.Time{}, time.Time{}, errNotScheduled
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(WindowDateLayout, strings.TrimSpace(w.Date), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse window date: %w", err)
	}
	hour, err := hour24(w.Hour, w.AmPm)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
	end := start.Add(time.Duration(w.LengthHours)*time.Hour).AddDate(0, 0, w.LengthDays)
	return start, end, nil
}

// Timing reports the bounds of the window and whether the alert should be
// shown at now: from the moment it is configured until the window ends.
// A malformed window is never shown.
func Timing(w Window, loc *time.Location, now time.Time) (start, end time.Time, active bool) {
	start, end, err := w.Bounds(loc)
	if err != nil || now.After(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func hour24(hour int, ampm string) (int, error) {
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("window hour %d out of range 1-12", hour)
	}
	switch strings.ToUpper(strings.TrimSpace(ampm)) {
	case "AM":
		return hour % 12, nil
	case "PM":
		return hour%12 + 12, nil
	}
	return 0, fmt.Errorf("window am/pm %q must be AM or PM", ampm)
}

// FormatAMPM renders the time of day like "9:00 am".
func FormatAMPM(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatDate renders the date like "Sun May 31 2020".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
