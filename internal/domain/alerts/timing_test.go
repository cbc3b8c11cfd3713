package alerts

import (
	"testing"
	"time"
)

func TestWindow_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		w     Window
		start time.Time
		end   time.Time
	}{
		{
			name:  "morning, hours",
			w:     Window{Date: "2020-05-31", Hour: 9, AmPm: "AM", LengthHours: 12},
			start: time.Date(2020, 5, 31, 9, 0, 0, 0, time.UTC),
			end:   time.Date(2020, 5, 31, 21, 0, 0, 0, time.UTC),
		},
		{
			name:  "evening, days",
			w:     Window{Date: "2020-12-24", Hour: 5, AmPm: "pm", LengthDays: 7},
			start: time.Date(2020, 12, 24, 17, 0, 0, 0, time.UTC),
			end:   time.Date(2020, 12, 31, 17, 0, 0, 0, time.UTC),
		},
		{
			name:  "midnight",
			w:     Window{Date: "2021-01-01", Hour: 12, AmPm: "AM", LengthHours: 1},
			start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2021, 1, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name:  "noon",
			w:     Window{Date: "2021-01-01", Hour: 12, AmPm: "PM"},
			start: time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
			end:   time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.w.Bounds(time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.start) || !end.Equal(tt.end) {
				t.Errorf("got %v - %v, want %v - %v", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestWindow_BoundsMalformed(t *testing.T) {
	for name, w := range map[string]Window{
		"unscheduled": {},
		"bad date":    {Date: "31/05/2020", Hour: 9, AmPm: "AM"},
		"bad hour":    {Date: "2020-05-31", Hour: 13, AmPm: "PM"},
		"zero hour":   {Date: "2020-05-31", Hour: 0, AmPm: "AM"},
		"bad am/pm":   {Date: "2020-05-31", Hour: 9, AmPm: "noon"},
	} {
		if _, _, err := w.Bounds(time.UTC); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTiming(t *testing.T) {
	w := Window{Date: "2020-05-31", Hour: 9, AmPm: "AM", LengthHours: 12}
	end := time.Date(2020, 5, 31, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"weeks before", time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"during", time.Date(2020, 5, 31, 12, 0, 0, 0, time.UTC), true},
		{"at end", end, true},
		{"after", end.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, active := Timing(w, time.UTC, tt.now)
			if active != tt.want {
				t.Errorf("active = %v, want %v", active, tt.want)
			}
		})
	}

	if _, _, active := Timing(Window{Date: "garbage"}, time.UTC, time.Time{}); active {
		t.Error("malformed window must be inactive")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		at   time.Time
		date string
		time string
	}{
		{time.Date(2020, 5, 31, 9, 0, 0, 0, time.UTC), "Sun May 31 2020", "9:00 am"},
		{time.Date(2020, 5, 31, 21, 5, 0, 0, time.UTC), "Sun May 31 2020", "9:05 pm"},
		{time.Date(2021, 1, 1, 0, 30, 0, 0, time.UTC), "Fri Jan 01 2021", "12:30 am"},
		{time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC), "Fri Jan 01 2021", "12:00 pm"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.at); got != tt.date {
			t.Errorf("FormatDate(%v) = %q, want %q", tt.at, got, tt.date)
		}
		if got := FormatAMPM(tt.at); got != tt.time {
			t.Errorf("FormatAMPM(%v) = %q, want %q", tt.at, got, tt.time)
		}
	}
}
