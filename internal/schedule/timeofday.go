package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a clinic-local time of day with minute resolution,
// stored as minutes since midnight.
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse time of day %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String renders the 24-hour form, e.g. "09:30".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Display renders the 12-hour form used as the slot uniqueness key,
// e.g. "09:00 AM" or "02:30 PM". Hour and minute are zero-padded and
// the AM/PM suffix is uppercase.
func (t TimeOfDay) Display() string {
	h := int(t) / 60
	m := int(t) % 60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h12, m, period)
}

// ParseDisplay parses the 12-hour display form produced by Display.
// Slot times are stored in this form, so consumers that need a
// chronological ordering parse it back through here.
func ParseDisplay(s string) (TimeOfDay, error) {
	var h, m int
	var period string
	if _, err := fmt.Sscanf(s, "%d:%d %s", &h, &m, &period); err != nil {
		return 0, fmt.Errorf("parse display time %q: %w", s, err)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse display time %q: out of range", s)
	}
	switch period {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return 0, fmt.Errorf("parse display time %q: bad AM/PM suffix", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// Date is a clinic-local calendar date with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an ISO "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date, for handing to drivers that
// speak time.Time.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// Weekday returns the day of week, time.Sunday == 0.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return DateOf(d.Time().AddDate(0, 0, 1))
}

// After reports whether d falls after other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}
