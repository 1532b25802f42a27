package schedule

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// Config is the recurring-schedule input for bulk slot generation:
// an inclusive date range, the weekdays eligible for slots, and the
// per-day working window. It is ephemeral; only the slots it expands
// into are persisted.
type Config struct {
	StartDate       Date
	EndDate         Date
	Weekdays        []int // 0=Sunday .. 6=Saturday
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	DurationMinutes int
	BreakStart      *TimeOfDay
	BreakEnd        *TimeOfDay
}

// Grid builds the per-day grid from the config's time fields.
func (c Config) Grid() Grid {
	g := Grid{
		Start:    c.StartTime,
		End:      c.EndTime,
		Duration: c.DurationMinutes,
	}
	if c.BreakStart != nil && c.BreakEnd != nil {
		g.Break = &Window{Start: *c.BreakStart, End: *c.BreakEnd}
	}
	return g
}

// Validate checks the config before any expansion or insert happens.
func (c Config) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidConfig, c.StartDate, c.EndDate)
	}
	for _, wd := range c.Weekdays {
		if wd < 0 || wd > 6 {
			return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidConfig, wd)
		}
	}
	if (c.BreakStart == nil) != (c.BreakEnd == nil) {
		return fmt.Errorf("%w: break start and end must be set together", ErrInvalidConfig)
	}
	return c.Grid().Validate()
}

// Candidate is a generated (date, time) pair not yet persisted.
type Candidate struct {
	Date Date
	Time TimeOfDay
}

// DisplayTime is the formatted time string used as the uniqueness key
// alongside the date.
func (c Candidate) DisplayTime() string {
	return c.Time.Display()
}

// Expand walks the date range day by day, skips days whose weekday is not
// configured, and yields every grid time for the remaining days in
// ascending (date, time) order. Pure and lazy; callers must Validate the
// config first.
func Expand(cfg Config) iter.Seq[Candidate] {
	grid := cfg.Grid()
	return func(yield func(Candidate) bool) {
		for d := cfg.StartDate; !d.After(cfg.EndDate); d = d.Next() {
			if !slices.Contains(cfg.Weekdays, int(d.Weekday())) {
				continue
			}
			for t := range grid.Times() {
				if !yield(Candidate{Date: d, Time: t}) {
					return
				}
			}
		}
	}
}

// Collect validates the config and materializes the full candidate set.
func Collect(cfg Config) ([]Candidate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []Candidate
	for c := range Expand(cfg) {
		out = append(out, c)
	}
	return out, nil
}

// WeekdaysOf converts time.Weekday values to the numeric form used in
// Config.
func WeekdaysOf(days ...time.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}
