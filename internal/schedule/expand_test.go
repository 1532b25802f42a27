package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func baseConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		StartDate:       mustDate(t, "2025-06-09"), // Monday
		EndDate:         mustDate(t, "2025-06-15"), // Sunday
		Weekdays:        WeekdaysOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		StartTime:       mustTime(t, "09:00"),
		EndTime:         mustTime(t, "17:00"),
		DurationMinutes: 60,
	}
}

func TestCollectSkipsUnconfiguredWeekdays(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	candidates, err := Collect(cfg)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	// 5 weekdays x 8 slots, nothing on the weekend
	if len(candidates) != 40 {
		t.Fatalf("got %d candidates, want 40", len(candidates))
	}
	for _, c := range candidates {
		wd := c.Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Errorf("candidate emitted for weekend date %s", c.Date)
		}
	}
}

func TestCollectOrdering(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	candidates, err := Collect(cfg)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	for i := 1; i < len(candidates); i++ {
		prev, cur := candidates[i-1], candidates[i]
		if cur.Date.Before(prev.Date) {
			t.Fatalf("dates out of order at %d: %s after %s", i, cur.Date, prev.Date)
		}
		if cur.Date == prev.Date && cur.Time <= prev.Time {
			t.Fatalf("times out of order on %s: %s after %s", cur.Date, cur.Time, prev.Time)
		}
	}
}

func TestCollectDisplayFormat(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.EndDate = cfg.StartDate
	bs := mustTime(t, "12:00")
	be := mustTime(t, "14:00")
	cfg.BreakStart = &bs
	cfg.BreakEnd = &be

	candidates, err := Collect(cfg)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{"09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM"}
	if len(candidates) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(candidates), len(want))
	}
	for i, c := range candidates {
		if c.DisplayTime() != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, c.DisplayTime(), want[i])
		}
	}
}

func TestCollectSingleEligibleDay(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Weekdays = WeekdaysOf(time.Saturday)

	candidates, err := Collect(cfg)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, c := range candidates {
		if c.Date.String() != "2025-06-14" {
			t.Errorf("unexpected date %s, want only the Saturday", c.Date)
		}
	}
	if len(candidates) != 8 {
		t.Errorf("got %d candidates, want 8", len(candidates))
	}
}

func TestCollectEmptyResults(t *testing.T) {
	t.Parallel()

	t.Run("no eligible weekdays", func(t *testing.T) {
		t.Parallel()
		cfg := baseConfig(t)
		cfg.Weekdays = nil
		candidates, err := Collect(cfg)
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("got %d candidates, want 0", len(candidates))
		}
	})

	t.Run("window too short every day", func(t *testing.T) {
		t.Parallel()
		cfg := baseConfig(t)
		cfg.EndTime = mustTime(t, "09:30")
		candidates, err := Collect(cfg)
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("got %d candidates, want 0", len(candidates))
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted date range", func(c *Config) {
			c.StartDate = mustDate(t, "2025-06-20")
		}},
		{"zero duration", func(c *Config) {
			c.DurationMinutes = 0
		}},
		{"weekday out of range", func(c *Config) {
			c.Weekdays = []int{7}
		}},
		{"break start without end", func(c *Config) {
			bs := mustTime(t, "12:00")
			c.BreakStart = &bs
		}},
		{"inverted break", func(c *Config) {
			bs := mustTime(t, "14:00")
			be := mustTime(t, "12:00")
			c.BreakStart = &bs
			c.BreakEnd = &be
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig(t)
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
			if _, err := Collect(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Collect() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
