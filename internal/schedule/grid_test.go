package schedule

import (
	"errors"
	"slices"
	"testing"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return tod
}

func gridTimes(g Grid) []string {
	var out []string
	for tod := range g.Times() {
		out = append(out, tod.String())
	}
	return out
}

func TestGridTimes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		start    string
		end      string
		duration int
		brk      *Window
		want     []string
	}{
		{
			name:     "full day with lunch break",
			start:    "09:00",
			end:      "17:00",
			duration: 60,
			brk:      &Window{Start: 12 * 60, End: 14 * 60},
			want:     []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		},
		{
			name:     "no break",
			start:    "09:00",
			end:      "12:00",
			duration: 60,
			want:     []string{"09:00", "10:00", "11:00"},
		},
		{
			name:     "no partial slot at closing time",
			start:    "09:00",
			end:      "10:30",
			duration: 60,
			want:     []string{"09:00"},
		},
		{
			name:     "uneven duration",
			start:    "09:00",
			end:      "11:00",
			duration: 45,
			want:     []string{"09:00", "09:45"},
		},
		{
			name:     "window too short for one slot",
			start:    "09:00",
			end:      "09:30",
			duration: 60,
			want:     nil,
		},
		{
			name:     "slot ending exactly at closing time is kept",
			start:    "09:00",
			end:      "10:00",
			duration: 60,
			want:     []string{"09:00"},
		},
		{
			name:     "break outside the window has no effect",
			start:    "09:00",
			end:      "11:00",
			duration: 60,
			brk:      &Window{Start: 18 * 60, End: 19 * 60},
			want:     []string{"09:00", "10:00"},
		},
		{
			name:     "slot touching break start survives",
			start:    "09:00",
			end:      "17:00",
			duration: 60,
			brk:      &Window{Start: 10 * 60, End: 11 * 60},
			// 09:00-10:00 ends exactly at the break start and survives;
			// 10:00-11:00 starts inside the break and is suppressed.
			want: []string{"09:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:     "slot straddling break end is suppressed",
			start:    "09:00",
			end:      "13:00",
			duration: 90,
			brk:      &Window{Start: 10 * 60, End: 11 * 60},
			// 09:00-10:30 overlaps, 10:30-12:00 overlaps, cursor still
			// advances past both.
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := Grid{
				Start:    mustTime(t, tt.start),
				End:      mustTime(t, tt.end),
				Duration: tt.duration,
				Break:    tt.brk,
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}

			got := gridTimes(g)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Times() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridTimesNoPartialSlots(t *testing.T) {
	t.Parallel()

	for _, duration := range []int{15, 30, 45, 60, 90} {
		g := Grid{Start: 9 * 60, End: 17*60 + 10, Duration: duration}
		for tod := range g.Times() {
			if int(tod)+duration > int(g.End) {
				t.Errorf("duration=%d: slot %s runs past closing time %s", duration, tod, g.End)
			}
		}
	}
}

func TestGridTimesRestartable(t *testing.T) {
	t.Parallel()

	g := Grid{Start: 9 * 60, End: 12 * 60, Duration: 60}

	first := gridTimes(g)
	second := gridTimes(g)
	if !slices.Equal(first, second) {
		t.Errorf("second iteration %v differs from first %v", second, first)
	}

	// Early break must not corrupt later iterations.
	for range g.Times() {
		break
	}
	if got := gridTimes(g); !slices.Equal(got, first) {
		t.Errorf("after early break got %v, want %v", got, first)
	}
}

func TestGridValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		g    Grid
	}{
		{"zero duration", Grid{Start: 9 * 60, End: 17 * 60, Duration: 0}},
		{"negative duration", Grid{Start: 9 * 60, End: 17 * 60, Duration: -30}},
		{"inverted break", Grid{Start: 9 * 60, End: 17 * 60, Duration: 60, Break: &Window{Start: 14 * 60, End: 12 * 60}}},
		{"empty break", Grid{Start: 9 * 60, End: 17 * 60, Duration: 60, Break: &Window{Start: 12 * 60, End: 12 * 60}}},
		{"window past midnight", Grid{Start: 22 * 60, End: 25 * 60, Duration: 60}},
		{"negative start", Grid{Start: -60, End: 8 * 60, Duration: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.g.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
