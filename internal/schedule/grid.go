package schedule

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidConfig indicates a malformed generation input. Generation is
// aborted entirely; nothing is persisted.
var ErrInvalidConfig = errors.New("invalid generation config")

// Window is a half-open [Start, End) span within one day, used for the
// midday break.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Grid describes one day's working window: opening and closing times, the
// slot length, and an optional break during which no slots are offered.
type Grid struct {
	Start    TimeOfDay
	End      TimeOfDay
	Duration int // minutes
	Break    *Window
}

// Validate reports ErrInvalidConfig for a non-positive duration or an
// inverted break window. A window too short for even one slot is not an
// error; it simply yields no times.
func (g Grid) Validate() error {
	if g.Duration <= 0 {
		return fmt.Errorf("%w: slot duration must be positive, got %d", ErrInvalidConfig, g.Duration)
	}
	if g.Start < 0 || g.End > minutesPerDay {
		return fmt.Errorf("%w: window %s-%s falls outside the day", ErrInvalidConfig, g.Start, g.End)
	}
	if g.Break != nil && g.Break.Start >= g.Break.End {
		return fmt.Errorf("%w: break start %s must precede break end %s",
			ErrInvalidConfig, g.Break.Start, g.Break.End)
	}
	return nil
}

// Times returns the ordered slot start times for the day as a lazy,
// restartable sequence. A slot that would run past the closing time is
// never emitted, and a slot overlapping the break window is suppressed
// while the cursor still advances. Callers must Validate first; an
// invalid grid yields nothing.
func (g Grid) Times() iter.Seq[TimeOfDay] {
	return func(yield func(TimeOfDay) bool) {
		if g.Duration <= 0 {
			return
		}
		step := TimeOfDay(g.Duration)
		for cur := g.Start; cur+step <= g.End; cur += step {
			if g.overlapsBreak(cur, cur+step) {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// overlapsBreak applies the suppression rule: a slot is dropped when its
// start falls within [Break.Start, Break.End) or its end falls within
// (Break.Start, Break.End]. A slot that merely touches the break boundary
// survives.
func (g Grid) overlapsBreak(start, end TimeOfDay) bool {
	if g.Break == nil {
		return false
	}
	if start >= g.Break.Start && start < g.Break.End {
		return true
	}
	if end > g.Break.Start && end <= g.Break.End {
		return true
	}
	return false
}
