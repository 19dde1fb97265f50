package layout

import (
	"sort"
	"time"

	"calgrid/internal/model"
)

// Interval is one timed event clipped to a single visible day. Start and
// End are instants inside [day 00:00, day+24h); End is exclusive.
type Interval struct {
	Event model.Event
	Start time.Time
	End   time.Time
}

// overlaps uses closed-open semantics: [s1,e1) and [s2,e2) overlap iff
// s1 < e2 && s2 < e1. Back-to-back intervals do not overlap.
func (iv Interval) overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// DayIntervals selects the timed events visible on day and clips each to
// the day's [00:00, +24h) window. Events crossing midnight into or out of
// the day contribute their clipped segment. All-day events and events
// without resolvable instants are excluded. The result is sorted by
// (start ascending, duration descending) so that on simultaneous starts
// the longer event anchors column 0 and shorter concurrent events cascade
// into higher columns.
func DayIntervals(events []model.Event, day time.Time) []Interval {
	dayStart := model.Midnight(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make([]Interval, 0)
	for _, ev := range events {
		if ev.IsAllDay() {
			continue
		}
		start, ok := ev.Start.Resolve()
		if !ok {
			continue
		}
		end, ok := ev.End.Resolve()
		if !ok {
			continue
		}
		if !start.Before(dayEnd) || !end.After(dayStart) {
			continue
		}
		if start.Before(dayStart) {
			start = dayStart
		}
		if end.After(dayEnd) {
			end = dayEnd
		}
		out = append(out, Interval{Event: ev, Start: start, End: end})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].End.Sub(out[i].Start) > out[j].End.Sub(out[j].Start)
	})
	return out
}

// AssignColumns places each interval in the lowest-indexed column whose
// most recently placed interval does not overlap it, opening a new column
// when none fits. Greedy, not a minimal coloring; determinism for a fixed
// sort order is what the grid needs, and the input order from DayIntervals
// provides exactly that.
//
// The returned map is keyed by event ID.
func AssignColumns(intervals []Interval) map[string]int {
	assigned := make(map[string]int, len(intervals))

	// columns[i] is the last interval placed in column i.
	columns := make([]Interval, 0, 4)

	for _, iv := range intervals {
		placed := false
		for col := range columns {
			if !iv.overlaps(columns[col]) {
				columns[col] = iv
				assigned[iv.Event.ID] = col
				placed = true
				break
			}
		}
		if !placed {
			columns = append(columns, iv)
			assigned[iv.Event.ID] = len(columns) - 1
		}
	}

	return assigned
}
