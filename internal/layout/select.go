package layout

import (
	"sort"
	"time"

	"calgrid/internal/model"
)

// EventsForDay returns events whose start falls on day, sorted ascending by
// start instant. This is the "first occurrence" selection used for month
// cells and for single-day placement in the day/week grids.
func EventsForDay(events []model.Event, day time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.StartsOn(day) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out
}

// SpanningEventsForDay returns only multi-day events that include day but
// do not start on it. These are the continuation segments rendered on the
// tail days of a multi-day event, without repeating the title placement of
// the first day.
func SpanningEventsForDay(events []model.Event, day time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if !ev.IsMultiDay() {
			continue
		}
		if ev.StartsOn(day) {
			continue
		}
		if ev.SpansDay(day) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out
}

// AllEventsForDay returns every event overlapping day, regardless of
// whether the day is the event's first day or a continuation. Used for the
// "show more" overflow listing.
func AllEventsForDay(events []model.Event, day time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.SpansDay(day) {
			out = append(out, ev)
		}
	}
	SortForLayout(out)
	return out
}

// SortForLayout orders a list that feeds layout: multi-day events first so
// their bars consistently render above single-day and time-grid events,
// then ascending by start instant.
func SortForLayout(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		mi, mj := events[i].IsMultiDay(), events[j].IsMultiDay()
		if mi != mj {
			return mi
		}
		return startsBefore(events[i], events[j])
	})
}

func sortByStart(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return startsBefore(events[i], events[j])
	})
}

// startsBefore compares two events by resolved start instant. Events
// without a resolvable start sort last.
func startsBefore(a, b model.Event) bool {
	as, aok := a.Start.Resolve()
	bs, bok := b.Start.Resolve()
	if aok != bok {
		return aok
	}
	if !aok {
		return false
	}
	return as.Before(bs)
}
