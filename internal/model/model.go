package model

import "time"

// TimeKind discriminates the two forms an event boundary can take on the
// wire: a whole calendar date (all-day semantics) or a precise instant.
type TimeKind int

const (
	// TimeUnset marks a boundary the source did not populate. Events with
	// unset boundaries degrade to non-spanning placement and are skipped
	// from the time grid; they never cause an error.
	TimeUnset TimeKind = iota
	TimeDate
	TimeInstant
)

// EventTime is a single event boundary (start or end). Exactly one form is
// meaningful, selected by Kind. Using a tagged value instead of a pair of
// optional fields removes the "which field is populated" class of bugs.
type EventTime struct {
	Kind TimeKind

	// Date is the calendar date at local midnight. Valid when Kind == TimeDate.
	Date time.Time

	// Instant is the precise timestamp. Valid when Kind == TimeInstant.
	Instant time.Time
}

// NewDate builds an all-day boundary for the given calendar date.
func NewDate(year int, month time.Month, day int, loc *time.Location) EventTime {
	if loc == nil {
		loc = time.Local
	}
	return EventTime{
		Kind: TimeDate,
		Date: time.Date(year, month, day, 0, 0, 0, 0, loc),
	}
}

// NewInstant builds a timed boundary.
func NewInstant(t time.Time) EventTime {
	return EventTime{Kind: TimeInstant, Instant: t}
}

// Resolve returns the boundary as an instant: the instant itself for timed
// boundaries, local midnight for date boundaries. ok is false for unset
// boundaries.
func (et EventTime) Resolve() (t time.Time, ok bool) {
	switch et.Kind {
	case TimeDate:
		return et.Date, true
	case TimeInstant:
		return et.Instant, true
	default:
		return time.Time{}, false
	}
}

// DayOf returns the calendar date (midnight) the boundary falls on.
func (et EventTime) DayOf() (time.Time, bool) {
	t, ok := et.Resolve()
	if !ok {
		return time.Time{}, false
	}
	return Midnight(t), true
}

// Midnight truncates t to 00:00 of its calendar date, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Event is a single calendar event as supplied by an external source.
// Events are treated as immutable snapshots; any mutation produces a new
// value rather than updating in place.
type Event struct {
	// ID is an opaque unique identifier. Recurring occurrences carry a
	// per-instance suffix so that every row in a layout pass is unique.
	ID string

	Summary     string
	Description string
	Location    string

	// Start and End are independently either date or instant form.
	// For date form, End is exclusive: a one-day all-day event has
	// End.Date == Start.Date + 1 day.
	Start EventTime
	End   EventTime

	Color Color
}

// untitledSummary is the display fallback for events without a summary.
const untitledSummary = "untitled"

// DisplaySummary returns the summary, or "untitled" when empty.
func (e Event) DisplaySummary() string {
	if e.Summary == "" {
		return untitledSummary
	}
	return e.Summary
}

// IsAllDay reports whether the event uses all-day (date-only) semantics.
// The start boundary decides; a malformed event with a timed start and a
// date end still enters the time grid so it stays visible.
func (e Event) IsAllDay() bool {
	return e.Start.Kind == TimeDate
}

// IsMultiDay reports whether the event spans two or more calendar dates.
//
// All-day form uses the exclusive-end convention: start 06-01 / end 06-02
// is a single day, end 06-03 is multi-day. Timed form compares the calendar
// dates of start and end, so 23:00-01:00 across midnight is multi-day.
// Events without both boundaries resolvable in the same form are treated
// as not multi-day.
func (e Event) IsMultiDay() bool {
	switch {
	case e.Start.Kind == TimeDate && e.End.Kind == TimeDate:
		return e.End.Date.After(e.Start.Date.AddDate(0, 0, 1))
	case e.Start.Kind == TimeInstant && e.End.Kind == TimeInstant:
		return !SameDay(e.Start.Instant, e.End.Instant)
	default:
		return false
	}
}

// SpansDay reports whether day falls on the event's start date, its end
// date, or strictly between the two. day may carry any time-of-day; only
// its calendar date is considered.
func (e Event) SpansDay(day time.Time) bool {
	startDay, ok := e.Start.DayOf()
	if !ok {
		return false
	}
	endDay, ok := e.End.DayOf()
	if !ok {
		endDay = startDay
	}
	d := Midnight(day)
	if SameDay(d, startDay) || SameDay(d, endDay) {
		return true
	}
	return d.After(startDay) && d.Before(endDay)
}

// StartsOn reports whether the event's start falls on the given day.
func (e Event) StartsOn(day time.Time) bool {
	startDay, ok := e.Start.DayOf()
	if !ok {
		return false
	}
	return SameDay(startDay, Midnight(day))
}

// Duration returns End - Start resolved to instants. ok is false when
// either boundary is unset.
func (e Event) Duration() (time.Duration, bool) {
	start, ok := e.Start.Resolve()
	if !ok {
		return 0, false
	}
	end, ok := e.End.Resolve()
	if !ok {
		return 0, false
	}
	return end.Sub(start), true
}

// PositionedEvent is the layout output for one event in a day's time grid.
// Top and Height are pixels; Left and Width are fractions of the day cell.
// Positioned events are ephemeral: a fresh set is computed on every layout
// pass and nothing here is ever persisted or mutated in place.
type PositionedEvent struct {
	Event Event

	Top    float64
	Height float64
	Left   float64
	Width  float64
	ZIndex int
}
