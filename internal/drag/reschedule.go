// Package drag computes the outcome of drag-and-drop gestures on the
// calendar grid: rescheduling an event onto a new slot and turning a click
// on an empty cell into a snapped creation time.
package drag

import (
	"math"
	"time"

	"calgrid/internal/model"
)

// Reschedule is the computed new placement for a dragged event.
type Reschedule struct {
	Start time.Time
	End   time.Time

	// AllDay is true when the event keeps its date-only form (an all-day
	// event dropped on a whole-day cell stays all-day).
	AllDay bool
}

// SnapMinutes maps the fractional part of an hour onto a quarter-hour
// mark, ties toward the lower quarter: boundaries at .125, .375 and .625.
// 0.20 snaps to 15, 0.70 snaps to 45.
func SnapMinutes(fraction float64) int {
	switch {
	case fraction < 0.125:
		return 0
	case fraction < 0.375:
		return 15
	case fraction < 0.625:
		return 30
	default:
		return 45
	}
}

// SlotStart converts a drop (or click) position inside the time grid into
// a concrete snapped start: day's calendar date at the snapped hour:minute.
func SlotStart(day time.Time, fractionalHour float64) time.Time {
	hours := int(math.Floor(fractionalHour))
	minutes := SnapMinutes(fractionalHour - math.Floor(fractionalHour))
	return time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, day.Location())
}

// Compute determines the new start/end for an event dropped on targetDay.
//
// fractionalHour non-nil means the drop landed inside a day/week time grid
// at that vertical position; the new start is the snapped slot on
// targetDay. fractionalHour nil means a whole-day cell (month view): the
// event keeps its original time-of-day and only the calendar date moves.
// In both cases the original duration is preserved exactly.
//
// ok is false when the event lacks resolvable boundaries; a malformed drag
// is ignored rather than surfaced.
func Compute(targetDay time.Time, fractionalHour *float64, ev model.Event) (Reschedule, bool) {
	origStart, sok := ev.Start.Resolve()
	dur, dok := ev.Duration()
	if !sok || !dok {
		return Reschedule{}, false
	}

	var newStart time.Time
	allDay := false

	if fractionalHour != nil {
		newStart = SlotStart(targetDay, *fractionalHour)
	} else {
		// Whole-day drop: keep time-of-day, change the date. For all-day
		// events the time-of-day is midnight and the date form survives.
		newStart = time.Date(
			targetDay.Year(), targetDay.Month(), targetDay.Day(),
			origStart.Hour(), origStart.Minute(), origStart.Second(), origStart.Nanosecond(),
			origStart.Location(),
		)
		allDay = ev.IsAllDay()
	}

	return Reschedule{
		Start:  newStart,
		End:    newStart.Add(dur),
		AllDay: allDay,
	}, true
}

// IsNoOp reports whether the reschedule lands the event exactly where it
// already is: same calendar date, hour and minute as the original start.
// A no-op drop must not emit an update or a notification.
func IsNoOp(r Reschedule, ev model.Event) bool {
	origStart, ok := ev.Start.Resolve()
	if !ok {
		return true
	}
	return model.SameDay(origStart, r.Start) &&
		origStart.Hour() == r.Start.Hour() &&
		origStart.Minute() == r.Start.Minute()
}

// Apply returns a copy of ev moved to the rescheduled slot. Timed drops
// always produce instant boundaries; whole-day drops on all-day events
// keep the date form (with its exclusive end).
func Apply(r Reschedule, ev model.Event) model.Event {
	moved := ev
	if r.AllDay {
		moved.Start = model.NewDate(r.Start.Year(), r.Start.Month(), r.Start.Day(), r.Start.Location())
		moved.End = model.NewDate(r.End.Year(), r.End.Month(), r.End.Day(), r.End.Location())
		return moved
	}
	moved.Start = model.NewInstant(r.Start)
	moved.End = model.NewInstant(r.End)
	return moved
}

// UpdateFunc receives the moved event for persistence by the external
// event-store collaborator. Fire-and-forget: no acknowledgement is awaited.
type UpdateFunc func(model.Event)

// NotifyFunc receives the user-facing toast request for a successful move.
type NotifyFunc func(summary string, newStart time.Time)

// Handler wires gesture input to the update/notification side channels.
type Handler struct {
	OnUpdate UpdateFunc
	Notify   NotifyFunc
}

// Drop processes a completed drag gesture. Malformed gestures (no event,
// no resolvable target) and no-op drops are absorbed silently; nothing is
// emitted and ok is false. On a real move the moved event is returned and
// both side channels fire.
func (h *Handler) Drop(ev model.Event, targetDay time.Time, fractionalHour *float64) (model.Event, bool) {
	if ev.ID == "" || targetDay.IsZero() {
		return model.Event{}, false
	}

	r, ok := Compute(targetDay, fractionalHour, ev)
	if !ok || IsNoOp(r, ev) {
		return model.Event{}, false
	}

	moved := Apply(r, ev)
	if h.OnUpdate != nil {
		h.OnUpdate(moved)
	}
	if h.Notify != nil {
		h.Notify(moved.DisplaySummary(), r.Start)
	}
	return moved, true
}
