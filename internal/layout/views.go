package layout

import (
	"time"

	"calgrid/internal/model"
)

// View names accepted by the layout entry points.
const (
	ViewDay    = "day"
	ViewWeek   = "week"
	ViewMonth  = "month"
	ViewAgenda = "agenda"
)

// DayLayout is the layout for a single day: the all-day bar section plus
// the positioned time grid.
type DayLayout struct {
	Day time.Time

	// Bars holds the all-day events (single- and multi-day) shown above
	// the time grid, in layout order (multi-day first). Timed events that
	// cross midnight are not bars; each day renders its clipped segment
	// in the grid instead, so no event appears twice.
	Bars []model.Event

	// Timed holds the positioned time-grid events.
	Timed []model.PositionedEvent
}

// Day computes the day-view layout.
func Day(events []model.Event, day time.Time, g Geometry) DayLayout {
	bars := make([]model.Event, 0)
	for _, ev := range events {
		if !ev.SpansDay(day) {
			continue
		}
		if ev.IsAllDay() {
			bars = append(bars, ev)
		}
	}
	SortForLayout(bars)

	return DayLayout{
		Day:   model.Midnight(day),
		Bars:  bars,
		Timed: g.PositionDay(events, day),
	}
}

// WeekLayout is seven consecutive day layouts starting at the configured
// week start.
type WeekLayout struct {
	Start time.Time
	Days  [7]DayLayout
}

// Week computes the week-view layout for the week containing date.
// weekStart is time.Monday or time.Sunday.
func Week(events []model.Event, date time.Time, weekStart time.Weekday, g Geometry) WeekLayout {
	start := StartOfWeek(date, weekStart)

	var wl WeekLayout
	wl.Start = start
	for i := 0; i < 7; i++ {
		wl.Days[i] = Day(events, start.AddDate(0, 0, i), g)
	}
	return wl
}

// StartOfWeek returns midnight of the first day of the week containing
// date. Only Monday and Sunday starts are supported; anything else is
// treated as Monday.
func StartOfWeek(date time.Time, weekStart time.Weekday) time.Time {
	if weekStart != time.Sunday {
		weekStart = time.Monday
	}
	d := model.Midnight(date)
	diff := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -diff)
}

// MonthCell is one day cell in the month grid.
type MonthCell struct {
	Day     time.Time
	InMonth bool

	// Events are the events starting on this day, capped; Spanning are
	// multi-day continuations rendered without a repeated title.
	Events   []model.Event
	Spanning []model.Event

	// More counts the events hidden behind the per-cell cap. The overflow
	// popover lists AllEventsForDay instead.
	More int
}

// MonthLayout is the full month grid: whole weeks covering the month.
type MonthLayout struct {
	Month time.Time // first of the month
	Weeks [][7]MonthCell
}

// DefaultMonthCellCap bounds how many starting events a month cell shows
// before collapsing into a "+N more" count.
const DefaultMonthCellCap = 3

// Month computes the month-view layout for the month containing date.
// maxPerCell <= 0 uses DefaultMonthCellCap.
func Month(events []model.Event, date time.Time, weekStart time.Weekday, maxPerCell int) MonthLayout {
	if maxPerCell <= 0 {
		maxPerCell = DefaultMonthCellCap
	}

	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	gridStart := StartOfWeek(first, weekStart)

	ml := MonthLayout{Month: first}

	day := gridStart
	for {
		var week [7]MonthCell
		for i := 0; i < 7; i++ {
			cell := MonthCell{
				Day:      day,
				InMonth:  day.Month() == first.Month() && day.Year() == first.Year(),
				Events:   EventsForDay(events, day),
				Spanning: SpanningEventsForDay(events, day),
			}
			if len(cell.Events) > maxPerCell {
				cell.More = len(cell.Events) - maxPerCell
				cell.Events = cell.Events[:maxPerCell]
			}
			week[i] = cell
			day = day.AddDate(0, 0, 1)
		}
		ml.Weeks = append(ml.Weeks, week)

		// Stop once the week we just finished ended at or past month end.
		if day.Month() != first.Month() || day.Year() != first.Year() {
			break
		}
	}

	return ml
}

// AgendaGroup is one day's worth of upcoming events in the agenda view.
type AgendaGroup struct {
	Day    time.Time
	Events []model.Event
}

// Agenda lists events day by day from the given date for horizonDays days,
// in chronological order. Days without events are omitted.
func Agenda(events []model.Event, from time.Time, horizonDays int) []AgendaGroup {
	if horizonDays <= 0 {
		horizonDays = 7
	}

	out := make([]AgendaGroup, 0)
	day := model.Midnight(from)
	for i := 0; i < horizonDays; i++ {
		evs := AllEventsForDay(events, day)
		if len(evs) > 0 {
			out = append(out, AgendaGroup{Day: day, Events: evs})
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
