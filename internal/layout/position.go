package layout

import (
	"time"

	"calgrid/internal/model"
)

// Grid geometry defaults: 80px per hour, 06:00-21:00 visible.
const (
	DefaultPixelsPerHour    = 80.0
	DefaultVisibleStartHour = 6
	DefaultVisibleEndHour   = 21
)

// Geometry holds the fixed constants that map time-of-day onto pixels in
// the day/week grids.
type Geometry struct {
	// PixelsPerHour is the vertical scale of the time grid.
	PixelsPerHour float64

	// VisibleStartHour / VisibleEndHour bound the rendered hour range.
	// Events outside the range are clamped to its edges, not hidden.
	VisibleStartHour int
	VisibleEndHour   int
}

// DefaultGeometry returns the stock 80px/hour, 06:00-21:00 grid.
func DefaultGeometry() Geometry {
	return Geometry{
		PixelsPerHour:    DefaultPixelsPerHour,
		VisibleStartHour: DefaultVisibleStartHour,
		VisibleEndHour:   DefaultVisibleEndHour,
	}
}

// normalized fills zero fields with the defaults so a partially built
// Geometry (e.g. from config) still produces a usable grid.
func (g Geometry) normalized() Geometry {
	if g.PixelsPerHour <= 0 {
		g.PixelsPerHour = DefaultPixelsPerHour
	}
	if g.VisibleEndHour <= g.VisibleStartHour {
		g.VisibleStartHour = DefaultVisibleStartHour
		g.VisibleEndHour = DefaultVisibleEndHour
	}
	return g
}

// hourFraction converts a clock time to fractional hours (9:30 -> 9.5).
func hourFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// Position converts one clipped interval plus its column index into
// pixel-space placement.
//
// The horizontal scheme is a fixed layered inset, not proportional
// columns: column 0 keeps the full cell width, every later column is inset
// by 10% per column and rendered at 90% width with a higher z-index, so a
// narrower event always stays clickable on top of the one beneath it.
func (g Geometry) Position(iv Interval, column int) model.PositionedEvent {
	g = g.normalized()

	startFrac := hourFraction(iv.Start)
	endFrac := hourFraction(iv.End)
	// A clipped end at the following midnight reads as hour 0 of the next
	// day; treat it as 24:00 of this one.
	if endFrac <= startFrac && iv.End.After(iv.Start) {
		endFrac = 24
	}

	// Clamp into the visible hour window.
	lo, hi := float64(g.VisibleStartHour), float64(g.VisibleEndHour)
	if startFrac < lo {
		startFrac = lo
	}
	if startFrac > hi {
		startFrac = hi
	}
	if endFrac > hi {
		endFrac = hi
	}
	if endFrac < startFrac {
		endFrac = startFrac
	}

	pos := model.PositionedEvent{
		Event:  iv.Event,
		Top:    (startFrac - lo) * g.PixelsPerHour,
		Height: (endFrac - startFrac) * g.PixelsPerHour,
		Left:   0,
		Width:  1.0,
		ZIndex: 10 + column,
	}
	if column > 0 {
		pos.Left = float64(column) * 0.1
		pos.Width = 0.9
	}
	return pos
}

// PositionDay runs the full single-day pipeline: clip the timed events to
// day, assign columns, and position each interval. Output order follows
// the column-assignment input order, so repeated passes over the same
// snapshot yield identical results.
func (g Geometry) PositionDay(events []model.Event, day time.Time) []model.PositionedEvent {
	intervals := DayIntervals(events, day)
	columns := AssignColumns(intervals)

	out := make([]model.PositionedEvent, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, g.Position(iv, columns[iv.Event.ID]))
	}
	return out
}
