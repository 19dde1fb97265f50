package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone every occurrence is converted into.
	// Nil means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the inclusive occurrence window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway expansions. Zero means the
	// package default.
	MaxOccurrencesPerEvent int
}

// ExpandResult carries the expanded events plus truncation info.
type ExpandResult struct {
	Events []model.Event
	// TruncatedUIDs records UIDs that hit the per-event cap.
	TruncatedUIDs []string
}

// Expand turns ParsedEvents into concrete model.Event values inside the
// configured window, handling:
//
//   - single non-recurring events
//   - RRULE recurrence (DAILY/WEEKLY/MONTHLY/YEARLY, ...)
//   - EXDATE removals
//   - RECURRENCE-ID overrides
//   - all-day (date form) vs timed (instant form) boundaries
//
// Every produced event carries boundaries in DisplayLocation and a unique
// ID: the UID for single events, UID plus an instance suffix for
// recurring occurrences.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and their per-instance overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	all := make([]model.Event, 0)
	for uid, baseEvents := range baseByUID {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			all = append(all, occ...)
		}

		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	result.Events = all
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg), false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Event {
	if !timeRangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}

	start, end := ev.Start, ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		start, end = o.Start, o.End
		ev = o
	}

	return []model.Event{makeEvent(ev, start, end, false, cfg.DisplayLocation)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	out := make([]model.Event, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		// Best effort: align EXDATE location with the event's start.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	occTimes := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			// All-day instance: [date 00:00, next day 00:00) in the
			// event's own timezone.
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.AddDate(0, 0, 1)
		} else {
			occEnd = occStart.Add(ev.End.Sub(ev.Start))
		}

		baseEv, start, end := ev, occStart, occEnd
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseEv, start, end = o, o.Start, o.End
		}

		out = append(out, makeEvent(baseEv, start, end, true, cfg.DisplayLocation))
	}

	return out, hitCap
}

// findOverrideForStart matches an override whose RECURRENCE-ID equals the
// instance start, compared in the instance's location.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeEvent converts one concrete occurrence into a model.Event in
// displayLoc. All-day events keep the date form with its exclusive end;
// timed events keep precise instants. A degenerate timed end before start
// is clamped to the start so downstream never sees a negative duration.
func makeEvent(ev ParsedEvent, start, end time.Time, instance bool, displayLoc *time.Location) model.Event {
	out := model.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Color:       ev.Source.Color,
	}

	startLocal := start.In(displayLoc)
	endLocal := end.In(displayLoc)

	if ev.AllDay {
		startDay := model.Midnight(startLocal)
		endDay := model.Midnight(endLocal)
		if !endDay.After(startDay) {
			// Some feeds emit DTEND == DTSTART for one-day events; the
			// exclusive-end convention wants the following date.
			endDay = startDay.AddDate(0, 0, 1)
		}
		out.Start = model.NewDate(startDay.Year(), startDay.Month(), startDay.Day(), displayLoc)
		out.End = model.NewDate(endDay.Year(), endDay.Month(), endDay.Day(), displayLoc)
	} else {
		if endLocal.Before(startLocal) {
			endLocal = startLocal
		}
		out.Start = model.NewInstant(startLocal)
		out.End = model.NewInstant(endLocal)
	}

	out.ID = eventID(ev, startLocal, instance)
	return out
}

// eventID builds a stable unique ID: source-qualified UID, with a
// per-instance suffix for recurring occurrences.
func eventID(ev ParsedEvent, start time.Time, instance bool) string {
	id := ev.Source.ID + "/" + ev.UID
	if instance {
		id += "#" + start.Format(time.RFC3339)
	}
	return id
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
