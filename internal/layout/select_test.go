package layout

import (
	"testing"
	"time"

	"calgrid/internal/model"
)

func allDay(id string, startDay, endDay int) model.Event {
	return model.Event{
		ID:    id,
		Start: model.NewDate(2024, time.June, startDay, time.UTC),
		End:   model.NewDate(2024, time.June, endDay, time.UTC),
	}
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func TestEventsForDay(t *testing.T) {
	events := []model.Event{
		timed("late", at(15, 0), at(16, 0)),
		timed("early", at(8, 0), at(9, 0)),
		timed("previous", at(-10, 0), at(-9, 0)),
		allDay("conf", 1, 3),
	}

	got := ids(EventsForDay(events, day))
	want := []string{"conf", "early", "late"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	// All-day events carry a midnight start, so "conf" sorts first.
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSpanningEventsForDay(t *testing.T) {
	events := []model.Event{
		allDay("conf", 1, 4),                     // Jun 1-3
		allDay("single", 2, 3),                   // Jun 2 only
		timed("overnight", at(22, 0), at(26, 0)), // Jun 1 22:00 - Jun 2 02:00
		timed("plain", at(9, 0), at(10, 0)),
	}

	jun2 := day.AddDate(0, 0, 1)
	got := ids(SpanningEventsForDay(events, jun2))
	want := map[string]bool{"conf": true, "overnight": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want conf and overnight", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected spanning event %q", id)
		}
	}

	// On the start day nothing is a continuation yet.
	if got := SpanningEventsForDay(events, day); len(got) != 0 {
		t.Errorf("start day continuations = %v, want none", ids(got))
	}
}

func TestAllEventsForDay(t *testing.T) {
	events := []model.Event{
		timed("plain", at(9, 0), at(10, 0)),
		allDay("conf", 1, 4),
		timed("elsewhere", at(72, 0), at(73, 0)),
	}

	got := ids(AllEventsForDay(events, day))
	// Multi-day first per the layout ordering.
	want := []string{"conf", "plain"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortForLayoutUnresolvableLast(t *testing.T) {
	events := []model.Event{
		{ID: "broken"},
		timed("b", at(10, 0), at(11, 0)),
		timed("a", at(9, 0), at(10, 0)),
	}

	SortForLayout(events)
	got := ids(events)
	want := []string{"a", "b", "broken"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
