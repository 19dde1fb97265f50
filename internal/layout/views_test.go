package layout

import (
	"testing"
	"time"

	"calgrid/internal/model"
)

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name      string
		date      time.Time
		weekStart time.Weekday
		want      time.Time
	}{
		{
			name:      "monday start mid-week",
			date:      time.Date(2024, 6, 5, 14, 30, 0, 0, time.UTC), // Wednesday
			weekStart: time.Monday,
			want:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday start on monday",
			date:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			weekStart: time.Monday,
			want:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday start on sunday",
			date:      time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
			weekStart: time.Monday,
			want:      time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday start mid-week",
			date:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			weekStart: time.Sunday,
			want:      time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "unsupported weekday falls back to monday",
			date:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			weekStart: time.Thursday,
			want:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfWeek(tc.date, tc.weekStart)
			if !got.Equal(tc.want) {
				t.Errorf("StartOfWeek(%v, %v) = %v, want %v", tc.date, tc.weekStart, got, tc.want)
			}
		})
	}
}

func TestDayLayoutSplitsBarsAndGrid(t *testing.T) {
	events := []model.Event{
		allDay("conf", 1, 3),
		timed("standup", at(9, 0), at(9, 15)),
		timed("overnight", at(-2, 0), at(2, 0)), // spans into Jun 1
	}

	dl := Day(events, day, DefaultGeometry())

	// Only the all-day event is a bar; the cross-midnight timed event
	// belongs to the grid as its clipped morning segment.
	if len(dl.Bars) != 1 || dl.Bars[0].ID != "conf" {
		t.Fatalf("bars = %v, want only conf", ids(dl.Bars))
	}
	if len(dl.Timed) != 2 {
		t.Fatalf("timed = %d events, want 2", len(dl.Timed))
	}

	// The overnight event renders exactly once on this day.
	seen := 0
	for _, ev := range dl.Bars {
		if ev.ID == "overnight" {
			seen++
		}
	}
	for _, p := range dl.Timed {
		if p.Event.ID == "overnight" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("overnight rendered %d times, want once", seen)
	}
}

func TestWeekLayoutCoversSevenDays(t *testing.T) {
	events := []model.Event{
		timed("wed", at(96+10, 0), at(96+11, 0)), // Jun 5 (Wednesday) 10:00
	}

	wl := Week(events, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), time.Monday, DefaultGeometry())

	want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if !wl.Start.Equal(want) {
		t.Fatalf("week start = %v, want %v", wl.Start, want)
	}
	for i := 0; i < 7; i++ {
		wantDay := want.AddDate(0, 0, i)
		if !wl.Days[i].Day.Equal(wantDay) {
			t.Errorf("day %d = %v, want %v", i, wl.Days[i].Day, wantDay)
		}
	}
	if len(wl.Days[2].Timed) != 1 {
		t.Errorf("wednesday timed = %d, want 1", len(wl.Days[2].Timed))
	}
}

func TestMonthLayoutWholeWeeks(t *testing.T) {
	ml := Month(nil, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), time.Monday, 0)

	if got := len(ml.Weeks); got != 5 {
		t.Fatalf("June 2024 with Monday start spans %d weeks, want 5", got)
	}

	// Grid opens on May 27 (the Monday before June 1) and the leading cells
	// are flagged out-of-month.
	first := ml.Weeks[0][0]
	if !first.Day.Equal(time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first cell = %v, want 2024-05-27", first.Day)
	}
	if first.InMonth {
		t.Errorf("May 27 flagged in-month")
	}

	// June 1 is the Saturday of the first week.
	sat := ml.Weeks[0][5]
	if !sat.Day.Equal(day) || !sat.InMonth {
		t.Errorf("June 1 cell = (%v, inMonth %v)", sat.Day, sat.InMonth)
	}

	last := ml.Weeks[4][6]
	if !last.Day.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last cell = %v, want 2024-06-30", last.Day)
	}
}

func TestMonthCellOverflow(t *testing.T) {
	events := []model.Event{
		timed("a", at(9, 0), at(10, 0)),
		timed("b", at(10, 0), at(11, 0)),
		timed("c", at(11, 0), at(12, 0)),
		timed("d", at(12, 0), at(13, 0)),
		timed("e", at(13, 0), at(14, 0)),
	}

	ml := Month(events, day, time.Monday, 3)

	var cell MonthCell
	found := false
	for _, week := range ml.Weeks {
		for _, c := range week {
			if c.Day.Equal(day) {
				cell, found = c, true
			}
		}
	}
	if !found {
		t.Fatal("June 1 cell missing")
	}

	if len(cell.Events) != 3 {
		t.Errorf("shown events = %d, want 3", len(cell.Events))
	}
	if cell.More != 2 {
		t.Errorf("More = %d, want 2", cell.More)
	}
	// The cap keeps the earliest events.
	if got := ids(cell.Events); got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("shown events = %v, want a b c", got)
	}
}

func TestAgendaOmitsEmptyDays(t *testing.T) {
	events := []model.Event{
		timed("today", at(9, 0), at(10, 0)),
		timed("later", at(72+9, 0), at(72+10, 0)), // Jun 4
		allDay("conf", 2, 4),                      // Jun 2-3
	}

	groups := Agenda(events, day, 7)
	if len(groups) != 4 {
		t.Fatalf("got %d groups, want 4", len(groups))
	}

	wantDays := []time.Time{
		day,
		day.AddDate(0, 0, 1),
		day.AddDate(0, 0, 2),
		day.AddDate(0, 0, 3),
	}
	for i, g := range groups {
		if !g.Day.Equal(wantDays[i]) {
			t.Errorf("group %d day = %v, want %v", i, g.Day, wantDays[i])
		}
	}

	// Jun 4: "conf" spans it (its exclusive end date) ahead of "later".
	last := groups[3]
	got := ids(last.Events)
	if len(got) != 2 || got[0] != "conf" || got[1] != "later" {
		t.Errorf("Jun 4 events = %v, want [conf later]", got)
	}
}

func TestAgendaDefaultsHorizon(t *testing.T) {
	events := []model.Event{
		timed("edge", at(6*24+9, 0), at(6*24+10, 0)), // Jun 7
		timed("past-horizon", at(7*24+9, 0), at(7*24+10, 0)),
	}

	groups := Agenda(events, day, 0)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if !groups[0].Day.Equal(day.AddDate(0, 0, 6)) {
		t.Errorf("group day = %v, want Jun 7", groups[0].Day)
	}
}
