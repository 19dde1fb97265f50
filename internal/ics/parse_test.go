package ics

import (
	"strings"
	"testing"
	"time"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:meeting-1
SUMMARY:Team sync
DESCRIPTION:Weekly planning
LOCATION:Room 4
DTSTART:20240601T090000Z
DTEND:20240601T100000Z
END:VEVENT
BEGIN:VEVENT
UID:offsite-1
SUMMARY:Offsite
DTSTART;VALUE=DATE:20240610
DTEND;VALUE=DATE:20240612
END:VEVENT
BEGIN:VEVENT
UID:standup
SUMMARY:Standup
DTSTART:20240603T091500Z
DTEND:20240603T093000Z
RRULE:FREQ=DAILY;COUNT=10
EXDATE:20240605T091500Z,20240606T091500Z
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID at all
DTSTART:20240601T120000Z
DTEND:20240601T130000Z
END:VEVENT
END:VCALENDAR
`

func TestParseFeed(t *testing.T) {
	src := Source{ID: "work", URL: "https://example.com/work.ics"}

	events, err := ParseFeed(src, []byte(strings.ReplaceAll(sampleFeed, "\n", "\r\n")))
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}

	// The UID-less VEVENT is skipped, the rest survive.
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	byUID := make(map[string]ParsedEvent)
	for _, ev := range events {
		byUID[ev.UID] = ev
	}

	meeting, ok := byUID["meeting-1"]
	if !ok {
		t.Fatal("meeting-1 missing")
	}
	if meeting.Summary != "Team sync" || meeting.Description != "Weekly planning" || meeting.Location != "Room 4" {
		t.Errorf("meeting fields = %+v", meeting)
	}
	wantStart := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	if !meeting.Start.Equal(wantStart) {
		t.Errorf("meeting start = %v, want %v", meeting.Start, wantStart)
	}
	if meeting.AllDay {
		t.Error("timed event flagged all-day")
	}
	if meeting.Source.ID != "work" {
		t.Errorf("source = %q, want work", meeting.Source.ID)
	}

	offsite := byUID["offsite-1"]
	if !offsite.AllDay {
		t.Error("VALUE=DATE event not flagged all-day")
	}

	standup := byUID["standup"]
	if standup.RawRRule != "FREQ=DAILY;COUNT=10" {
		t.Errorf("RawRRule = %q", standup.RawRRule)
	}
	if len(standup.ExDates) != 2 {
		t.Fatalf("ExDates = %v, want 2 entries", standup.ExDates)
	}
	if !standup.ExDates[0].Equal(time.Date(2024, 6, 5, 9, 15, 0, 0, time.UTC)) {
		t.Errorf("first EXDATE = %v", standup.ExDates[0])
	}
}

func TestParseFeedRecurrenceOverride(t *testing.T) {
	feed := strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:standup
SUMMARY:Standup (moved)
DTSTART:20240604T140000Z
DTEND:20240604T141500Z
RECURRENCE-ID:20240604T091500Z
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

	events, err := ParseFeed(Source{ID: "s"}, []byte(feed))
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if !ev.IsOverride || ev.Recurrence == nil {
		t.Fatalf("override not detected: %+v", ev)
	}
	if !ev.Recurrence.Equal(time.Date(2024, 6, 4, 9, 15, 0, 0, time.UTC)) {
		t.Errorf("Recurrence = %v", *ev.Recurrence)
	}
}

func TestParseFeedEmptyBody(t *testing.T) {
	if _, err := ParseFeed(Source{ID: "s"}, nil); err == nil {
		t.Error("empty body accepted")
	}
}

func TestParseICSTime(t *testing.T) {
	got, err := parseICSTime("20240601T090000Z")
	if err != nil {
		t.Fatalf("parseICSTime: %v", err)
	}
	if !got.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	got, err = parseICSTime("20240601")
	if err != nil {
		t.Fatalf("parseICSTime date-only: %v", err)
	}
	y, m, d := got.Date()
	if y != 2024 || m != time.June || d != 1 {
		t.Errorf("date-only = %v", got)
	}

	if _, err := parseICSTime(""); err == nil {
		t.Error("empty value accepted")
	}
}
