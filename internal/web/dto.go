package web

import (
	"time"

	"calgrid/internal/layout"
	"calgrid/internal/model"
)

// eventsResponse is the JSON shape for /api/events.
type eventsResponse struct {
	Events          []eventDTO `json:"events"`
	Generation      uint64     `json:"generation"`
	RangeStart      time.Time  `json:"range_start"`
	RangeEnd        time.Time  `json:"range_end"`
	DisplayTimeZone string     `json:"display_timezone"`
	WeekStart       string     `json:"week_start"`
}

// eventDTO is the JSON-friendly view of one event. Date-form boundaries
// additionally carry the bare date so clients need not re-derive it.
type eventDTO struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	AllDay   bool `json:"all_day"`
	MultiDay bool `json:"multi_day"`

	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`

	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

func newEventDTO(ev model.Event) eventDTO {
	bg, fg := ev.Color.Resolved()
	dto := eventDTO{
		ID:          ev.ID,
		Summary:     ev.DisplaySummary(),
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.IsAllDay(),
		MultiDay:    ev.IsMultiDay(),
		Background:  bg,
		Foreground:  fg,
	}
	if t, ok := ev.Start.Resolve(); ok {
		dto.Start = t
	}
	if t, ok := ev.End.Resolve(); ok {
		dto.End = t
	}
	if ev.Start.Kind == model.TimeDate {
		dto.StartDate = ev.Start.Date.Format("2006-01-02")
	}
	if ev.End.Kind == model.TimeDate {
		dto.EndDate = ev.End.Date.Format("2006-01-02")
	}
	return dto
}

// positionedDTO is one placed block in the time grid.
type positionedDTO struct {
	Event  eventDTO `json:"event"`
	Top    float64  `json:"top"`
	Height float64  `json:"height"`
	Left   float64  `json:"left"`
	Width  float64  `json:"width"`
	ZIndex int      `json:"z_index"`
}

func newPositionedDTO(p model.PositionedEvent) positionedDTO {
	return positionedDTO{
		Event:  newEventDTO(p.Event),
		Top:    p.Top,
		Height: p.Height,
		Left:   p.Left,
		Width:  p.Width,
		ZIndex: p.ZIndex,
	}
}

type dayLayoutDTO struct {
	Day   string          `json:"day"`
	Bars  []eventDTO      `json:"bars"`
	Timed []positionedDTO `json:"timed"`
}

func newDayLayoutDTO(dl layout.DayLayout) dayLayoutDTO {
	out := dayLayoutDTO{
		Day:   dl.Day.Format("2006-01-02"),
		Bars:  make([]eventDTO, 0, len(dl.Bars)),
		Timed: make([]positionedDTO, 0, len(dl.Timed)),
	}
	for _, ev := range dl.Bars {
		out.Bars = append(out.Bars, newEventDTO(ev))
	}
	for _, p := range dl.Timed {
		out.Timed = append(out.Timed, newPositionedDTO(p))
	}
	return out
}

type weekLayoutDTO struct {
	Start string         `json:"start"`
	Days  []dayLayoutDTO `json:"days"`
}

func newWeekLayoutDTO(wl layout.WeekLayout) weekLayoutDTO {
	out := weekLayoutDTO{
		Start: wl.Start.Format("2006-01-02"),
		Days:  make([]dayLayoutDTO, 0, len(wl.Days)),
	}
	for _, dl := range wl.Days {
		out.Days = append(out.Days, newDayLayoutDTO(dl))
	}
	return out
}

type monthCellDTO struct {
	Day      string     `json:"day"`
	InMonth  bool       `json:"in_month"`
	Events   []eventDTO `json:"events"`
	Spanning []eventDTO `json:"spanning"`
	More     int        `json:"more,omitempty"`
}

type monthLayoutDTO struct {
	Month string           `json:"month"`
	Weeks [][]monthCellDTO `json:"weeks"`
}

func newMonthLayoutDTO(ml layout.MonthLayout) monthLayoutDTO {
	out := monthLayoutDTO{Month: ml.Month.Format("2006-01")}
	for _, week := range ml.Weeks {
		row := make([]monthCellDTO, 0, len(week))
		for _, cell := range week {
			c := monthCellDTO{
				Day:      cell.Day.Format("2006-01-02"),
				InMonth:  cell.InMonth,
				Events:   make([]eventDTO, 0, len(cell.Events)),
				Spanning: make([]eventDTO, 0, len(cell.Spanning)),
				More:     cell.More,
			}
			for _, ev := range cell.Events {
				c.Events = append(c.Events, newEventDTO(ev))
			}
			for _, ev := range cell.Spanning {
				c.Spanning = append(c.Spanning, newEventDTO(ev))
			}
			row = append(row, c)
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

type agendaGroupDTO struct {
	Day    string     `json:"day"`
	Events []eventDTO `json:"events"`
}

func newAgendaDTO(groups []layout.AgendaGroup) []agendaGroupDTO {
	out := make([]agendaGroupDTO, 0, len(groups))
	for _, g := range groups {
		dto := agendaGroupDTO{
			Day:    g.Day.Format("2006-01-02"),
			Events: make([]eventDTO, 0, len(g.Events)),
		}
		for _, ev := range g.Events {
			dto.Events = append(dto.Events, newEventDTO(ev))
		}
		out = append(out, dto)
	}
	return out
}

// toastDTO is one fire-and-forget notification request.
type toastDTO struct {
	Summary  string    `json:"summary"`
	NewStart time.Time `json:"new_start"`
	At       time.Time `json:"at"`
}
