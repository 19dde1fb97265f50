package web

import (
	"html/template"
	"net/http"
	"time"

	"calgrid/internal/layout"
	appLog "calgrid/internal/log"
)

// The /grid page is a dependency-free HTML rendering of the week layout.
// It exists as the capture target for the preview screenshot and doubles
// as a human-checkable view of what the engine computed: every block is
// absolutely positioned straight from PositionedEvent, so what the page
// shows is exactly what the engine decided.
//
// data-grid-ready="true" on <body> is the capture-readiness signal; the
// page is fully server-rendered so it is set statically.
var gridTmpl = template.Must(template.New("grid").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>calgrid {{.WeekStart}}</title>
<style>
  body { font-family: sans-serif; margin: 0; background: #fff; color: #111; }
  .bars { display: flex; border-bottom: 1px solid #ccc; }
  .grid { display: flex; }
  .day { flex: 1 1 0; border-left: 1px solid #ddd; }
  .day h2 { font-size: 13px; text-align: center; margin: 4px 0; font-weight: 600; }
  .canvas { position: relative; height: {{.CanvasHeight}}px; }
  .hourline { position: absolute; left: 0; right: 0; border-top: 1px solid #eee; }
  .ev { position: absolute; overflow: hidden; border-radius: 3px;
        font-size: 11px; padding: 1px 3px; box-sizing: border-box; }
  .bar { font-size: 11px; border-radius: 3px; padding: 1px 4px; margin: 1px; }
</style>
</head>
<body data-grid-ready="true">
<div class="bars">
{{range .Days}}<div class="day">{{range .Bars}}<div class="bar" style="background:{{.Background}};color:{{.Foreground}}">{{.Summary}}</div>{{end}}</div>{{end}}
</div>
<div class="grid">
{{range .Days}}
  <div class="day">
    <h2>{{.Label}}</h2>
    <div class="canvas">
      {{range .HourLines}}<div class="hourline" style="top:{{.}}px"></div>{{end}}
      {{range .Timed}}<div class="ev" style="top:{{.Top}}px;height:{{.Height}}px;left:{{.LeftPct}}%;width:{{.WidthPct}}%;z-index:{{.ZIndex}};background:{{.Background}};color:{{.Foreground}}">{{.Summary}}</div>{{end}}
    </div>
  </div>
{{end}}
</div>
</body>
</html>
`))

type gridPage struct {
	WeekStart    string
	CanvasHeight float64
	Days         []gridDay
}

type gridDay struct {
	Label     string
	HourLines []float64
	Bars      []gridBar
	Timed     []gridBlock
}

type gridBar struct {
	Summary    string
	Background string
	Foreground string
}

type gridBlock struct {
	Summary    string
	Top        float64
	Height     float64
	LeftPct    float64
	WidthPct   float64
	ZIndex     int
	Background string
	Foreground string
}

// handleGrid renders the week containing ?date (default today) as HTML.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	loc := s.location()
	date, err := parseDateDefault(r.URL.Query().Get("date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	events, _ := s.store.Snapshot()
	g := s.geometry()
	wl := layout.Week(events, date, s.weekStart(), g)

	hours := s.cfg.Grid.VisibleEndHour - s.cfg.Grid.VisibleStartHour
	page := gridPage{
		WeekStart:    wl.Start.Format("2006-01-02"),
		CanvasHeight: float64(hours) * s.cfg.Grid.PixelsPerHour,
	}

	for _, dl := range wl.Days {
		gd := gridDay{Label: dl.Day.Format("Mon 01-02")}
		for h := 0; h <= hours; h++ {
			gd.HourLines = append(gd.HourLines, float64(h)*s.cfg.Grid.PixelsPerHour)
		}
		for _, ev := range dl.Bars {
			bg, fg := ev.Color.Resolved()
			gd.Bars = append(gd.Bars, gridBar{
				Summary:    ev.DisplaySummary(),
				Background: bg,
				Foreground: fg,
			})
		}
		for _, p := range dl.Timed {
			bg, fg := p.Event.Color.Resolved()
			gd.Timed = append(gd.Timed, gridBlock{
				Summary:    p.Event.DisplaySummary(),
				Top:        p.Top,
				Height:     p.Height,
				LeftPct:    p.Left * 100,
				WidthPct:   p.Width * 100,
				ZIndex:     p.ZIndex,
				Background: bg,
				Foreground: fg,
			})
		}
		page.Days = append(page.Days, gd)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := gridTmpl.Execute(w, page); err != nil {
		appLog.Error("grid render failed", err, "date", date.Format(time.DateOnly))
	}
}
