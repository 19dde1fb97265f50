package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"calgrid/internal/config"
	"calgrid/internal/drag"
	"calgrid/internal/layout"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
	"calgrid/internal/store"

	"github.com/google/uuid"
)

// Server exposes the layout engine over HTTP: the events window, the
// positioned layout per view, the move/create gesture endpoints, and the
// server-rendered grid preview.
type Server struct {
	cfg   *config.Config
	store *store.Store
	drag  *drag.Handler
	debug bool
	mux   *http.ServeMux

	// Layout responses are memoized per (snapshot generation, view, date).
	// A snapshot swap bumps the generation, so results computed for a
	// stale working set are never served for a fresh one.
	layoutMu    sync.RWMutex
	layoutCache map[string]layoutCacheEntry

	// toasts is a small ring of recent notification requests, purely for
	// the UI to poll; delivery is fire-and-forget.
	toastMu sync.Mutex
	toasts  []toastDTO
}

type layoutCacheEntry struct {
	body      []byte
	gen       uint64
	updatedAt time.Time
}

const (
	layoutCacheTTL        = 30 * time.Second
	layoutCacheMaxEntries = 64
	toastRingSize         = 20
)

// NewServer constructs a Server around the shared snapshot store. If
// dragHandler is nil, a handler wired to the store and the toast ring is
// created.
func NewServer(cfg *config.Config, st *store.Store, dragHandler *drag.Handler, debug bool) *Server {
	s := &Server{
		cfg:         cfg,
		store:       st,
		drag:        dragHandler,
		debug:       debug,
		mux:         http.NewServeMux(),
		layoutCache: make(map[string]layoutCacheEntry),
	}
	if s.drag == nil {
		s.drag = &drag.Handler{
			OnUpdate: func(moved model.Event) {
				s.store.Apply(moved)
			},
			Notify: s.pushToast,
		}
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, with basic auth applied
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgrid", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer builds a Server and blocks on ListenAndServe. Graceful
// shutdown wrapping belongs to the caller.
func StartServer(_ context.Context, cfg *config.Config, st *store.Store, debug bool) error {
	s := NewServer(cfg, st, nil, debug)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/layout", s.handleLayout)
	s.mux.HandleFunc("/api/events/move", s.handleMove)
	s.mux.HandleFunc("/api/events/create", s.handleCreate)
	s.mux.HandleFunc("/api/toasts", s.handleToasts)
	s.mux.HandleFunc("/grid", s.handleGrid)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// geometry builds the grid geometry from config.
func (s *Server) geometry() layout.Geometry {
	return layout.Geometry{
		PixelsPerHour:    s.cfg.Grid.PixelsPerHour,
		VisibleStartHour: s.cfg.Grid.VisibleStartHour,
		VisibleEndHour:   s.cfg.Grid.VisibleEndHour,
	}
}

func (s *Server) weekStart() time.Weekday {
	if s.cfg.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

func (s *Server) location() *time.Location {
	return resolveLocationOrLocal(s.cfg.Timezone)
}

// handleEvents returns the events of the current snapshot overlapping a
// requested window.
//
// GET /api/events?days=7&backfill=1
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	loc := s.location()
	now := time.Now().In(loc)
	rangeStart := model.Midnight(now.AddDate(0, 0, -backfill))
	rangeEnd := model.Midnight(now.AddDate(0, 0, days)).AddDate(0, 0, 1)

	events, gen := s.store.Snapshot()

	dtos := make([]eventDTO, 0)
	for _, ev := range events {
		start, sok := ev.Start.Resolve()
		end, eok := ev.End.Resolve()
		if !sok {
			continue
		}
		if !eok || end.Before(start) {
			end = start
		}
		// Closed-open overlap with the requested window; zero-duration
		// events count on their start day.
		if !start.Before(rangeEnd) || (!end.After(rangeStart) && !start.Equal(rangeStart)) {
			continue
		}
		dtos = append(dtos, newEventDTO(ev))
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:          dtos,
		Generation:      gen,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DisplayTimeZone: loc.String(),
		WeekStart:       s.cfg.WeekStart,
	})
}

// handleLayout returns the positioned layout for a view and date.
//
// GET /api/layout?view=day|week|month|agenda&date=2024-06-01
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := q.Get("view")
	if view == "" {
		view = layout.ViewWeek
	}
	loc := s.location()
	date, err := parseDateDefault(q.Get("date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	events, gen := s.store.Snapshot()
	key := view + "|" + date.Format("2006-01-02")

	if body, ok := s.cachedLayout(key, gen); ok {
		writeJSONBody(w, http.StatusOK, body)
		return
	}

	resp, err := s.buildLayout(view, date, events)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		appLog.Error("layout marshal failed", err, "view", view)
		writeError(w, http.StatusInternalServerError, "failed to encode layout")
		return
	}

	s.storeLayout(key, gen, body)
	writeJSONBody(w, http.StatusOK, body)
}

func (s *Server) cachedLayout(key string, gen uint64) ([]byte, bool) {
	s.layoutMu.RLock()
	defer s.layoutMu.RUnlock()
	e, ok := s.layoutCache[key]
	if !ok || e.gen != gen || time.Since(e.updatedAt) >= layoutCacheTTL {
		return nil, false
	}
	return e.body, true
}

func (s *Server) storeLayout(key string, gen uint64, body []byte) {
	s.layoutMu.Lock()
	defer s.layoutMu.Unlock()
	if len(s.layoutCache) >= layoutCacheMaxEntries {
		s.layoutCache = make(map[string]layoutCacheEntry)
	}
	s.layoutCache[key] = layoutCacheEntry{body: body, gen: gen, updatedAt: time.Now()}
}

func (s *Server) buildLayout(view string, date time.Time, events []model.Event) (any, error) {
	g := s.geometry()
	switch view {
	case layout.ViewDay:
		return newDayLayoutDTO(layout.Day(events, date, g)), nil
	case layout.ViewWeek:
		wl := layout.Week(events, date, s.weekStart(), g)
		return newWeekLayoutDTO(wl), nil
	case layout.ViewMonth:
		ml := layout.Month(events, date, s.weekStart(), 0)
		return newMonthLayoutDTO(ml), nil
	case layout.ViewAgenda:
		return newAgendaDTO(layout.Agenda(events, date, s.cfg.HorizonDays)), nil
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}

// moveRequest is the body of POST /api/events/move: the drop target of a
// completed drag gesture. Hour is nil for whole-day cells (month view).
type moveRequest struct {
	ID   string   `json:"id"`
	Day  string   `json:"day"`
	Hour *float64 `json:"hour,omitempty"`
}

// handleMove applies a drag-reschedule. A malformed gesture or a no-op
// drop answers 204 with no side effects, matching the silent-abort policy
// of the grid itself.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	loc := s.location()
	day, err := time.ParseInLocation("2006-01-02", req.Day, loc)
	if err != nil || req.ID == "" {
		// Missing payload: ignore the gesture.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ev, ok := s.store.Get(req.ID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	moved, ok := s.drag.Drop(ev, day, req.Hour)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	appLog.Info("event rescheduled", "id", moved.ID, "day", req.Day)
	writeJSON(w, http.StatusOK, newEventDTO(moved))
}

// createRequest is the body of POST /api/events/create: a click on an
// empty grid cell.
type createRequest struct {
	Day  string  `json:"day"`
	Hour float64 `json:"hour"`
}

// createResponse hands the external dialog collaborator a snapped start
// and a freshly minted ID for the event it is about to build.
type createResponse struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	loc := s.location()
	day, err := time.ParseInLocation("2006-01-02", req.Day, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
		return
	}

	start := drag.SlotStart(day, req.Hour)
	writeJSON(w, http.StatusOK, createResponse{
		ID:    uuid.NewString(),
		Start: start,
	})
}

func (s *Server) pushToast(summary string, newStart time.Time) {
	appLog.Info("toast requested", "summary", summary, "new_start", newStart.Format(time.RFC3339))

	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	s.toasts = append(s.toasts, toastDTO{
		Summary:  summary,
		NewStart: newStart,
		At:       time.Now(),
	})
	if len(s.toasts) > toastRingSize {
		s.toasts = s.toasts[len(s.toasts)-toastRingSize:]
	}
}

func (s *Server) handleToasts(w http.ResponseWriter, _ *http.Request) {
	s.toastMu.Lock()
	out := make([]toastDTO, len(s.toasts))
	copy(out, s.toasts)
	s.toastMu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handlePreview serves the last captured grid screenshot. Path rule
// matches the capture pipeline in cmd/calgrid:
//   - default: /var/lib/calgrid/preview.png
//   - debug:   ./cache/preview.png
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := "/var/lib/calgrid/preview.png"
	if s.debug {
		previewPath = "./cache/preview.png"
	}
	http.ServeFile(w, r, previewPath)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseDateDefault parses YYYY-MM-DD, defaulting to today in loc.
func parseDateDefault(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return model.Midnight(time.Now().In(loc)), nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeJSONBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
