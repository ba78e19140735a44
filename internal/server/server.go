// Package server exposes the birthday engine over HTTP: a cached iCalendar
// subscription feed, an on-demand CSV report, the calendar grid as JSON, and
// the shared view state driving the list/calendar screens.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/engine"
	"github.com/cursorcrm/birthday-office/internal/export"
	"github.com/cursorcrm/birthday-office/internal/i18n"
	"github.com/cursorcrm/birthday-office/internal/registry"
	"github.com/cursorcrm/birthday-office/internal/view"
)

// feedItem stores the rendered calendar feed and its metadata for HTTP caching.
type feedItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// rosterItem is the immutable roster snapshot served to report handlers.
type rosterItem struct {
	clients []registry.Client
}

// Server handles the back-office HTTP surface.
type Server struct {
	// feed and roster use atomic.Pointer for lock-free reads: both are read
	// on every request but replaced only when a sync completes.
	feed   atomic.Pointer[feedItem]
	roster atomic.Pointer[rosterItem]

	Addr  string
	View  *view.State
	Clock engine.Clock
	T     *i18n.Translator
}

// New creates a server bound to the given listen address.
func New(addr string, state *view.State, clock engine.Clock, t *i18n.Translator) *Server {
	return &Server{
		Addr:  addr,
		View:  state,
		Clock: clock,
		T:     t,
	}
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrListenRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteHealth, s.handleHealth)
	mux.HandleFunc(config.RouteFeedICS, s.handleFeed)
	mux.HandleFunc(config.RouteReportCSV, s.handleCSV)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendar)
	mux.HandleFunc(config.RouteView, s.handleView)
	mux.HandleFunc(config.RouteViewMonth, s.handleSelectMonth)
	mux.HandleFunc(config.RouteViewMonthNext, s.handleMonthStep(true))
	mux.HandleFunc(config.RouteViewMonthPrev, s.handleMonthStep(false))
	mux.HandleFunc(config.RouteViewMode, s.handleMode)
	mux.HandleFunc(config.RouteViewSort, s.handleSort)

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, 1)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyListen, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateFeed atomically replaces the served iCalendar feed.
func (s *Server) UpdateFeed(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &feedItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.feed.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// UpdateRoster atomically replaces the roster snapshot behind the report and
// calendar handlers.
func (s *Server) UpdateRoster(clients []registry.Client) {
	s.roster.Store(&rosterItem{clients: clients})
}

func (s *Server) clients() ([]registry.Client, bool) {
	item := s.roster.Load()
	if item == nil {
		return nil, false
	}
	return item.clients, true
}

// requireMethod validates the request method, answering 405 with an Allow
// header on mismatch.
func requireMethod(w http.ResponseWriter, r *http.Request, allow string, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set(config.HeaderAllow, allow)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsRead, http.MethodGet, http.MethodHead) {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleFeed serves the full-roster ICS subscription feed with HTTP caching
// support (ETag / Last-Modified / 304).
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsRead, http.MethodGet, http.MethodHead) {
		return
	}

	item := s.feed.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// monthParam reads the optional zero-based month query parameter, falling
// back to the shared view selection.
func (s *Server) monthParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get(config.QueryParamMonth)
	if raw == "" {
		return s.View.Snapshot().Month, nil
	}
	month, err := strconv.Atoi(raw)
	if err != nil || !engine.ValidMonth(month) {
		return 0, engine.ErrMonthOutOfRange
	}
	return month, nil
}

// handleCSV serves the month's birthday report as a CSV attachment.
func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsRead, http.MethodGet, http.MethodHead) {
		return
	}

	clients, ok := s.clients()
	if !ok {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	month, err := s.monthParam(r)
	if err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}

	snap := s.View.Snapshot()
	bucket, err := engine.BucketByMonth(clients, month)
	if err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}
	sorted := engine.SortByDay(bucket, snap.Order)

	doc := export.CSVDocument(export.ToCSV(sorted), s.T.MonthName(month), snap.Year)

	w.Header().Set(config.HeaderContentType, config.MimeTextCSV)
	w.Header().Set(config.HeaderContentDisp, fmt.Sprintf(config.FormatAttachment, doc.Filename))
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)

	if r.Method == http.MethodGet {
		if _, err := w.Write(doc.Content); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleCalendar serves the month grid as JSON for the calendar screen.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsRead, http.MethodGet) {
		return
	}

	clients, ok := s.clients()
	if !ok {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	snap := s.View.Snapshot()

	month, err := s.monthParam(r)
	if err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}

	year := snap.Year
	if raw := r.URL.Query().Get(config.QueryParamYear); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year <= 0 {
			http.Error(w, config.HTTPMsgBadYear, http.StatusBadRequest)
			return
		}
	}

	grid, err := engine.BuildGrid(clients, year, month, s.Clock.Now())
	if err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}

	s.writeJSON(w, grid)
}

// viewResponse is the state snapshot plus the derived badge counters.
// Message carries the localized empty-state line when the selected month has
// no birthdays.
type viewResponse struct {
	view.Snapshot
	Stats   engine.Stats `json:"stats"`
	Message string       `json:"message,omitempty"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsRead, http.MethodGet) {
		return
	}

	snap := s.View.Snapshot()
	clients, _ := s.clients()
	resp := viewResponse{
		Snapshot: snap,
		Stats:    engine.Summarize(clients, snap.Month, s.Clock.Now()),
	}
	if resp.Stats.ThisMonth == 0 {
		resp.Message = s.T.EmptyMonth()
	}
	s.writeJSON(w, resp)
}

// monthRequest is the body of POST /view/month.
type monthRequest struct {
	Month int `json:"month"`
}

func (s *Server) handleSelectMonth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsPost, http.MethodPost) {
		return
	}

	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}
	if err := s.View.SelectMonth(req.Month); err != nil {
		http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.View.Snapshot())
}

func (s *Server) handleMonthStep(forward bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, config.AllowedMethodsPost, http.MethodPost) {
			return
		}
		if forward {
			s.View.Next()
		} else {
			s.View.Previous()
		}
		s.writeJSON(w, s.View.Snapshot())
	}
}

// modeRequest is the body of POST /view/mode.
type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsPost, http.MethodPost) {
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPMsgBadMode, http.StatusBadRequest)
		return
	}
	switch view.Mode(req.Mode) {
	case view.ModeList, view.ModeCalendar:
		s.View.SetMode(view.Mode(req.Mode))
	default:
		http.Error(w, config.HTTPMsgBadMode, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.View.Snapshot())
}

// sortRequest is the body of POST /view/sort.
type sortRequest struct {
	Order string `json:"order"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, config.AllowedMethodsPost, http.MethodPost) {
		return
	}

	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPMsgBadSort, http.StatusBadRequest)
		return
	}
	switch engine.SortOrder(req.Order) {
	case engine.SortAsc, engine.SortDesc:
		s.View.SetOrder(engine.SortOrder(req.Order))
	default:
		http.Error(w, config.HTTPMsgBadSort, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.View.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
