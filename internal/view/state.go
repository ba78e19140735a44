// Package view centralizes the shared UI state of the birthday screens:
// the selected month, the display year, the list/calendar mode and the sort
// order. Historically each screen re-derived this ad hoc; here a single
// State is the source of truth and every presentation reads from it.
package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/engine"
)

// Mode names a display mode sharing the month selection.
type Mode string

const (
	ModeList     Mode = config.ViewModeList
	ModeCalendar Mode = config.ViewModeCalendar
)

// Snapshot is an immutable copy of the state handed to readers; external
// consumers never receive a mutable reference.
type Snapshot struct {
	Month int              `json:"month"` // zero-based
	Year  int              `json:"year"`
	Mode  Mode             `json:"mode"`
	Order engine.SortOrder `json:"order"`
}

// State owns the month selection and propagates navigation to a listener.
//
// Mutations are mutex-guarded and last-write-wins: rapid repeated navigation
// simply replays the latest transition. No debounce or transition lock is
// applied here; that is a presentation concern for consumers.
type State struct {
	mu    sync.Mutex
	month int
	year  int
	mode  Mode
	order engine.SortOrder

	// onMonthChange is invoked synchronously, outside the lock, with the new
	// month index whenever the selection changes.
	onMonthChange func(month int)
}

// New creates a State anchored to the clock's current month and year.
func New(clock engine.Clock) *State {
	now := clock.Now()
	return &State{
		month: int(now.Month()) - 1,
		year:  now.Year(),
		mode:  ModeList,
		order: engine.SortAsc,
	}
}

// OnMonthChange registers the external month-change listener. Passing nil
// removes it.
func (s *State) OnMonthChange(fn func(month int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMonthChange = fn
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Month: s.month, Year: s.year, Mode: s.mode, Order: s.order}
}

// SelectMonth sets the month directly (e.g. from a dropdown). The display
// year is left untouched; only step navigation rolls it over.
func (s *State) SelectMonth(month int) error {
	if !engine.ValidMonth(month) {
		return engine.ErrMonthOutOfRange
	}
	s.mu.Lock()
	notify := s.setMonthLocked(month, s.year)
	s.mu.Unlock()
	notify()
	return nil
}

// Next advances the selection one month, rolling December into January of
// the following year.
func (s *State) Next() {
	s.mu.Lock()
	month, year := s.month+1, s.year
	if month > config.MonthMax {
		month = config.MonthMin
		year++
	}
	notify := s.setMonthLocked(month, year)
	s.mu.Unlock()
	notify()
}

// Previous moves the selection one month back, rolling January into
// December of the preceding year.
func (s *State) Previous() {
	s.mu.Lock()
	month, year := s.month-1, s.year
	if month < config.MonthMin {
		month = config.MonthMax
		year--
	}
	notify := s.setMonthLocked(month, year)
	s.mu.Unlock()
	notify()
}

// SetMode switches between list and calendar. The month selection is shared
// state and survives the switch untouched.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	slog.Debug(config.MsgModeChanged,
		config.LogKeyComponent, config.CompView,
		config.LogKeyMode, string(m),
	)
}

// SetOrder flips the day-of-month sort. Independent of month selection.
func (s *State) SetOrder(order engine.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	slog.Debug(config.MsgOrderChanged,
		config.LogKeyComponent, config.CompView,
		config.LogKeyOrder, string(order),
	)
}

// Anchor returns the time.Time of day 1 of the current selection, handy for
// grid builds and filename generation.
func (s *State) Anchor() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Date(s.year, time.Month(s.month+1), 1, 0, 0, 0, 0, time.UTC)
}

// setMonthLocked applies the transition and returns the notification to run
// once the lock is released, so a listener may safely call back into State.
func (s *State) setMonthLocked(month, year int) func() {
	changed := month != s.month || year != s.year
	s.month = month
	s.year = year
	if !changed {
		return func() {}
	}

	slog.Debug(config.MsgMonthChanged,
		config.LogKeyComponent, config.CompView,
		config.LogKeyMonth, month,
		config.LogKeyYear, year,
	)

	fn := s.onMonthChange
	if fn == nil {
		return func() {}
	}
	return func() { fn(month) }
}
