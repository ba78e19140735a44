package engine

import (
	"log/slog"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/registry"
)

// Stats summarizes one pass over the roster, logged after every sync and
// exposed on the view endpoint for header badges.
type Stats struct {
	Total     int `json:"total_clients"`
	WithBday  int `json:"birthdays_found"`
	Today     int `json:"birthdays_today"`
	ThisMonth int `json:"birthdays_this_month"`
}

// Summarize counts usable birth dates, today's birthdays (month+day match,
// year ignored) and the selected month's birthdays in a single pass.
func Summarize(clients []registry.Client, month int, now time.Time) Stats {
	var s Stats
	s.Total = len(clients)

	_, todayMonth, todayDay := now.Date()
	selected := monthOf(month)

	for _, c := range clients {
		if !c.HasBirthDate() {
			continue
		}
		s.WithBday++
		if c.DateOfBirth.Month() == todayMonth && c.DateOfBirth.Day() == todayDay {
			s.Today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, c.DisplayName(),
				config.LogKeyDOB, c.DateOfBirth.Format(config.DateFormatFullDash),
			)
		}
		if ValidMonth(month) && c.DateOfBirth.Month() == selected {
			s.ThisMonth++
		}
	}
	return s
}

// Log emits the summary in the structured form the operators grep for.
func (s Stats) Log() {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, s.Total),
			slog.Int(config.LogKeyFound, s.WithBday),
			slog.Int(config.LogKeyToday, s.Today),
		),
	)
}
