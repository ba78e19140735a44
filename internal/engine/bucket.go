// Package engine implements the birthday aggregation core: month bucketing,
// day-of-month ordering, and calendar grid construction. All functions are
// pure over in-memory slices; clients are read, never mutated.
package engine

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/registry"
)

// ErrMonthOutOfRange is returned when a zero-based month index falls
// outside 0-11. Out-of-range input is a caller contract violation and is
// rejected rather than clamped.
var ErrMonthOutOfRange = errors.New(config.ErrMonthRange)

// SortOrder selects the day-of-month ordering for bucketed lists.
type SortOrder string

const (
	SortAsc  SortOrder = config.SortAsc
	SortDesc SortOrder = config.SortDesc
)

// ValidMonth reports whether m is a usable zero-based month index.
func ValidMonth(m int) bool {
	return m >= config.MonthMin && m <= config.MonthMax
}

// monthOf converts a zero-based month index to time.Month.
func monthOf(m int) time.Month {
	return time.Month(m + 1)
}

// BucketByMonth filters clients to those whose birthday falls in the given
// zero-based month. The birth year is ignored entirely: a birthday recurs
// yearly, so a client born in any year in that calendar month matches.
//
// Input order is preserved; sorting is a separate, composable step. Clients
// without a usable birth date are excluded and logged, never fatal.
func BucketByMonth(clients []registry.Client, month int) ([]registry.Client, error) {
	if !ValidMonth(month) {
		return nil, ErrMonthOutOfRange
	}

	matched := make([]registry.Client, 0)
	for _, c := range clients {
		if !c.HasBirthDate() {
			slog.Warn(config.MsgSkippedRow,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCustomer, c.CustomerID,
			)
			continue
		}
		if c.DateOfBirth.Month() == monthOf(month) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// SortByDay orders clients by the day-of-month of their birth date. The sort
// is stable: clients sharing a day keep their relative input order, which
// keeps exports deterministic given the same input list and order flag.
//
// Only the day component is compared; callers normally pass a single month's
// bucket, but multi-month input is harmless since month and year are never
// consulted. Unknown order values sort ascending. Returns a new slice.
func SortByDay(clients []registry.Client, order SortOrder) []registry.Client {
	sorted := make([]registry.Client, len(clients))
	copy(sorted, clients)

	desc := order == SortDesc
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].DateOfBirth.Day(), sorted[j].DateOfBirth.Day()
		if desc {
			return di > dj
		}
		return di < dj
	})
	return sorted
}
