package engine

import (
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/registry"
)

// Cell is one slot of a month grid: either a leading blank used for weekday
// alignment, or a real calendar day with the clients whose birthday falls on
// it. Cells are derived data, recomputed on every build.
type Cell struct {
	// Day is the day-of-month, or 0 for a blank offset cell.
	Day int `json:"day"`

	// Blank marks alignment padding before day 1.
	Blank bool `json:"blank,omitempty"`

	// IsToday flags the cell matching the real current date. Full date
	// equality (year, month, day) is used so non-current years never
	// highlight a false "today".
	IsToday bool `json:"is_today,omitempty"`

	// Clients whose birth month/day matches this cell, year ignored.
	Clients []registry.Client `json:"-"`

	// Names holds the ordered display names for tooltip/badge rendering.
	Names []string `json:"names,omitempty"`
}

// HasBirthday reports whether at least one client is attached to the cell.
func (c Cell) HasBirthday() bool {
	return len(c.Clients) > 0
}

// Count returns the number of birthdays on the cell.
func (c Cell) Count() int {
	return len(c.Clients)
}

// Grid is a week-aligned expansion of one calendar month.
type Grid struct {
	Year  int `json:"year"`
	Month int `json:"month"` // zero-based

	// Offset is the weekday index of day 1 (0=Sunday .. 6=Saturday), which
	// equals the number of leading blank cells.
	Offset int `json:"offset"`

	// Cells holds Offset blanks followed by one cell per calendar day.
	Cells []Cell `json:"cells"`
}

// DaysIn returns the length of the grid's month, leap years included.
func (g *Grid) DaysIn() int {
	return daysInMonth(g.Year, monthOf(g.Month))
}

// Rows lays the cells out in 7-column rows for rendering. The final row is
// not padded; it ends with the month's last day.
func (g *Grid) Rows() [][]Cell {
	var rows [][]Cell
	for start := 0; start < len(g.Cells); start += config.DaysPerWeek {
		end := start + config.DaysPerWeek
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		rows = append(rows, g.Cells[start:end])
	}
	return rows
}

// BuildGrid expands the given month of the given year into a full grid and
// attaches every client whose birthday (month and day, year ignored) lands
// on each day. The result is a pure function of (clients, year, month, now);
// no state is cached between builds.
func BuildGrid(clients []registry.Client, year int, month int, now time.Time) (*Grid, error) {
	if !ValidMonth(month) {
		return nil, ErrMonthOutOfRange
	}

	m := monthOf(month)
	first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	days := daysInMonth(year, m)

	// Index clients by day once; the grid is at most 31 lookups.
	byDay := make(map[int][]registry.Client)
	for _, c := range clients {
		if !c.HasBirthDate() || c.DateOfBirth.Month() != m {
			continue
		}
		d := c.DateOfBirth.Day()
		byDay[d] = append(byDay[d], c)
	}

	todayYear, todayMonth, todayDay := now.Date()

	cells := make([]Cell, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= days; day++ {
		cell := Cell{
			Day:     day,
			IsToday: year == todayYear && m == todayMonth && day == todayDay,
			Clients: byDay[day],
		}
		for _, c := range cell.Clients {
			cell.Names = append(cell.Names, c.DisplayName())
		}
		cells = append(cells, cell)
	}

	return &Grid{
		Year:   year,
		Month:  month,
		Offset: offset,
		Cells:  cells,
	}, nil
}

// daysInMonth exploits time.Date's normalization: day 0 of the next month is
// the last day of this one.
func daysInMonth(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
