// Package registry supplies the client roster consumed by the birthday
// engine. It knows how to pull clients from the hosted backend and how to
// import them from vCard files; it never mutates records.
package registry

import (
	"errors"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
)

// Client is a customer record as stored by the back office. DateOfBirth may
// be the zero time when the stored value was missing or unparseable; such
// records are carried through listings but excluded from birthday logic.
type Client struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	DateOfBirth time.Time `json:"-"`

	// YearKnown is false for truncated dates (vCard --MM-DD imports) where
	// only month and day are meaningful.
	YearKnown bool `json:"-"`
}

// DisplayName joins first and last name for summaries and tooltips.
func (c Client) DisplayName() string {
	switch {
	case c.FirstName == "" && c.LastName == "":
		return config.FallbackName
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// HasBirthDate reports whether the record carries a usable birth date.
func (c Client) HasBirthDate() bool {
	return !c.DateOfBirth.IsZero()
}

// ParseDate handles the date formats encountered in registry rows and vCard
// BDAY fields. The second return value reports whether a year was present;
// truncated forms are anchored to a leap year so Feb 29 stays representable.
func ParseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
