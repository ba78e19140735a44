package export

import (
	"encoding/csv"
	"strings"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/registry"
)

// csvHeader is the fixed column order of the birthday report. The labels
// are the literal headers the back office has always shipped.
var csvHeader = []string{
	config.CSVHeaderID,
	config.CSVHeaderFirst,
	config.CSVHeaderLast,
	config.CSVHeaderBirth,
	config.CSVHeaderEmail,
	config.CSVHeaderPhone,
}

// ToCSV renders the client list as an RFC 4180 report: header row, then one
// row per client with the birth date as DD/MM/YYYY. Fields containing the
// delimiter, quotes or newlines are quoted; older exports joined naively and
// broke on commas in names.
//
// The result carries no trailing newline, so an empty list yields exactly
// the header line. The function never touches disk.
func ToCSV(clients []registry.Client) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	// csv.Writer only fails on malformed field counts or a failing writer;
	// neither can happen against a strings.Builder with fixed-width rows.
	_ = w.Write(csvHeader)
	for _, c := range clients {
		birth := ""
		if c.HasBirthDate() {
			birth = c.DateOfBirth.Format(config.DateFormatCSV)
		}
		_ = w.Write([]string{
			c.CustomerID,
			c.FirstName,
			c.LastName,
			birth,
			c.Email,
			c.Phone,
		})
	}
	w.Flush()

	return strings.TrimRight(b.String(), "\n")
}
