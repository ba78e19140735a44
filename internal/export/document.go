// Package export contains the two report encoders of the birthday screens:
// a CSV report and an iCalendar feed. Both are pure functions over an
// already bucketed and sorted client list; handing the result to a
// file-download sink is the caller's job.
package export

import (
	"fmt"

	"github.com/cursorcrm/birthday-office/internal/config"
)

// Document is a finished in-memory export plus the metadata the download
// sink needs. It is produced on demand and discarded, never stored.
type Document struct {
	Content  []byte
	Filename string
	MIME     string
}

// CSVDocument wraps a rendered CSV report. monthName is the localized name
// of the selected month used in the suggested filename.
func CSVDocument(content string, monthName string, year int) Document {
	return Document{
		Content:  []byte(content),
		Filename: fmt.Sprintf(config.FormatCSVReport, monthName, year),
		MIME:     config.MimeCSV,
	}
}

// ICSDocument wraps a rendered iCalendar export.
func ICSDocument(content []byte) Document {
	return Document{
		Content:  content,
		Filename: config.FileNameICSExport,
		MIME:     config.MimeICS,
	}
}
