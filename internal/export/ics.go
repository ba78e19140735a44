package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/registry"
)

// Localizer supplies the translated strings embedded in the calendar: the
// VEVENT summary per display name and the calendar's display name.
// i18n.Translator satisfies it; nil selects the Spanish fallbacks.
type Localizer interface {
	Summary(name string) string
	CalendarName() string
}

// yearlyRule is the FREQ=YEARLY recurrence attached to every event so one
// definition repeats each year on the birth month/day, independent of the
// original birth year.
func yearlyRule() string {
	opt := rrule.ROption{Freq: rrule.YEARLY}
	return opt.RRuleString()
}

// ToICS renders the client list as an iCalendar document.
//
// Each client becomes one yearly-recurring all-day VEVENT anchored to the
// current year: UID {customerID}-{year}@cursorcrm (unique per client per
// generation year, so repeated exports in different years never collide in
// calendar-client dedup), DTSTART on the birth month/day, DURATION:P1D and
// RRULE:FREQ=YEARLY. 'now' supplies only the anchor year and the DTSTAMP,
// never any filtering: callers pass an already-filtered list if they want a
// single month, and a full-roster export is equally valid input.
//
// Clients without a usable birth date are skipped. Zero events still yield
// a minimal valid VCALENDAR so feed consumers never flag the output.
func ToICS(clients []registry.Client, now time.Time, l Localizer) ([]byte, error) {
	calName := config.ICalCalName
	if l != nil {
		calName = l.CalendarName()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, calName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Local time decides the calendar day; UTC is only for ICS stamping.
	anchorYear := now.Year()
	loc := now.Location()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	rule := yearlyRule()

	for _, c := range clients {
		if !c.HasBirthDate() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID,
			fmt.Sprintf(config.FormatUID, c.CustomerID, anchorYear, config.ICalDomain))

		name := c.DisplayName()
		text := fmt.Sprintf(config.FallbackSummary, name)
		if l != nil {
			text = l.Summary(name)
		}
		event.Props.SetText(config.PropSummary, text)

		eventDate := time.Date(anchorYear, c.DateOfBirth.Month(), c.DateOfBirth.Day(), 0, 0, 0, 0, loc)
		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		// Values are set verbatim: SetText would escape and SetDuration
		// would emit PT24H instead of the all-day P1D form.
		durationProp := ical.NewProp(config.PropDuration)
		durationProp.Value = config.ICalEventDuration
		event.Props.Set(durationProp)

		rruleProp := ical.NewProp(config.PropRRule)
		rruleProp.Value = rule
		event.Props.Set(rruleProp)

		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedEncoded,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}
