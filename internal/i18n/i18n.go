// Package i18n holds the localized strings of the reporting surface: event
// summaries, month names for filenames, and empty-state messages. Spanish is
// the default, matching the store's front office.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/cursorcrm/birthday-office/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message keys.
const (
	KeyEventSummary = "event_summary"
	KeyEmptyMonth   = "empty_month"
	KeyCalendarName = "calendar_name"

	monthKeyPrefix = "month_"
)

// Translator resolves message keys for one configured language.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer

	// Languages lists the locale codes detected in the embedded files.
	Languages []string
}

// New builds a Translator from the embedded locale files. Unknown languages
// fall back through the bundle's default (Spanish).
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.Spanish)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = goi18n.NewLocalizer(bundle, lang, config.DefaultLanguage)
	return t
}

// Msg translates a key without template data; on a miss the key itself is
// returned so callers always get a renderable string.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates a key with template data.
func (t *Translator) MsgData(key string, data map[string]any) string {
	if t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// MonthName returns the localized lowercase month name for a zero-based
// month index, as used in report filenames. Out-of-range indexes yield the
// empty string rather than a raw message key.
func (t *Translator) MonthName(month int) string {
	if month < config.MonthMin || month >= config.MonthsPerYear {
		return ""
	}
	return t.Msg(fmt.Sprintf("%s%d", monthKeyPrefix, month))
}

// Summary renders the localized birthday event summary for a display name.
func (t *Translator) Summary(name string) string {
	return t.MsgData(KeyEventSummary, map[string]any{"Name": name})
}

// CalendarName returns the localized calendar display name embedded in the
// iCalendar export.
func (t *Translator) CalendarName() string {
	return t.Msg(KeyCalendarName)
}

// EmptyMonth returns the localized empty-state message for a month without
// birthdays.
func (t *Translator) EmptyMonth() string {
	return t.Msg(KeyEmptyMonth)
}
