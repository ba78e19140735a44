package i18n

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every embedded locale must carry the same key set so switching languages
// never produces untranslated keys at runtime.
func TestLocaleIntegrity(t *testing.T) {
	entries, err := localeFS.ReadDir("locales")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	keySets := make(map[string]map[string]bool)
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		require.NoError(t, err)

		var msgs map[string]string
		require.NoError(t, json.Unmarshal(data, &msgs), "locale %s must be flat JSON", entry.Name())

		keys := make(map[string]bool, len(msgs))
		for k, v := range msgs {
			assert.NotEmpty(t, v, "empty translation for %q in %s", k, entry.Name())
			keys[k] = true
		}
		keySets[entry.Name()] = keys
	}

	var reference string
	for name := range keySets {
		reference = name
		break
	}
	for name, keys := range keySets {
		assert.Equal(t, keySets[reference], keys, "%s and %s must define the same keys", reference, name)
	}
}

func TestLocalesContainRequiredKeys(t *testing.T) {
	required := []string{KeyEventSummary, KeyEmptyMonth, KeyCalendarName}
	for m := 0; m < 12; m++ {
		required = append(required, fmt.Sprintf("%s%d", monthKeyPrefix, m))
	}

	for _, entry := range mustLocales(t) {
		data, err := localeFS.ReadFile("locales/" + entry)
		require.NoError(t, err)
		var msgs map[string]string
		require.NoError(t, json.Unmarshal(data, &msgs))

		for _, key := range required {
			assert.Contains(t, msgs, key, "locale %s missing %q", entry, key)
		}
	}
}

func mustLocales(t *testing.T) []string {
	t.Helper()
	entries, err := localeFS.ReadDir("locales")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNew_DetectsLanguages(t *testing.T) {
	tr := New("es")
	assert.ElementsMatch(t, []string{"es", "en"}, tr.Languages)
}

func TestSummary(t *testing.T) {
	es := New("es")
	assert.Equal(t, "🎂 Cumpleaños de Ana Gomez", es.Summary("Ana Gomez"))

	en := New("en")
	assert.Equal(t, "🎂 Ana Gomez's birthday", en.Summary("Ana Gomez"))
}

func TestMonthName(t *testing.T) {
	es := New("es")
	assert.Equal(t, "enero", es.MonthName(0))
	assert.Equal(t, "marzo", es.MonthName(2))
	assert.Equal(t, "diciembre", es.MonthName(11))

	en := New("en")
	assert.Equal(t, "march", en.MonthName(2))
}

func TestMonthName_OutOfRange(t *testing.T) {
	tr := New("es")
	assert.Empty(t, tr.MonthName(-1))
	assert.Empty(t, tr.MonthName(12))
}

func TestCalendarNameAndEmptyMonth(t *testing.T) {
	es := New("es")
	assert.Equal(t, "Cumpleaños de Clientes", es.CalendarName())
	assert.Equal(t, "No hay cumpleaños en este mes", es.EmptyMonth())

	en := New("en")
	assert.Equal(t, "Client Birthdays", en.CalendarName())
	assert.Equal(t, "No birthdays this month", en.EmptyMonth())
}

func TestUnknownLanguageFallsBackToSpanish(t *testing.T) {
	tr := New("fr")
	assert.Equal(t, "marzo", tr.MonthName(2))
}

func TestMissingKeyReturnsKey(t *testing.T) {
	tr := New("es")
	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}
