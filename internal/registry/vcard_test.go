package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursorcrm/birthday-office/internal/registry"
)

const vcfStream = "BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"FN:Ana Gomez\r\n" +
	"N:Gomez;Ana;;;\r\n" +
	"EMAIL:ana@example.com\r\n" +
	"TEL:555-0101\r\n" +
	"BDAY:19900305\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"N:Paz;Luis;;;\r\n" +
	"FN:\r\n" +
	"BDAY:--03-20\r\n" +
	"END:VCARD\r\n"

func TestImportVCards(t *testing.T) {
	clients, err := registry.ImportVCards(strings.NewReader(vcfStream))
	require.NoError(t, err)
	require.Len(t, clients, 2)

	ana := clients[0]
	assert.Equal(t, "Ana Gomez", ana.FirstName, "FN wins over structured name")
	assert.Equal(t, "ana@example.com", ana.Email)
	assert.Equal(t, "555-0101", ana.Phone)
	assert.Equal(t, "VCF-0001", ana.CustomerID)
	assert.True(t, ana.DateOfBirth.Equal(time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ana.YearKnown)

	luis := clients[1]
	assert.Equal(t, "Luis", luis.FirstName, "empty FN falls back to N")
	assert.Equal(t, "Paz", luis.LastName)
	assert.Equal(t, "VCF-0002", luis.CustomerID)
	assert.False(t, luis.YearKnown, "truncated BDAY keeps no year")
	assert.Equal(t, time.March, luis.DateOfBirth.Month())
	assert.Equal(t, 20, luis.DateOfBirth.Day())
}

func TestImportVCards_UnparseableBDAYKeepsCard(t *testing.T) {
	vcf := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Eva Ruiz\r\nBDAY:circa 1970\r\nEND:VCARD\r\n"

	clients, err := registry.ImportVCards(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Eva Ruiz", clients[0].FirstName)
	assert.False(t, clients[0].HasBirthDate())
}

func TestImportVCards_NamelessCardGetsFallback(t *testing.T) {
	vcf := "BEGIN:VCARD\r\nVERSION:4.0\r\nEMAIL:x@example.com\r\nEND:VCARD\r\n"

	clients, err := registry.ImportVCards(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Unknown", clients[0].DisplayName())
}

func TestImportVCards_EmptyStream(t *testing.T) {
	clients, err := registry.ImportVCards(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestFileFetcher_ServesVCFRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcfStream), 0600))

	fetcher, err := registry.NewFileFetcher(path)
	require.NoError(t, err)

	clients, err := fetcher.FetchClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ana Gomez", clients[0].FirstName)
}

func TestFileFetcher_ReReadsFileEachSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.vcard")
	require.NoError(t, os.WriteFile(path, []byte(vcfStream), 0600))

	fetcher, err := registry.NewFileFetcher(path)
	require.NoError(t, err)

	clients, err := fetcher.FetchClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)

	one := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Eva Ruiz\r\nEND:VCARD\r\n"
	require.NoError(t, os.WriteFile(path, []byte(one), 0600))

	clients, err = fetcher.FetchClients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 1, "edits show up on the next refresh")
}

func TestNewFileFetcher_RejectsUnknownExtension(t *testing.T) {
	for _, path := range []string{"roster.csv", "roster", "roster.ics"} {
		_, err := registry.NewFileFetcher(path)
		assert.Error(t, err, "path %q must be rejected", path)
	}
}

func TestFileFetcher_MissingFile(t *testing.T) {
	fetcher, err := registry.NewFileFetcher(filepath.Join(t.TempDir(), "nope.vcf"))
	require.NoError(t, err)

	_, err = fetcher.FetchClients(context.Background())
	assert.Error(t, err)
}

func TestFileFetcher_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcfStream), 0600))

	fetcher, err := registry.NewFileFetcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetcher.FetchClients(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
