package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursorcrm/birthday-office/internal/registry"
)

const rosterJSON = `[
  {"id":"1","customer_id":"C1","first_name":"Ana","last_name":"Gomez","email":"ana@example.com","phone":"555-0101","date_of_birth":"1990-03-05"},
  {"id":"2","customer_id":"C2","first_name":"Luis","last_name":"Paz","email":"luis@example.com","phone":"555-0102","date_of_birth":"1985-03-20T00:00:00+00:00"},
  {"id":"3","customer_id":"C3","first_name":"Eva","last_name":"Ruiz","email":"eva@example.com","phone":"555-0103","date_of_birth":""}
]`

func TestHTTPFetcher_FetchClients(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rosterJSON))
	}))
	defer srv.Close()

	f := registry.NewHTTPFetcher(srv.URL, "secret-key")
	clients, err := f.FetchClients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/clients", gotPath)
	assert.Equal(t, "select=*&order=last_name.asc", gotQuery)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "Bearer secret-key", gotAuth)

	require.Len(t, clients, 3)
	assert.Equal(t, "C1", clients[0].CustomerID)
	assert.True(t, clients[0].DateOfBirth.Equal(time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, clients[1].YearKnown)
	assert.False(t, clients[2].HasBirthDate(), "missing date kept as zero time")
}

func TestHTTPFetcher_KeepsRowsWithBadDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"9","customer_id":"C9","first_name":"Mal","last_name":"Dato","date_of_birth":"31/12/1990"}]`))
	}))
	defer srv.Close()

	f := registry.NewHTTPFetcher(srv.URL, "")
	clients, err := f.FetchClients(context.Background())
	require.NoError(t, err)

	require.Len(t, clients, 1, "a bad date never drops the record")
	assert.Equal(t, "C9", clients[0].CustomerID)
	assert.False(t, clients[0].HasBirthDate())
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := registry.NewHTTPFetcher(srv.URL, "")
	_, err := f.FetchClients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestHTTPFetcher_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	f := registry.NewHTTPFetcher(srv.URL, "")
	_, err := f.FetchClients(context.Background())
	assert.Error(t, err)
}

func TestHTTPFetcher_EmptyBaseURL(t *testing.T) {
	f := registry.NewHTTPFetcher("", "")
	_, err := f.FetchClients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry base URL is empty")
}

func TestHTTPFetcher_RejectsUnsupportedScheme(t *testing.T) {
	f := registry.NewHTTPFetcher("ftp://registry.example.com", "")
	_, err := f.FetchClients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported protocol scheme")
}

func TestHTTPFetcher_NoAuthHeadersWithoutKey(t *testing.T) {
	var sawAPIKey, sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAPIKey = r.Header.Get("apikey") != ""
		sawAuth = r.Header.Get("Authorization") != ""
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := registry.NewHTTPFetcher(srv.URL, "")
	_, err := f.FetchClients(context.Background())
	require.NoError(t, err)
	assert.False(t, sawAPIKey)
	assert.False(t, sawAuth)
}
