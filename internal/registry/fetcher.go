package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cursorcrm/birthday-office/internal/config"
)

// RosterFetcher defines the contract for retrieving the client roster.
// This interface allows for mocking in tests and decoupling from the network layer.
type RosterFetcher interface {
	FetchClients(ctx context.Context) ([]Client, error)
}

// rosterRow mirrors one JSON row of the hosted backend's clients table.
// Dates arrive as strings and are parsed leniently on our side.
type rosterRow struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CreatedAt   string `json:"created_at"`
	DateOfBirth string `json:"date_of_birth"`
}

// HTTPFetcher implements RosterFetcher against the hosted backend's REST
// surface (GET /rest/v1/clients ordered by last name, the same call the web
// front office issues).
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string

	// ServiceKey authenticates the request. It is sent both as the apikey
	// header and as a bearer token, which is what the backend expects.
	ServiceKey string
}

// NewHTTPFetcher creates a fetcher with configured timeouts.
func NewHTTPFetcher(baseURL, serviceKey string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:     &http.Client{Timeout: config.HTTPTimeout},
		BaseURL:    baseURL,
		ServiceKey: serviceKey,
	}
}

// FetchClients retrieves and decodes the full client roster.
// Rows with unparseable birth dates are kept with a zero DateOfBirth and
// logged, so one bad record never blanks the whole report.
func (f *HTTPFetcher) FetchClients(ctx context.Context) ([]Client, error) {
	if f.BaseURL == "" {
		return nil, errors.New(config.ErrRegistryURLEmpty)
	}

	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Safe URL for logging: host and path only, never the key.
	safeURL := u.Scheme + "://" + u.Host + config.RegistryClientsPath
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompRegistry),
		slog.String(config.LogKeyURL, safeURL),
	)

	target := strings.TrimRight(f.BaseURL, "/") + config.RegistryClientsPath + "?" + config.RegistryClientsQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if f.ServiceKey != "" {
		req.Header.Set(config.HeaderAPIKey, f.ServiceKey)
		req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+f.ServiceKey)
	}

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRosterFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn(config.ErrRosterFetch, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: unexpected status %d", config.ErrRosterFetch, resp.StatusCode)
	}

	var rows []rosterRow
	limited := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if err := json.NewDecoder(limited).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRosterDecode, err)
	}

	clients := make([]Client, 0, len(rows))
	for _, row := range rows {
		c := Client{
			ID:         row.ID,
			CustomerID: row.CustomerID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Email:      row.Email,
			Phone:      row.Phone,
			Address:    row.Address,
		}
		if row.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, row.CreatedAt); err == nil {
				c.CreatedAt = ts
			}
		}
		if row.DateOfBirth != "" {
			if dob, yearKnown, err := ParseDate(row.DateOfBirth); err == nil {
				c.DateOfBirth = dob
				c.YearKnown = yearKnown
			} else {
				log.Warn(config.MsgSkippedRow,
					slog.String(config.LogKeyCustomer, row.CustomerID),
					slog.String(config.LogKeyValue, row.DateOfBirth),
				)
			}
		}
		clients = append(clients, c)
	}

	log.Debug(config.MsgRosterFetched,
		slog.Int(config.LogKeyCount, len(clients)),
		slog.Int64(config.LogKeyDuration, time.Since(start).Milliseconds()),
	)
	return clients, nil
}
