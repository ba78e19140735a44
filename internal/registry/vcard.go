package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/cursorcrm/birthday-office/internal/config"
)

// ImportVCards decodes a vCard stream (.vcf) into client records. It is the
// migration path for stores that kept their customer list in an address book
// before moving to the hosted registry.
//
// Name strategy: FN (formatted) > N (structured) > fallback. Cards without a
// parseable BDAY are imported with a zero DateOfBirth; malformed cards are
// skipped with a warning to maximize data recovery.
func ImportVCards(r io.Reader) ([]Client, error) {
	log := slog.With(config.LogKeyComponent, config.CompRegistry)
	decoder := vcard.NewDecoder(r)

	var clients []Client
	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}

		c := Client{}
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			c.FirstName = fn.Value
		} else if n := card.Name(); n != nil {
			c.FirstName = n.GivenName
			c.LastName = n.FamilyName
		}
		if c.FirstName == "" && c.LastName == "" {
			c.FirstName = config.FallbackName
		}

		// Imported cards carry no customer number yet; synthesize a stable
		// placeholder from the import position so exports stay deterministic.
		c.CustomerID = fmt.Sprintf("VCF-%04d", len(clients)+1)

		if email := card.PreferredValue(vcard.FieldEmail); email != "" {
			c.Email = email
		}
		if phone := card.PreferredValue(vcard.FieldTelephone); phone != "" {
			c.Phone = phone
		}

		if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
			if dob, yearKnown, err := ParseDate(bday.Value); err == nil {
				c.DateOfBirth = dob
				c.YearKnown = yearKnown
			} else {
				log.Debug(config.MsgSkippedDate,
					config.LogKeyValue, bday.Value,
					config.LogKeyName, c.DisplayName(),
				)
			}
		}

		clients = append(clients, c)
	}

	if clients == nil {
		clients = []Client{}
	}
	return clients, nil
}

// FileFetcher implements RosterFetcher over a local vCard file. It backs the
// import mode: stores migrating from an address book run against their .vcf
// until the hosted registry is provisioned.
type FileFetcher struct {
	Path string
}

// NewFileFetcher validates the file extension up front so a typoed path
// fails at startup instead of on the first scheduled sync.
func NewFileFetcher(path string) (*FileFetcher, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case config.ExtVCF, config.ExtVCard:
		return &FileFetcher{Path: path}, nil
	}
	return nil, fmt.Errorf("%s: %s", config.ErrVCardExt, path)
}

// FetchClients re-reads the file on every sync, so edits to the address-book
// export show up on the next refresh without a restart.
func (f *FileFetcher) FetchClients(ctx context.Context) ([]Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardOpen, err)
	}
	defer func() { _ = file.Close() }()

	clients, err := ImportVCards(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}

	slog.Debug(config.MsgRosterFetched,
		config.LogKeyComponent, config.CompRegistry,
		config.LogKeyFile, f.Path,
		config.LogKeyCount, len(clients),
	)
	return clients, nil
}
