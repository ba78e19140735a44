package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"

	"github.com/cursorcrm/birthday-office/internal/config"
)

// Credentials stores the registry service key in the OS keyring so it never
// lands in the YAML config file or in logs.
type Credentials struct {
	// Service is the keyring service name; defaults to the app identifier.
	Service string
}

func (c Credentials) service() string {
	if c.Service == "" {
		return config.KeyringService
	}
	return c.Service
}

// ServiceKey retrieves the stored key for the given registry user. A missing
// entry is not an error; it returns an empty key so callers can fall back to
// anonymous access.
func (c Credentials) ServiceKey(user string) (string, error) {
	key, err := keyring.Get(c.service(), user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			slog.Debug(config.ErrKeyringGet,
				config.LogKeyComponent, config.CompRegistry,
				config.LogKeyName, user,
			)
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", config.ErrKeyringGet, err)
	}
	return key, nil
}

// SetServiceKey stores or replaces the key for the given registry user.
func (c Credentials) SetServiceKey(user, key string) error {
	if err := keyring.Set(c.service(), user, key); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	return nil
}

// DeleteServiceKey removes the stored key. Missing entries are ignored.
func (c Credentials) DeleteServiceKey(user string) error {
	err := keyring.Delete(c.service(), user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
