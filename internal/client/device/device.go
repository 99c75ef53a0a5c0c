// Package device manages the durable per-installation device id used
// to request guest sessions. The id is generated once and survives
// logout; no session operation ever rotates or clears it.
package device

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matthewvu2719/Journey-sub002/internal/client/store"
)

// Store is the subset of the key-value store the helper needs.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Resolve returns the stored device id, generating and persisting a
// new one on first use.
func Resolve(s Store) (string, error) {
	if id, ok := s.Get(store.KeyDeviceID); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := s.Set(store.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
