package game

import (
	"fmt"

	"hoopbot/backend/internal/models"
	"hoopbot/backend/internal/storage"
)

// Registry resolves Telegram identities into durable player records.
type Registry struct {
	Storage storage.Storage
}

// NewRegistry creates a new player registry over the given storage.
func NewRegistry(s storage.Storage) *Registry {
	return &Registry{Storage: s}
}

// Resolve fetches the player by Telegram ID, creating the record on first
// contact. The display name is refreshed on every contact so renamed users
// keep their record.
func (r *Registry) Resolve(id, name string) (*models.Player, error) {
	player, err := r.Storage.SavePlayerIfNotExists(id, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return player, nil
}
