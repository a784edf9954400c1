package items

import (
	"context"

	"github.com/antonkosov/vaultgate/internal/client/models"
)

// Repository is the local cache of envelope-encrypted vault items. Rows hold
// ciphertext only; decryption happens in the service layer.
type Repository interface {
	Upsert(ctx context.Context, userID string, item *models.VaultItem) error
	GetByID(ctx context.Context, userID, id string) (*models.VaultItem, error)
	GetAll(ctx context.Context, userID string) ([]*models.VaultItem, error)
	DeleteByID(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) error
}
