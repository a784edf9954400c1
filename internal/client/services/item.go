package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/repositories/items"
	"github.com/antonkosov/vaultgate/internal/cryptox"
	"github.com/antonkosov/vaultgate/internal/dbx"
	"github.com/antonkosov/vaultgate/internal/logging"
	"github.com/google/uuid"
)

// ItemView is a decrypted item ready for display. Secret is nil when the
// envelope could not be decrypted; the row still renders with Degraded set.
type ItemView struct {
	ID       string
	Type     models.ItemType
	Title    string
	Secret   any
	Degraded bool
}

// ItemService stores and lists vault items. Secret payloads pass through the
// field cipher before they leave the process, so the backend and the local
// cache only ever see envelopes.
type ItemService interface {
	Add(ctx context.Context, userID string, typ models.ItemType, title string, secret any) (string, error)
	List(ctx context.Context, userID string) ([]ItemView, error)
	Get(ctx context.Context, userID, id string) (*ItemView, error)
	Delete(ctx context.Context, userID, id string) error
	// Refresh replaces the local cache with the server's item list.
	Refresh(ctx context.Context, userID string) error
}

type itemService struct {
	client client.Client
	cipher *cryptox.FieldCipher
	db     *sql.DB
	log    logging.Logger
}

func NewItemService(c client.Client, cipher *cryptox.FieldCipher, db *sql.DB, log logging.Logger) ItemService {
	return &itemService{client: c, cipher: cipher, db: db, log: log}
}

func (s *itemService) repo() items.Repository {
	return items.NewSQLiteRepository(s.db)
}

// Add encrypts the secret, pushes the item to the backend, and mirrors it into
// the local cache.
func (s *itemService) Add(ctx context.Context, userID string, typ models.ItemType, title string, secret any) (string, error) {
	envelope, err := s.cipher.Encrypt(secret)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}

	item := &models.VaultItem{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Secret:    envelope,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.client.SaveItem(ctx, userID, item); err != nil {
		return "", fmt.Errorf("saving error: %w", err)
	}
	if err := s.repo().Upsert(ctx, userID, item); err != nil {
		// cache write failure is not fatal: the server copy is authoritative
		s.log.Warn(ctx, "item cache write failed", "itemId", item.ID, "error", err)
	}
	return item.ID, nil
}

// List renders the cached items. A row whose envelope fails to decrypt comes
// back with Degraded=true and an empty Secret instead of failing the listing.
func (s *itemService) List(ctx context.Context, userID string) ([]ItemView, error) {
	rows, err := s.repo().GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}

	result := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		view := ItemView{ID: row.ID, Type: row.Type, Title: row.Title}

		var secret any
		if err := s.cipher.DecryptInto(row.Secret, &secret); err != nil {
			s.log.Warn(ctx, "item decryption failed", "itemId", row.ID, "error", err)
			view.Degraded = true
			view.Secret = map[string]any{}
		} else {
			view.Secret = secret
		}
		result = append(result, view)
	}
	return result, nil
}

func (s *itemService) Get(ctx context.Context, userID, id string) (*ItemView, error) {
	row, err := s.repo().GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving item: %w", err)
	}

	view := &ItemView{ID: row.ID, Type: row.Type, Title: row.Title}
	var secret any
	if err := s.cipher.DecryptInto(row.Secret, &secret); err != nil {
		s.log.Warn(ctx, "item decryption failed", "itemId", row.ID, "error", err)
		view.Degraded = true
		view.Secret = map[string]any{}
		return view, nil
	}
	view.Secret = secret
	return view, nil
}

func (s *itemService) Delete(ctx context.Context, userID, id string) error {
	if err := s.client.DeleteItem(ctx, userID, id); err != nil {
		return fmt.Errorf("error deleting item: %w", err)
	}
	return s.repo().DeleteByID(ctx, userID, id)
}

// Refresh pulls the server's items and swaps the cache in one transaction.
func (s *itemService) Refresh(ctx context.Context, userID string) error {
	fetched, err := s.client.ListItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("error fetching items: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := items.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx, userID); err != nil {
			return err
		}
		for _, item := range fetched {
			if err := repo.Upsert(ctx, userID, item); err != nil {
				return err
			}
		}
		return nil
	})
}
