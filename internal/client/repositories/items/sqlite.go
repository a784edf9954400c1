package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/dbx"
)

// ErrNotFound is returned when no cached row matches.
var ErrNotFound = errors.New("item not found")

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, userID string, item *models.VaultItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, user_id, type, title, secret, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			secret = excluded.secret,
			updated_at = excluded.updated_at
	`, item.ID, userID, string(item.Type), item.Title, item.Secret, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert item[%s]: %w", item.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID, id string) (*models.VaultItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, title, secret, updated_at FROM items
		WHERE user_id = ? AND id = ?
	`, userID, id)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item[%s]: %w", id, err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, title, secret, updated_at FROM items
		WHERE user_id = ? ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	result := make([]*models.VaultItem, 0)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete item[%s]: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}

func scanItem(scan func(...any) error) (*models.VaultItem, error) {
	var item models.VaultItem
	var typ string
	if err := scan(&item.ID, &typ, &item.Title, &item.Secret, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Type = models.ItemType(typ)
	return &item, nil
}
