package items

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:itemsrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE items (
  id         TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL,
  type       TEXT NOT NULL,
  title      TEXT NOT NULL,
  secret     TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM items`) })
	return db
}

func item(id, title string) *models.VaultItem {
	return &models.VaultItem{
		ID:        id,
		Type:      models.ItemLogin,
		Title:     title,
		Secret:    "envelope-" + id,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteRepository_UpsertAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	it := item("i1", "mail")
	require.NoError(t, repo.Upsert(ctx, "u1", it))

	got, err := repo.GetByID(ctx, "u1", "i1")
	require.NoError(t, err)
	require.Equal(t, it.Title, got.Title)
	require.Equal(t, it.Secret, got.Secret)
	require.Equal(t, models.ItemLogin, got.Type)

	// update in place
	it.Title = "mail (new)"
	require.NoError(t, repo.Upsert(ctx, "u1", it))
	got, err = repo.GetByID(ctx, "u1", "i1")
	require.NoError(t, err)
	require.Equal(t, "mail (new)", got.Title)
}

func TestSQLiteRepository_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.GetByID(context.Background(), "u1", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepository_GetAll_ScopedToUser(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", item("a", "one")))
	require.NoError(t, repo.Upsert(ctx, "u1", item("b", "two")))
	require.NoError(t, repo.Upsert(ctx, "u2", item("c", "other user")))

	got, err := repo.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSQLiteRepository_DeleteAndClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", item("a", "one")))
	require.NoError(t, repo.Upsert(ctx, "u1", item("b", "two")))

	require.NoError(t, repo.DeleteByID(ctx, "u1", "a"))
	got, err := repo.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, repo.Clear(ctx, "u1"))
	got, err = repo.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, got)
}
