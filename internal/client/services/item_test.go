package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/cryptox"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupItemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:itemsvc?mode=memory&cache=shared")
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
	return db
}

func TestItemService_AddEncryptsBeforeTransmission(t *testing.T) {
	fc := newFakeClient()
	svc := NewItemService(fc, cryptox.NewFieldCipher(nil), setupItemDB(t), testLogger())
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", models.ItemLogin, "mail", models.LoginSecret{
		Username: "user@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// the backend only ever sees the envelope
	sent := fc.items[id]
	require.NotNil(t, sent)
	require.NotContains(t, sent.Secret, "hunter2")
	require.Equal(t, "mail", sent.Title)
}

func TestItemService_GetRoundTrip(t *testing.T) {
	fc := newFakeClient()
	svc := NewItemService(fc, cryptox.NewFieldCipher(nil), setupItemDB(t), testLogger())
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", models.ItemNote, "wifi", models.NoteSecret{Text: "pass=12345"})
	require.NoError(t, err)

	view, err := svc.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.False(t, view.Degraded)
	require.Equal(t, map[string]any{"text": "pass=12345"}, view.Secret)
}

func TestItemService_ListDegradesOnBadRow(t *testing.T) {
	fc := newFakeClient()
	db := setupItemDB(t)
	svc := NewItemService(fc, cryptox.NewFieldCipher(nil), db, testLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", models.ItemNote, "good", models.NoteSecret{Text: "ok"})
	require.NoError(t, err)

	// corrupt row straight in the cache
	_, err = db.Exec(`INSERT INTO items (id,user_id,type,title,secret,updated_at)
		VALUES ('bad','u1','note','broken','garbage-not-ciphertext',CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	views, err := svc.List(ctx, "u1")
	require.NoError(t, err, "a bad row must not fail the listing")
	require.Len(t, views, 2)

	byID := map[string]ItemView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	require.True(t, byID["bad"].Degraded)
	require.Equal(t, map[string]any{}, byID["bad"].Secret)
	require.False(t, byID[viewsOther(byID, "bad")].Degraded)
}

func viewsOther(m map[string]ItemView, not string) string {
	for id := range m {
		if id != not {
			return id
		}
	}
	return ""
}

func TestItemService_RefreshReplacesCache(t *testing.T) {
	fc := newFakeClient()
	db := setupItemDB(t)
	cipher := cryptox.NewFieldCipher(nil)
	svc := NewItemService(fc, cipher, db, testLogger())
	ctx := context.Background()

	// stale local row that no longer exists server-side
	_, err := db.Exec(`INSERT INTO items (id,user_id,type,title,secret,updated_at)
		VALUES ('stale','u1','note','old','x',CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	// one item known to the server
	id, err := svc.Add(ctx, "u1", models.ItemCard, "visa", models.CardSecret{Number: "4111"})
	require.NoError(t, err)

	require.NoError(t, svc.Refresh(ctx, "u1"))

	views, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, id, views[0].ID)
}

func TestItemService_Delete(t *testing.T) {
	fc := newFakeClient()
	svc := NewItemService(fc, cryptox.NewFieldCipher(nil), setupItemDB(t), testLogger())
	ctx := context.Background()

	id, err := svc.Add(ctx, "u1", models.ItemNote, "n", models.NoteSecret{Text: "t"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", id))

	views, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, views)
	require.Empty(t, fc.items)
}
