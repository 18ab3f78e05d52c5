package favorites

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallhub/pkg/models"
)

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testImageID = "22222222-2222-2222-2222-222222222222"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../docs/schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, 'tester', 'tester@example.com', 'x')
	`, testUserID)
	require.NoError(t, err)

	return db
}

func insertImage(t *testing.T, db *sql.DB, id, title, createdAt string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO images (id, owner_id, url, title, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, testUserID, "/static-images/"+title+".jpg", title, createdAt)
	require.NoError(t, err)
}

func TestAddInternalIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	insertImage(t, db, testImageID, "skull", "2025-01-01 10:00:00")

	require.NoError(t, repo.AddInternal(ctx, testUserID, testImageID))
	require.NoError(t, repo.AddInternal(ctx, testUserID, testImageID))

	items, err := repo.ListInternal(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, testImageID, items[0].ID)
}

func TestRemoveInternalIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	insertImage(t, db, testImageID, "skull", "2025-01-01 10:00:00")

	// removing something never added is a no-op
	require.NoError(t, repo.RemoveInternal(ctx, testUserID, testImageID))

	require.NoError(t, repo.AddInternal(ctx, testUserID, testImageID))
	require.NoError(t, repo.RemoveInternal(ctx, testUserID, testImageID))
	require.NoError(t, repo.RemoveInternal(ctx, testUserID, testImageID))

	ok, err := repo.IsFavorite(ctx, testUserID, testImageID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInternalRejectsMalformedID(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.AddInternal(ctx, testUserID, "not-a-uuid"), ErrInvalidID)
	assert.ErrorIs(t, repo.RemoveInternal(ctx, testUserID, ""), ErrInvalidID)
}

func TestUnknownUserIsRejected(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	ghost := "99999999-9999-9999-9999-999999999999"
	assert.ErrorIs(t, repo.AddInternal(ctx, ghost, testImageID), ErrUserNotFound)
	assert.ErrorIs(t, repo.AddExternal(ctx, ghost, models.ExternalFavorite{ExternalID: "abc", URL: "https://x/y.jpg"}), ErrUserNotFound)
	_, err := repo.ListAll(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddExternalValidatesRequiredFields(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{URL: "https://x/y.jpg"}), ErrValidation)
	assert.ErrorIs(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{ExternalID: "abc"}), ErrValidation)
	assert.ErrorIs(t, repo.RemoveExternal(ctx, testUserID, "  "), ErrValidation)
}

func TestAddExternalDefaultsTitleAndSource(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	err := repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-1",
		URL:        "https://images.unsplash.com/ext-1.jpg",
		Author:     "Jane Doe",
	})
	require.NoError(t, err)

	items, err := repo.ListAll(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Image by Jane Doe", items[0].Title)
	assert.Equal(t, models.KindExternal, items[0].Kind)
}

func TestAddExternalUpsertOverwritesFieldsKeepsOrder(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-1", URL: "https://x/1.jpg", Title: "First",
	}))
	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-2", URL: "https://x/2.jpg", Title: "Second",
	}))

	// re-adding ext-1 refreshes its fields but must not move it behind ext-2
	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-1", URL: "https://x/1-new.jpg", Title: "First updated",
	}))

	items, err := repo.ListAll(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ext-1", items[0].ID)
	assert.Equal(t, "First updated", items[0].Title)
	assert.Equal(t, "https://x/1-new.jpg", items[0].URL)
	assert.Equal(t, "ext-2", items[1].ID)
}

func TestRemoveExternalIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-1", URL: "https://x/1.jpg",
	}))

	require.NoError(t, repo.RemoveExternal(ctx, testUserID, "ext-1"))
	require.NoError(t, repo.RemoveExternal(ctx, testUserID, "ext-1"))

	ok, err := repo.IsFavorite(ctx, testUserID, "ext-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsFavoriteChecksBothCollections(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	insertImage(t, db, testImageID, "skull", "2025-01-01 10:00:00")
	require.NoError(t, repo.AddInternal(ctx, testUserID, testImageID))
	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-1", URL: "https://x/1.jpg",
	}))

	for _, id := range []string{testImageID, "ext-1"} {
		ok, err := repo.IsFavorite(ctx, testUserID, id)
		require.NoError(t, err)
		assert.True(t, ok, id)
	}

	ok, err := repo.IsFavorite(ctx, testUserID, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListInternalDropsDanglingReferences(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	insertImage(t, db, testImageID, "skull", "2025-01-01 10:00:00")
	require.NoError(t, repo.AddInternal(ctx, testUserID, testImageID))

	// delete the catalog row out from under the favorite
	_, err := db.Exec(`DELETE FROM images WHERE id = ?`, testImageID)
	require.NoError(t, err)

	items, err := repo.ListInternal(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, items)

	all, err := repo.ListAll(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, all)

	// the raw reference row is still there
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user_favorites WHERE user_id = ?`, testUserID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestListAllMergesInternalThenExternal(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	older := "33333333-3333-3333-3333-333333333333"
	newer := "44444444-4444-4444-4444-444444444444"
	insertImage(t, db, older, "older", "2025-01-01 10:00:00")
	insertImage(t, db, newer, "newer", "2025-02-01 10:00:00")

	require.NoError(t, repo.AddInternal(ctx, testUserID, older))
	require.NoError(t, repo.AddInternal(ctx, testUserID, newer))
	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-a", URL: "https://x/a.jpg",
	}))
	require.NoError(t, repo.AddExternal(ctx, testUserID, models.ExternalFavorite{
		ExternalID: "ext-b", URL: "https://x/b.jpg",
	}))

	items, err := repo.ListAll(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 4)

	// internal entries first, newest image first, then external in insertion order
	assert.Equal(t, newer, items[0].ID)
	assert.Equal(t, models.KindInternal, items[0].Kind)
	assert.Equal(t, older, items[1].ID)
	assert.Equal(t, "ext-a", items[2].ID)
	assert.Equal(t, models.KindExternal, items[2].Kind)
	assert.Equal(t, "ext-b", items[3].ID)

	for _, it := range items {
		require.NotNil(t, it.DateAdded)
	}
}
