package images

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

const testOwnerID = "11111111-1111-1111-1111-111111111111"

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
	`, testOwnerID)
	require.NoError(t, err)

	return db
}

func TestCreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	img := models.Image{
		ID:        "22222222-2222-2222-2222-222222222222",
		OwnerID:   testOwnerID,
		URL:       "https://cdn.example.com/wallpapers/skull.jpg",
		ObjectKey: "wallpapers/skull.jpg",
		Title:     "Skull",
		Tags:      []string{"dark", "art"},
	}
	require.NoError(t, repo.Create(ctx, img))

	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, img.URL, got.URL)
	assert.Equal(t, img.Title, got.Title)
	assert.Equal(t, []string{"dark", "art"}, got.Tags)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)

	got, err := repo.GetByID(context.Background(), "33333333-3333-3333-3333-333333333333")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for _, row := range []struct{ id, title, created string }{
		{"44444444-4444-4444-4444-444444444444", "older", "2025-01-01 10:00:00"},
		{"55555555-5555-5555-5555-555555555555", "newer", "2025-02-01 10:00:00"},
	} {
		_, err := db.Exec(`
			INSERT INTO images (id, owner_id, url, title, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, row.id, testOwnerID, "/static-images/"+row.title+".jpg", row.title, row.created)
		require.NoError(t, err)
	}

	items, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].Title)
	assert.Equal(t, "older", items[1].Title)
}

func TestListSearchMatchesTitleAndTags(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, models.Image{
		ID: "44444444-4444-4444-4444-444444444444", OwnerID: testOwnerID,
		URL: "/static-images/cat.jpg", Title: "Black Cat", Tags: []string{"animal"},
	}))
	require.NoError(t, repo.Create(ctx, models.Image{
		ID: "55555555-5555-5555-5555-555555555555", OwnerID: testOwnerID,
		URL: "/static-images/japan.jpg", Title: "Japan", Tags: []string{"travel"},
	}))

	items, err := repo.List(ctx, ListQuery{Search: "CAT"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Black Cat", items[0].Title)

	items, err = repo.List(ctx, ListQuery{Search: "travel"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Japan", items[0].Title)

	total, err := repo.Count(ctx, ListQuery{Search: "cat"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDeleteReportsWhetherRowExisted(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id := "44444444-4444-4444-4444-444444444444"
	require.NoError(t, repo.Create(ctx, models.Image{
		ID: id, OwnerID: testOwnerID, URL: "/static-images/x.jpg",
	}))

	ok, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
