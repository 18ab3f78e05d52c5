package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"wallhub/pkg/database"
)

func main() {
	var (
		imagesOut    = flag.String("images", "data/images.csv", "output CSV path for the image catalog")
		favoritesOut = flag.String("favorites", "data/external_favorites.csv", "output CSV path for external favorites")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportImages(ctx, db, *imagesOut); err != nil {
		log.Fatalf("export images failed: %v", err)
	}
	if err := exportExternalFavorites(ctx, db, *favoritesOut); err != nil {
		log.Fatalf("export external favorites failed: %v", err)
	}

	log.Printf("✅ exported images to %s and external favorites to %s", *imagesOut, *favoritesOut)
}

func exportImages(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "owner_id", "url", "object_key", "title", "tags", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, owner_id, url, object_key, title, tags, created_at
        FROM images
        ORDER BY created_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        string
			ownerID   string
			url       string
			objectKey string
			title     string
			tags      string
			createdAt time.Time
		)

		if err := rows.Scan(&id, &ownerID, &url, &objectKey, &title, &tags, &createdAt); err != nil {
			return err
		}

		if err := w.Write([]string{
			id,
			ownerID,
			url,
			objectKey,
			title,
			tags,
			createdAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportExternalFavorites(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "external_id", "url", "thumb", "author", "title", "source", "date_added"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT user_id, external_id, url, thumb, author, title, source, date_added
        FROM external_favorites
        ORDER BY date_added
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID     string
			externalID string
			url        string
			thumb      string
			author     string
			title      string
			source     string
			dateAdded  time.Time
		)

		if err := rows.Scan(&userID, &externalID, &url, &thumb, &author, &title, &source, &dateAdded); err != nil {
			return err
		}

		if err := w.Write([]string{
			userID,
			externalID,
			url,
			thumb,
			author,
			title,
			source,
			dateAdded.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
