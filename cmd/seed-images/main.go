package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"wallhub/pkg/database"
)

// seedOwnerID owns the bundled catalog rows so uploads and seeded
// wallpapers share one table.
const seedOwnerID = "00000000-0000-0000-0000-000000000000"

func main() {
	var (
		catalogIn = flag.String("catalog", "docs/default_images.csv", "input CSV path for the default wallpaper catalog")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := ensureSeedOwner(ctx, db); err != nil {
		log.Fatalf("ensure seed owner failed: %v", err)
	}

	n, err := importCatalog(ctx, db, *catalogIn)
	if err != nil {
		log.Fatalf("import catalog failed: %v", err)
	}

	log.Printf("✅ seeded %d wallpapers from %s", n, *catalogIn)
}

func ensureSeedOwner(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, 'wallhub', 'catalog@wallhub.local', '*')
		ON CONFLICT(id) DO NOTHING
	`, seedOwnerID)
	return err
}

func importCatalog(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO images (id, owner_id, url, title, tags)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  url = excluded.url,
		  title = excluded.title,
		  tags = excluded.tags
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		url := valueAt(header, row, "url")
		if id == "" || url == "" {
			continue
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			seedOwnerID,
			url,
			valueAt(header, row, "title"),
			valueAt(header, row, "tags"),
		); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
