package images

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wallhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Search string // keyword search in title/tags
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, img models.Image) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO images (id, owner_id, url, object_key, title, tags)
		VALUES (?, ?, ?, ?, ?, ?)
	`, img.ID, img.OwnerID, img.URL, img.ObjectKey, img.Title, strings.Join(img.Tags, ","))
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Image, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, owner_id, url, object_key, title, tags, created_at
		FROM images
		WHERE id = ?
	`, id)

	img, err := scanImage(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return total, nil
}

// List returns catalog images, most recently created first.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Image, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	out := make([]models.Image, 0, q.Limit)
	for rows.Next() {
		img, err := scanImage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		out = append(out, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM images
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanImage(scan func(dest ...any) error) (*models.Image, error) {
	var (
		img       models.Image
		objectKey sql.NullString
		title     sql.NullString
		tags      sql.NullString
		created   time.Time
	)
	if err := scan(&img.ID, &img.OwnerID, &img.URL, &objectKey, &title, &tags, &created); err != nil {
		return nil, err
	}
	img.ObjectKey = objectKey.String
	img.Title = title.String
	img.CreatedAt = created
	if s := strings.TrimSpace(tags.String); s != "" {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				img.Tags = append(img.Tags, t)
			}
		}
	}
	return &img, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT id, owner_id, url, object_key, title, tags, created_at
		FROM images
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM images`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Search) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(tags) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Search)) + "%"
		args = append(args, kw, kw)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY created_at DESC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
