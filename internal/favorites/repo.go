package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wallhub/pkg/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidID    = errors.New("invalid id")
	ErrValidation   = errors.New("missing required fields")
)

// Repo holds both favorite collections for a user: internal image
// references (user_favorites) and embedded external records
// (external_favorites). The two id spaces are disjoint, so no
// cross-kind dedup is ever needed.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) userExists(ctx context.Context, userID string) error {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)
	`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// AddInternal adds an image reference to the user's favorites. Adding
// an id that is already present is a no-op. The image is not required
// to exist: resolution happens at read time.
func (r *Repo) AddInternal(ctx context.Context, userID, imageID string) error {
	if uuid.Validate(imageID) != nil {
		return ErrInvalidID
	}
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, image_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, image_id) DO NOTHING
	`, userID, imageID)
	if err != nil {
		return fmt.Errorf("add internal favorite: %w", err)
	}
	return nil
}

// RemoveInternal removes an image reference. Removing an absent id is
// a no-op, not an error.
func (r *Repo) RemoveInternal(ctx context.Context, userID, imageID string) error {
	if uuid.Validate(imageID) != nil {
		return ErrInvalidID
	}
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_favorites
		WHERE user_id = ? AND image_id = ?
	`, userID, imageID)
	if err != nil {
		return fmt.Errorf("remove internal favorite: %w", err)
	}
	return nil
}

// AddExternal upserts an embedded external-favorite record keyed by
// external_id. A duplicate add overwrites the descriptive fields and
// keeps the original date_added, so insertion order is stable.
func (r *Repo) AddExternal(ctx context.Context, userID string, fav models.ExternalFavorite) error {
	fav.ExternalID = strings.TrimSpace(fav.ExternalID)
	if fav.ExternalID == "" || strings.TrimSpace(fav.URL) == "" {
		return ErrValidation
	}
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}

	if fav.Title == "" && fav.Author != "" {
		fav.Title = "Image by " + fav.Author
	}
	if fav.Source == "" {
		fav.Source = "unsplash"
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO external_favorites (user_id, external_id, url, thumb, author, title, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, external_id) DO UPDATE SET
			url = excluded.url,
			thumb = excluded.thumb,
			author = excluded.author,
			title = excluded.title,
			source = excluded.source
	`, userID, fav.ExternalID, fav.URL, fav.Thumb, fav.Author, fav.Title, fav.Source)
	if err != nil {
		return fmt.Errorf("add external favorite: %w", err)
	}
	return nil
}

// RemoveExternal removes the record matching externalID; idempotent.
func (r *Repo) RemoveExternal(ctx context.Context, userID, externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return ErrValidation
	}
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM external_favorites
		WHERE user_id = ? AND external_id = ?
	`, userID, externalID)
	if err != nil {
		return fmt.Errorf("remove external favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether candidateID is favorited by the user,
// checking both collections so callers need not say which kind the id
// is. An absent favorite is false, never an error.
func (r *Repo) IsFavorite(ctx context.Context, userID, candidateID string) (bool, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return false, err
	}

	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_favorites WHERE user_id = ? AND image_id = ?)
		    OR EXISTS(SELECT 1 FROM external_favorites WHERE user_id = ? AND external_id = ?)
	`, userID, candidateID, userID, candidateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// ListInternal resolves the user's internal favorite references against
// the image catalog in one query. References whose image has been
// deleted are dropped silently.
func (r *Repo) ListInternal(ctx context.Context, userID string) ([]models.Image, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.owner_id, i.url, i.object_key, i.title, i.tags, i.created_at
		FROM user_favorites f
		JOIN images i ON i.id = f.image_id
		WHERE f.user_id = ?
		ORDER BY i.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list internal favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.Image, 0, 8)
	for rows.Next() {
		var (
			img       models.Image
			objectKey sql.NullString
			title     sql.NullString
			tags      sql.NullString
		)
		if err := rows.Scan(&img.ID, &img.OwnerID, &img.URL, &objectKey, &title, &tags, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan internal favorite: %w", err)
		}
		img.ObjectKey = objectKey.String
		img.Title = title.String
		if s := strings.TrimSpace(tags.String); s != "" {
			for _, t := range strings.Split(s, ",") {
				if t = strings.TrimSpace(t); t != "" {
					img.Tags = append(img.Tags, t)
				}
			}
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) listExternal(ctx context.Context, userID string) ([]models.ExternalFavorite, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT external_id, url, thumb, author, title, source, date_added
		FROM external_favorites
		WHERE user_id = ?
		ORDER BY date_added ASC, rowid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list external favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.ExternalFavorite, 0, 8)
	for rows.Next() {
		var (
			fav   models.ExternalFavorite
			thumb sql.NullString
			auth  sql.NullString
			title sql.NullString
		)
		if err := rows.Scan(&fav.ExternalID, &fav.URL, &thumb, &auth, &title, &fav.Source, &fav.DateAdded); err != nil {
			return nil, fmt.Errorf("scan external favorite: %w", err)
		}
		fav.UserID = userID
		fav.Thumb = thumb.String
		fav.Author = auth.String
		fav.Title = title.String
		out = append(out, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListAll merges both collections into the unified favorites view:
// internal entries first (newest image first), then external entries
// in insertion order.
func (r *Repo) ListAll(ctx context.Context, userID string) ([]models.FavoriteItem, error) {
	internal, err := r.ListInternal(ctx, userID)
	if err != nil {
		return nil, err
	}
	external, err := r.listExternal(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.FavoriteItem, 0, len(internal)+len(external))
	for _, img := range internal {
		created := img.CreatedAt
		items = append(items, models.FavoriteItem{
			ID:        img.ID,
			URL:       img.URL,
			Thumb:     img.URL,
			Title:     img.Title,
			Kind:      models.KindInternal,
			DateAdded: &created,
		})
	}
	for _, fav := range external {
		added := fav.DateAdded
		items = append(items, models.FavoriteItem{
			ID:        fav.ExternalID,
			URL:       fav.URL,
			Thumb:     fav.Thumb,
			Title:     fav.Title,
			Author:    fav.Author,
			Kind:      models.KindExternal,
			DateAdded: &added,
		})
	}
	return items, nil
}
