package models

import "time"

// Favorite kinds as they appear in API responses.
const (
	KindInternal = "internal"
	KindExternal = "external"
)

// ExternalFavorite is the embedded record stored for an externally
// sourced image a user has favorited. The image itself is never
// persisted, only this snapshot.
type ExternalFavorite struct {
	UserID     string    `json:"user_id"`
	ExternalID string    `json:"external_id"`
	URL        string    `json:"url"`
	Thumb      string    `json:"thumb,omitempty"`
	Author     string    `json:"author,omitempty"`
	Title      string    `json:"title,omitempty"`
	Source     string    `json:"source"`
	DateAdded  time.Time `json:"date_added"`
}

// FavoriteItem is the unified favorites view: internal and external
// favorites mapped into one shape, tagged by kind.
type FavoriteItem struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Thumb     string     `json:"thumb,omitempty"`
	Title     string     `json:"title,omitempty"`
	Author    string     `json:"author,omitempty"`
	Kind      string     `json:"type"`
	DateAdded *time.Time `json:"date_added,omitempty"`
}
