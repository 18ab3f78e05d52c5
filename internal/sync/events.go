package sync

import "time"

type FavoriteEvent struct {
	Type   string    `json:"type"` // "favorite.add" or "favorite.remove"
	UserID string    `json:"user_id"`
	Kind   string    `json:"kind"` // "internal" or "external"
	ItemID string    `json:"item_id"`
	At     time.Time `json:"at"`
}
