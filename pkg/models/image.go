package models

import "time"

type Image struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"object_key,omitempty"`
	Title     string    `json:"title,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
