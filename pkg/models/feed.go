package models

// KindLocal tags catalog entries in the feed; external search results
// reuse KindExternal.
const KindLocal = "local"

// FeedItem is a browsable image in the combined feed. Local catalog
// entries carry kind "local", search results from the external
// provider carry kind "external". Never persisted.
type FeedItem struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Thumb  string `json:"thumb"`
	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
	Link   string `json:"link,omitempty"`
	Kind   string `json:"type"`
}
