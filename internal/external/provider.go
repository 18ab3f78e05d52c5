package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"wallhub/pkg/models"
	"wallhub/pkg/utils"
)

// Provider is implemented by each external image-search source. A
// provider fetches its own wire format and maps it into FeedItems.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, page, perPage int) ([]models.FeedItem, error)
}

// UnsplashClient searches the Unsplash photo API.
type UnsplashClient struct {
	Client    *http.Client
	BaseURL   string
	AccessKey string
}

func NewUnsplashClient(cfg utils.UnsplashConfig) *UnsplashClient {
	return &UnsplashClient{
		Client:    &http.Client{Timeout: cfg.Timeout},
		BaseURL:   cfg.BaseURL,
		AccessKey: cfg.AccessKey,
	}
}

func (u *UnsplashClient) Name() string { return "unsplash" }

type unsplashResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
		AltDescription string `json:"alt_description"`
	} `json:"results"`
}

func (u *UnsplashClient) Search(ctx context.Context, query string, page, perPage int) ([]models.FeedItem, error) {
	su, err := url.Parse(u.BaseURL + "/search/photos")
	if err != nil {
		return nil, fmt.Errorf("unsplash: base url: %w", err)
	}
	q := su.Query()
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	su.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, su.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unsplash: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.AccessKey)

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash: status %d: %s", resp.StatusCode, string(body))
	}

	var ur unsplashResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("unsplash: decode: %w", err)
	}

	items := make([]models.FeedItem, 0, len(ur.Results))
	for _, x := range ur.Results {
		if x.ID == "" {
			continue
		}
		thumb := x.URLs.Small
		if thumb == "" {
			thumb = x.URLs.Regular
		}
		items = append(items, models.FeedItem{
			ID:     x.ID,
			URL:    x.URLs.Regular,
			Thumb:  thumb,
			Author: x.User.Name,
			Title:  x.AltDescription,
			Link:   x.Links.HTML,
			Kind:   models.KindExternal,
		})
	}
	return items, nil
}
