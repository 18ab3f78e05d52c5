package external

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wallhub/internal/images"
	"wallhub/pkg/models"
)

// catalogLimit caps how much of the local catalog one feed response carries.
const catalogLimit = 100

// Handler serves the browsing feed: the local catalog when no query is
// given, provider search results when one is. Each call is independent;
// deduplicating across accumulated pages is the caller's concern.
type Handler struct {
	Images   *images.Repo
	Provider Provider
	BaseURL  string
}

func NewHandler(imagesRepo *images.Repo, provider Provider, baseURL string) *Handler {
	return &Handler{Images: imagesRepo, Provider: provider, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.feed)
}

func (h *Handler) feed(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(c.Query("per_page"), 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 20
	}

	if query == "" {
		local, err := h.localItems(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": local})
		return
	}

	items, err := h.Provider.Search(c.Request.Context(), query, page, perPage)
	if err != nil {
		// provider trouble never fails the feed: fall back to the catalog
		log.Printf("[feed] provider %s error, falling back to local catalog: %v", h.Provider.Name(), err)
		local, lerr := h.localItems(c.Request.Context())
		if lerr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": local})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// localItems maps the catalog into feed entries, rewriting relative
// storage paths against the configured public base URL.
func (h *Handler) localItems(ctx context.Context) ([]models.FeedItem, error) {
	catalog, err := h.Images.List(ctx, images.ListQuery{Limit: catalogLimit})
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(catalog))
	for _, img := range catalog {
		u := img.URL
		if strings.HasPrefix(u, "/") {
			u = h.BaseURL + u
		}
		items = append(items, models.FeedItem{
			ID:    img.ID,
			URL:   u,
			Thumb: u,
			Title: img.Title,
			Kind:  models.KindLocal,
		})
	}
	return items, nil
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
