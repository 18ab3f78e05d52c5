package favorites

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wallhub/internal/auth"
	"wallhub/internal/sync"
	"wallhub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterRoutes mounts the favorites surface under the images group.
// The static paths must coexist with the catalog's /:id routes, hence
// the distinct segment names.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.listInternal)
	rg.GET("/all-favorites", h.listAll)
	rg.POST("/external-favorite", h.addExternal)
	rg.DELETE("/external/:external_id/favorite", h.removeExternal)
	rg.GET("/external/:external_id/is-favorite", h.isFavorite)
	rg.POST("/:id/favorite", h.addInternal)
	rg.DELETE("/:id/favorite", h.removeInternal)
}

func (h *Handler) addInternal(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	imageID := strings.TrimSpace(c.Param("id"))
	if err := h.Repo.AddInternal(c.Request.Context(), claims.UserID, imageID); err != nil {
		respondErr(c, err)
		return
	}

	h.broadcast(claims.UserID, "favorite.add", models.KindInternal, imageID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) removeInternal(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	imageID := strings.TrimSpace(c.Param("id"))
	if err := h.Repo.RemoveInternal(c.Request.Context(), claims.UserID, imageID); err != nil {
		respondErr(c, err)
		return
	}

	h.broadcast(claims.UserID, "favorite.remove", models.KindInternal, imageID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type externalFavoriteReq struct {
	ExternalID string `json:"externalId"`
	URL        string `json:"url"`
	Thumb      string `json:"thumb"`
	Author     string `json:"author"`
	Title      string `json:"title"`
}

func (h *Handler) addExternal(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req externalFavoriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	fav := models.ExternalFavorite{
		ExternalID: req.ExternalID,
		URL:        req.URL,
		Thumb:      req.Thumb,
		Author:     req.Author,
		Title:      req.Title,
	}
	if err := h.Repo.AddExternal(c.Request.Context(), claims.UserID, fav); err != nil {
		respondErr(c, err)
		return
	}

	h.broadcast(claims.UserID, "favorite.add", models.KindExternal, req.ExternalID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) removeExternal(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	externalID := strings.TrimSpace(c.Param("external_id"))
	if err := h.Repo.RemoveExternal(c.Request.Context(), claims.UserID, externalID); err != nil {
		respondErr(c, err)
		return
	}

	h.broadcast(claims.UserID, "favorite.remove", models.KindExternal, externalID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) isFavorite(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ok, err := h.Repo.IsFavorite(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("external_id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": ok})
}

func (h *Handler) listInternal(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.ListInternal(c.Request.Context(), claims.UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) listAll(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.ListAll(c.Request.Context(), claims.UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) broadcast(userID, eventType, kind, itemID string) {
	if h.Hub == nil {
		return
	}
	ev := sync.FavoriteEvent{
		Type:   eventType,
		UserID: userID,
		Kind:   kind,
		ItemID: itemID,
		At:     time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites operation failed"})
	}
}
