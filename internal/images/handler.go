package images

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wallhub/internal/auth"
	"wallhub/pkg/models"
)

const maxUploadBytes = 5 << 20 // 5MB, matches the frontend cap

// ObjectStore is the slice of object storage the image handlers need.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type Handler struct {
	Repo  *Repo
	Store ObjectStore
}

func NewHandler(repo *Repo, store ObjectStore) *Handler {
	return &Handler{Repo: repo, Store: store}
}

// RegisterRoutes registers the public catalog listing.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)
}

// RegisterProtectedRoutes registers upload and delete, which require auth.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.upload)
	rg.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Search: c.Query("search"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	img, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *Handler) upload(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage unavailable"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
		return
	}
	defer f.Close()

	id := uuid.NewString()
	key := "wallpapers/" + id + strings.ToLower(filepath.Ext(fh.Filename))

	url, err := h.Store.Upload(c.Request.Context(), key, f, fh.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	var tags []string
	if s := strings.TrimSpace(c.PostForm("tags")); s != "" {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	img := models.Image{
		ID:        id,
		OwnerID:   claims.UserID,
		URL:       url,
		ObjectKey: key,
		Title:     strings.TrimSpace(c.PostForm("title")),
		Tags:      tags,
	}

	if err := h.Repo.Create(c.Request.Context(), img); err != nil {
		// catalog row failed: don't leave the object orphaned
		_ = h.Store.Remove(c.Request.Context(), key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	img, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if img.OwnerID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not yours"})
		return
	}

	if img.ObjectKey != "" && h.Store != nil {
		if err := h.Store.Remove(c.Request.Context(), img.ObjectKey); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage delete failed"})
			return
		}
	}

	if _, err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	// Favorite references held by other users are left in place; the
	// favorites listing filters refs that no longer resolve.
	c.JSON(http.StatusOK, gin.H{"ok": true})
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
