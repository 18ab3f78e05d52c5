package images

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallhub/internal/auth"
	"wallhub/pkg/models"
)

type stubStore struct {
	uploaded map[string]int64
	removed  []string
	err      error
}

func newStubStore() *stubStore {
	return &stubStore{uploaded: make(map[string]int64)}
}

func (s *stubStore) Upload(_ context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.Copy(io.Discard, r)
	s.uploaded[key] = size
	return "https://cdn.example.com/" + key, nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

func imagesRouter(t *testing.T, repo *Repo, store ObjectStore, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h := NewHandler(repo, store)
	h.RegisterRoutes(router.Group("/api/images"))

	protected := router.Group("/api/images")
	protected.Use(func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: userID})
	})
	h.RegisterProtectedRoutes(protected)
	return router
}

func multipartUpload(t *testing.T, filename, contentType, title string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadCreatesCatalogRow(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	store := newStubStore()
	router := imagesRouter(t, repo, store, testOwnerID)

	body, contentType := multipartUpload(t, "skull.jpg", "image/jpeg", "Skull", []byte("fake-jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var saved models.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, testOwnerID, saved.OwnerID)
	assert.Equal(t, "Skull", saved.Title)
	assert.Contains(t, saved.URL, "https://cdn.example.com/wallpapers/")
	assert.Len(t, store.uploaded, 1)
}

func TestUploadRejectsNonImage(t *testing.T) {
	db := testDB(t)
	router := imagesRouter(t, NewRepo(db), newStubStore(), testOwnerID)

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", "", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only image files")
}

func TestUploadWithoutStorageIs503(t *testing.T) {
	db := testDB(t)
	router := imagesRouter(t, NewRepo(db), nil, testOwnerID)

	body, contentType := multipartUpload(t, "skull.jpg", "image/jpeg", "", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRemoveEnforcesOwnership(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	store := newStubStore()

	id := "22222222-2222-2222-2222-222222222222"
	require.NoError(t, repo.Create(context.Background(), models.Image{
		ID: id, OwnerID: testOwnerID, URL: "https://cdn.example.com/wallpapers/x.jpg",
		ObjectKey: "wallpapers/x.jpg",
	}))

	// someone else's token
	stranger := imagesRouter(t, repo, store, "99999999-9999-9999-9999-999999999999")
	req := httptest.NewRequest(http.MethodDelete, "/api/images/"+id, nil)
	w := httptest.NewRecorder()
	stranger.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// the owner succeeds and the stored object goes too
	owner := imagesRouter(t, repo, store, testOwnerID)
	req = httptest.NewRequest(http.MethodDelete, "/api/images/"+id, nil)
	w = httptest.NewRecorder()
	owner.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"wallpapers/x.jpg"}, store.removed)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListPaginatesAndCounts(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	router := imagesRouter(t, repo, newStubStore(), testOwnerID)

	for _, id := range []string{
		"44444444-4444-4444-4444-444444444444",
		"55555555-5555-5555-5555-555555555555",
		"66666666-6666-6666-6666-666666666666",
	} {
		require.NoError(t, repo.Create(context.Background(), models.Image{
			ID: id, OwnerID: testOwnerID, URL: "/static-images/" + id + ".jpg",
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/images?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int            `json:"total"`
		Items []models.Image `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Items, 2)
}
