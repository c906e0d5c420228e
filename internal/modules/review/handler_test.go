package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentals/internal/middleware"
	"rentals/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	*env
	router *gin.Engine
	tokens *jwt.Service
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	e := setup(t)
	tokens := jwt.New("test-secret", time.Hour)
	h := NewHandler(e.svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	h.RegisterRoutes(api.Group("", middleware.JWTAuth(tokens)))

	return &apiEnv{env: e, router: r, tokens: tokens}
}

func (a *apiEnv) do(t *testing.T, method, path string, body any, userID int64, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		tok, err := a.tokens.GenerateToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Review struct {
			ID      int64  `json:"id"`
			Comment string `json:"comment"`
		} `json:"review"`
		Reviews []map[string]any `json:"reviews"`
		Total   int64            `json:"total"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHandler_ReviewFlow(t *testing.T) {
	a := setupAPI(t)
	body := gin.H{"listing_id": a.listing.ID, "comment": "Solid tent"}

	w := a.do(t, http.MethodPost, "/api/v1/reviews", body, 0, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/reviews", body, a.stranger.ID, "client")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "REVIEW_NOT_ALLOWED", decode(t, w).Error.Code)

	w = a.do(t, http.MethodPost, "/api/v1/reviews", body, a.renter.ID, "client")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reviewID := decode(t, w).Data.Review.ID

	w = a.do(t, http.MethodPost, "/api/v1/reviews", body, a.renter.ID, "client")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d/reviews", a.listing.ID), nil, 0, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, int64(1), resp.Data.Total)
	assert.Len(t, resp.Data.Reviews, 1)

	path := fmt.Sprintf("/api/v1/reviews/%d", reviewID)
	w = a.do(t, http.MethodPatch, path, gin.H{"comment": "Solid tent, heavy"}, a.stranger.ID, "client")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPatch, path, gin.H{"comment": "Solid tent, heavy"}, a.renter.ID, "client")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Solid tent, heavy", decode(t, w).Data.Review.Comment)

	w = a.do(t, http.MethodDelete, path, nil, a.stranger.ID, "admin")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodDelete, path, nil, a.renter.ID, "client")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListUnknownListing(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodGet, "/api/v1/listings/9999/reviews", nil, 0, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LISTING_NOT_FOUND", decode(t, w).Error.Code)

	w = a.do(t, http.MethodGet, "/api/v1/listings/abc/reviews", nil, 0, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
