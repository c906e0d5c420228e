package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentals/internal/config"
	"rentals/internal/database/dbtest"
	"rentals/internal/domain"
	"rentals/internal/pkg/guard"
	"rentals/internal/pkg/push/pushtest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type TestResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type suite struct {
	t    *testing.T
	app  *App
	db   *gorm.DB
	push *pushtest.FakeDispatcher
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	db := dbtest.Open(t)
	fake := pushtest.NewFakeDispatcher()

	cfg := &config.Config{
		AppEnv:      "test",
		PlatformFee: 5,
		JWT:         config.JWTConfig{Secret: "e2e-secret", TTL: time.Hour},
		Reminder:    config.ReminderConfig{Lookahead: 48 * time.Hour, RenotifyAfter: 12 * time.Hour, MaxAttempts: 3, Workers: 2},
	}
	app := New(cfg, Deps{DB: db, Dispatcher: fake, Guard: guard.New(guard.NewMemoryStore())})
	return &suite{t: t, app: app, db: db, push: fake}
}

func (s *suite) request(method, path string, body any, token string) (int, TestResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var resp TestResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (s *suite) register(name, email, role string) string {
	s.t.Helper()
	code, resp := s.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	}, "")
	require.Equal(s.t, http.StatusCreated, code)
	return resp.Data["token"].(string)
}

func (s *suite) adminToken() string {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(s.t, err)
	admin := &domain.User{Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin}
	require.NoError(s.t, s.db.Create(admin).Error)

	code, resp := s.request(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "admin@example.com", "password": "admin123"}, "")
	require.Equal(s.t, http.StatusOK, code)
	return resp.Data["token"].(string)
}

func id(m any) int64 {
	return int64(m.(map[string]any)["id"].(float64))
}

func TestHealth(t *testing.T) {
	s := setupSuite(t)
	code, resp := s.request(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
}

func TestRentalFlow(t *testing.T) {
	s := setupSuite(t)

	admin := s.adminToken()
	lessor := s.register("Lena", "lena@example.com", "lessor")
	client := s.register("Carl", "carl@example.com", "client")

	// catalog setup
	code, resp := s.request(http.MethodPost, "/api/v1/admin/categories", gin.H{"title": "Bikes"}, admin)
	require.Equal(t, http.StatusCreated, code)
	categoryID := id(resp.Data["category"])

	code, _ = s.request(http.MethodPost, "/api/v1/listings", gin.H{"category_id": categoryID, "name": "Bike", "price": 10}, client)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.request(http.MethodPost, "/api/v1/listings", gin.H{
		"category_id": categoryID, "name": "City bike", "price": 10,
		"latitude": 43.25, "longitude": 76.9,
	}, lessor)
	require.Equal(t, http.StatusCreated, code)
	listingID := id(resp.Data["listing"])

	code, resp = s.request(http.MethodGet, "/api/v1/listings?lat=43.238&lng=76.889", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Data["count"])

	// reservations
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	dayAfter := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	code, resp = s.request(http.MethodPost, "/api/v1/reservations", gin.H{
		"listing_id": listingID, "start_date": tomorrow, "end_date": dayAfter,
	}, client)
	require.Equal(t, http.StatusCreated, code)
	res := resp.Data["reservation"].(map[string]any)
	assert.InDelta(t, 15.0, res["price"].(float64), 0.001)

	code, resp = s.request(http.MethodPost, "/api/v1/reservations", gin.H{
		"listing_id": listingID, "start_date": dayAfter, "end_date": dayAfter,
	}, client)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RESERVATION_CONFLICT", resp.Error.Code)

	code, resp = s.request(http.MethodGet, fmt.Sprintf("/api/v1/listings/%d/reserved-dates", listingID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data["reserved_dates"], 1)

	code, resp = s.request(http.MethodGet, fmt.Sprintf("/api/v1/admin/listings/%d/conflicts", listingID), nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data["conflicts"])

	// reminders
	code, _ = s.request(http.MethodPut, "/api/v1/users/me/device-token", gin.H{"device_token": "client-device"}, client)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.request(http.MethodPost, "/api/v1/admin/reminders/run", nil, lessor)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.request(http.MethodPost, "/api/v1/admin/reminders/run", nil, admin)
	require.Equal(t, http.StatusOK, code)
	report := resp.Data["report"].(map[string]any)
	assert.EqualValues(t, 1, report["sent"])

	sent := s.push.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "client-device", sent[0].Token)
	assert.Equal(t, "Rental Reminder", sent[0].Title)

	// a second run within the renotify window sends nothing
	code, resp = s.request(http.MethodPost, "/api/v1/admin/reminders/run", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, resp.Data["report"].(map[string]any)["sent"])
	assert.Equal(t, 1, s.push.Calls())

	// dashboards
	code, resp = s.request(http.MethodGet, "/api/v1/lessor/stats", nil, lessor)
	require.Equal(t, http.StatusOK, code)
	st := resp.Data["stats"].(map[string]any)
	assert.EqualValues(t, 1, st["listings"])
	assert.EqualValues(t, 1, st["reservations"])
	assert.InDelta(t, 15.0, st["revenue"].(float64), 0.001)
	assert.InDelta(t, 15.0, st["average_revenue_per_listing"].(float64), 0.001)
	assert.Len(t, st["popular_items"], 1)
	assert.Len(t, st["top_clients"], 1)
	assert.Contains(t, st, "occupancy")

	// reviews
	code, _ = s.request(http.MethodPost, "/api/v1/reservations", gin.H{
		"listing_id": listingID, "start_date": tomorrow, "end_date": tomorrow,
	}, lessor)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.request(http.MethodPost, "/api/v1/reviews", gin.H{"listing_id": listingID, "comment": "Nice bike"}, lessor)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.request(http.MethodPost, "/api/v1/reviews", gin.H{"listing_id": listingID, "comment": "Nice bike"}, client)
	require.Equal(t, http.StatusCreated, code)

	code, resp = s.request(http.MethodGet, fmt.Sprintf("/api/v1/listings/%d/reviews", listingID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Data["total"])

	code, resp = s.request(http.MethodGet, "/api/v1/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, code)
	st = resp.Data["stats"].(map[string]any)
	assert.EqualValues(t, 1, st["total_clients"])
	assert.EqualValues(t, 1, st["total_lessors"])

	code, resp = s.request(http.MethodGet, "/api/v1/admin/users?role=client", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Data["total"])

	code, _ = s.request(http.MethodGet, "/api/v1/admin/users", nil, lessor)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.request(http.MethodGet, "/api/v1/users/me", nil, client)
	require.Equal(t, http.StatusOK, code)
	me := resp.Data["user"].(map[string]any)
	assert.Equal(t, "carl@example.com", me["email"])
	assert.Equal(t, true, me["push_enabled"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupSuite(t)

	for _, path := range []string{"/api/v1/reservations", "/api/v1/users/me", "/api/v1/admin/stats", "/api/v1/lessor/stats"} {
		code, resp := s.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
		require.NotNil(t, resp.Error, path)
		assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code, path)
	}
}
