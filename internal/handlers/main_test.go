package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/cache"
	"github.com/example/kolzo/internal/config"
	"github.com/example/kolzo/internal/database"
	"github.com/example/kolzo/internal/handlers"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/routes"
	"github.com/example/kolzo/internal/search"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	idx *search.Index
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:          "development",
		JWTSecret:       "test-secret",
		TokenExpires:    time.Hour,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}

	idx := search.NewIndex()
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(cfg)})
	routes.Register(app, db, cfg, cache.Disabled(), idx)

	return &testEnv{app: app, db: db, idx: idx}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

type authPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Role  string    `json:"role"`
	} `json:"user"`
}

func (e *testEnv) register(t *testing.T, email string) authPayload {
	t.Helper()

	resp, env := e.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"first_name": "Asha",
		"last_name":  "Verma",
		"email":      email,
		"password":   "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var auth authPayload
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth
}

// registerAdmin creates an account, promotes it, and logs in again so the
// token carries the admin role.
func (e *testEnv) registerAdmin(t *testing.T, email string) authPayload {
	t.Helper()

	auth := e.register(t, email)
	require.NoError(t, e.db.Model(&models.User{}).
		Where("id = ?", auth.User.ID).
		Update("role", models.RoleAdmin).Error)

	resp, env := e.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var admin authPayload
	require.NoError(t, json.Unmarshal(env.Data, &admin))
	require.Equal(t, models.RoleAdmin, admin.User.Role)
	return admin
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Slug:          strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Name:          name,
		Price:         price,
		Category:      "apparel",
		Brand:         "Kolzo",
		SKU:           "SKU-" + uuid.NewString()[:8],
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, e.db.Create(&product).Error)
	e.idx.Add(product)
	return product
}

func completeAddress() fiber.Map {
	return fiber.Map{
		"name":    "Asha Verma",
		"phone":   "9876543210",
		"address": "14 Marine Drive",
		"city":    "Mumbai",
		"state":   "Maharashtra",
		"pincode": "400020",
	}
}
