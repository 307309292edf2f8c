package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/kolzo/internal/models"
)

type productPayload struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	ViewCount     int64     `json:"view_count"`
	Variants      []struct {
		SKU  string `json:"sku"`
		Size string `json:"size"`
	} `json:"variants"`
}

func TestAdminProductCRUD(t *testing.T) {
	env := newEnv(t)
	customer := env.register(t, "shopper@example.com")
	admin := env.registerAdmin(t, "merch@example.com")

	payload := fiber.Map{
		"slug":           "noir-parfum",
		"name":           "Noir Parfum",
		"description":    "Smoky oud over amber.",
		"price":          4200.0,
		"category":       "fragrance",
		"brand":          "Kolzo",
		"sku":            "KLZ-NP-01",
		"stock_quantity": 15,
		"variants": []fiber.Map{
			{"sku": "KLZ-NP-01-50", "size": "50ml", "price": 4200.0, "stock_quantity": 10},
			{"sku": "KLZ-NP-01-100", "size": "100ml", "price": 6800.0, "stock_quantity": 5},
		},
	}

	// Customers cannot create products.
	resp, _ := env.request(t, http.MethodPost, "/api/admin/products", customer.Token, payload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.request(t, http.MethodPost, "/api/admin/products", admin.Token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created productPayload
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Len(t, created.Variants, 2)

	// Publicly visible by id and slug.
	resp, body = env.request(t, http.MethodGet, "/api/products/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/products/slug/noir-parfum", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bySlug productPayload
	require.NoError(t, json.Unmarshal(body.Data, &bySlug))
	require.Equal(t, created.ID, bySlug.ID)

	// Two detail reads counted.
	var stored models.Product
	require.NoError(t, env.db.First(&stored, "id = ?", created.ID).Error)
	require.EqualValues(t, 2, stored.ViewCount)

	// Update preserves counters and replaces variants.
	payload["price"] = 3900.0
	payload["variants"] = []fiber.Map{
		{"sku": "KLZ-NP-01-50", "size": "50ml", "price": 3900.0, "stock_quantity": 10},
	}
	resp, body = env.request(t, http.MethodPut, "/api/admin/products/"+created.ID.String(), admin.Token, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated productPayload
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.Equal(t, 3900.0, updated.Price)
	require.Len(t, updated.Variants, 1)

	require.NoError(t, env.db.First(&stored, "id = ?", created.ID).Error)
	require.EqualValues(t, 2, stored.ViewCount)

	// Delete removes it from the catalog and the search index.
	resp, _ = env.request(t, http.MethodDelete, "/api/admin/products/"+created.ID.String(), admin.Token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/api/products/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, env.idx.Lookup("noir"))
}

func TestListProductsFilters(t *testing.T) {
	env := newEnv(t)
	cheap := env.seedProduct(t, "Rose Soap", 80, 50)
	env.seedProduct(t, "Oud Attar", 3000, 5)

	hidden := env.seedProduct(t, "Retired Kurta", 700, 10)
	require.NoError(t, env.db.Model(&models.Product{}).
		Where("id = ?", hidden.ID).
		Update("is_active", false).Error)

	resp, body := env.request(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []productPayload
	require.NoError(t, json.Unmarshal(body.Data, &products))
	require.Len(t, products, 2)

	resp, body = env.request(t, http.MethodGet, "/api/products?max_price=100", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &products))
	require.Len(t, products, 1)
	require.Equal(t, cheap.ID, products[0].ID)
}

func TestFeaturedShelf(t *testing.T) {
	env := newEnv(t)
	star := env.seedProduct(t, "Zafran Attar", 5200, 3)
	require.NoError(t, env.db.Model(&models.Product{}).
		Where("id = ?", star.ID).
		Update("is_featured", true).Error)
	env.seedProduct(t, "Plain Tote", 900, 30)

	resp, body := env.request(t, http.MethodGet, "/api/products/featured", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []productPayload
	require.NoError(t, json.Unmarshal(body.Data, &products))
	require.Len(t, products, 1)
	require.Equal(t, star.ID, products[0].ID)
}
