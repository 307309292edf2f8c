package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/example/kolzo/internal/models"
)

func TestUpdateProfile(t *testing.T) {
	env := newEnv(t)
	auth := env.register(t, "profile@example.com")

	resp, _ := env.request(t, http.MethodPut, "/api/profile", auth.Token, fiber.Map{
		"first_name": "Aisha",
		"phone":      "9123456789",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", auth.User.ID).Error)
	require.Equal(t, "Aisha", user.FirstName)
	require.Equal(t, "9123456789", user.Phone)
	// Untouched fields stay put.
	require.Equal(t, "Verma", user.LastName)

	resp, _ = env.request(t, http.MethodPut, "/api/profile", auth.Token, fiber.Map{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddressBookDefaultHandling(t *testing.T) {
	env := newEnv(t)
	auth := env.register(t, "addresses@example.com")

	newAddress := func(label string, isDefault bool) fiber.Map {
		return fiber.Map{
			"label":      label,
			"name":       "Asha Verma",
			"phone":      "9876543210",
			"address":    "14 Marine Drive",
			"city":       "Mumbai",
			"state":      "Maharashtra",
			"pincode":    "400020",
			"is_default": isDefault,
		}
	}

	resp, body := env.request(t, http.MethodPost, "/api/profile/addresses", auth.Token, newAddress("Home", true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var home models.UserAddress
	require.NoError(t, json.Unmarshal(body.Data, &home))

	resp, body = env.request(t, http.MethodPost, "/api/profile/addresses", auth.Token, newAddress("Office", true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var office models.UserAddress
	require.NoError(t, json.Unmarshal(body.Data, &office))

	// Only one default at a time; the newest wins and lists first.
	resp, body = env.request(t, http.MethodGet, "/api/profile/addresses", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var addresses []models.UserAddress
	require.NoError(t, json.Unmarshal(body.Data, &addresses))
	require.Len(t, addresses, 2)
	require.Equal(t, office.ID, addresses[0].ID)
	require.True(t, addresses[0].IsDefault)
	require.False(t, addresses[1].IsDefault)

	// Addresses are scoped to their owner.
	other := env.register(t, "lurker@example.com")
	resp, _ = env.request(t, http.MethodPut, "/api/profile/addresses/"+home.ID.String(), other.Token, newAddress("Hijack", false))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, http.MethodDelete, "/api/profile/addresses/"+home.ID.String(), auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/profile/addresses", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &addresses))
	require.Len(t, addresses, 1)

	resp, _ = env.request(t, http.MethodPost, "/api/profile/addresses", auth.Token, fiber.Map{"label": "Incomplete"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
