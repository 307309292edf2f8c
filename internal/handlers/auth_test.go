package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newEnv(t)

	auth := env.register(t, "asha@example.com")
	require.Equal(t, "asha@example.com", auth.User.Email)
	require.Equal(t, "user", auth.User.Role)

	// Same email again
	resp, _ := env.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"first_name": "Asha",
		"email":      "asha@example.com",
		"password":   "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "Asha@Example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login authPayload
	require.NoError(t, json.Unmarshal(body.Data, &login))

	resp, body = env.request(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &me))
	require.Equal(t, "asha@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"first_name": "Asha",
		"email":      "short@example.com",
		"password":   "123",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"password": "secret123",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/api/orders", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newEnv(t)
	env.register(t, "reset@example.com")

	resp, body := env.request(t, http.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": "reset@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var issued struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &issued))
	require.NotEmpty(t, issued.Token)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/reset-password", "", fiber.Map{
		"token":        issued.Token,
		"new_password": "newsecret456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Token is single use.
	resp, _ = env.request(t, http.MethodPost, "/api/auth/reset-password", "", fiber.Map{
		"token":        issued.Token,
		"new_password": "anotherone789",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "reset@example.com",
		"password": "newsecret456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "reset@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown accounts get the same response as known ones.
	resp, _ = env.request(t, http.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": "ghost@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
