package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCreateIntentWithoutStripeConfigured(t *testing.T) {
	env := newEnv(t)
	auth := env.register(t, "payer@example.com")
	product := env.seedProduct(t, "Amber Candle", 300, 10)

	order := placeOrder(t, env, auth.Token, fiber.Map{
		"product":  product.ID.String(),
		"quantity": 1,
	})

	resp, _ := env.request(t, http.MethodPost, "/api/payments/intent", auth.Token, fiber.Map{
		"order": order.ID.String(),
	})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCreateIntentGuards(t *testing.T) {
	env := newEnv(t)
	auth := env.register(t, "payer2@example.com")
	other := env.register(t, "payer3@example.com")
	product := env.seedProduct(t, "Velvet Pouch", 400, 10)

	order := placeOrder(t, env, auth.Token, fiber.Map{
		"product":  product.ID.String(),
		"quantity": 1,
	})

	// Someone else's order is invisible.
	resp, _ := env.request(t, http.MethodPost, "/api/payments/intent", other.Token, fiber.Map{
		"order": order.ID.String(),
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/payments/intent", auth.Token, fiber.Map{
		"order": "not-a-uuid",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookWithoutStripeConfigured(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"id":   "evt_1",
		"type": "payment_intent.succeeded",
	})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
