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

func postReview(t *testing.T, env *testEnv, token string, productID uuid.UUID, rating int) models.Review {
	t.Helper()

	resp, body := env.request(t, http.MethodPost, "/api/products/"+productID.String()+"/reviews", token, fiber.Map{
		"rating":  rating,
		"title":   "Lovely",
		"comment": "Wears beautifully through the day.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var review models.Review
	require.NoError(t, json.Unmarshal(body.Data, &review))
	return review
}

func TestReviewModerationUpdatesRating(t *testing.T) {
	env := newEnv(t)
	first := env.register(t, "reviewer1@example.com")
	second := env.register(t, "reviewer2@example.com")
	admin := env.registerAdmin(t, "moderator@example.com")
	product := env.seedProduct(t, "Noir Perfume", 100, 10)

	review1 := postReview(t, env, first.Token, product.ID, 5)
	review2 := postReview(t, env, second.Token, product.ID, 2)
	require.Equal(t, models.ReviewStatusPending, review1.Status)

	// Pending reviews are invisible publicly and carry no rating weight.
	resp, body := env.request(t, http.MethodGet, "/api/products/"+product.ID.String()+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(body.Data, &listed))
	require.Empty(t, listed)

	// Approve both; the aggregate becomes (5+2)/2 = 3.5.
	for _, id := range []uuid.UUID{review1.ID, review2.ID} {
		resp, _ = env.request(t, http.MethodPut, "/api/admin/reviews/"+id.String(), admin.Token, fiber.Map{
			"status": models.ReviewStatusApproved,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var rated models.Product
	require.NoError(t, env.db.First(&rated, "id = ?", product.ID).Error)
	require.Equal(t, 3.5, rated.RatingAverage)
	require.EqualValues(t, 2, rated.RatingCount)

	resp, body = env.request(t, http.MethodGet, "/api/products/"+product.ID.String()+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &listed))
	require.Len(t, listed, 2)

	// Rejecting one recomputes the aggregate down to the survivor.
	resp, _ = env.request(t, http.MethodPut, "/api/admin/reviews/"+review2.ID.String(), admin.Token, fiber.Map{
		"status": models.ReviewStatusRejected,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, env.db.First(&rated, "id = ?", product.ID).Error)
	require.Equal(t, 5.0, rated.RatingAverage)
	require.EqualValues(t, 1, rated.RatingCount)
}

func TestReviewOnePerUserPerProduct(t *testing.T) {
	env := newEnv(t)
	auth := env.register(t, "once@example.com")
	product := env.seedProduct(t, "Rose Lip Balm", 50, 10)

	postReview(t, env, auth.Token, product.ID, 4)

	resp, _ := env.request(t, http.MethodPost, "/api/products/"+product.ID.String()+"/reviews", auth.Token, fiber.Map{
		"rating": 5,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestReviewOwnershipAndValidation(t *testing.T) {
	env := newEnv(t)
	author := env.register(t, "author@example.com")
	intruder := env.register(t, "intruder@example.com")
	product := env.seedProduct(t, "Kohl Pencil", 150, 10)

	review := postReview(t, env, author.Token, product.ID, 4)

	resp, _ := env.request(t, http.MethodPut, "/api/reviews/"+review.ID.String(), intruder.Token, fiber.Map{
		"rating": 1,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, http.MethodDelete, "/api/reviews/"+review.ID.String(), intruder.Token, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/products/"+product.ID.String()+"/reviews", intruder.Token, fiber.Map{
		"rating": 9,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/products/"+uuid.NewString()+"/reviews", intruder.Token, fiber.Map{
		"rating": 4,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The author can edit their own; edits return to moderation.
	resp, body := env.request(t, http.MethodPut, "/api/reviews/"+review.ID.String(), author.Token, fiber.Map{
		"rating":  3,
		"comment": "Smudges after a few hours.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Review
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.Equal(t, 3, updated.Rating)
	require.Equal(t, models.ReviewStatusPending, updated.Status)

	resp, _ = env.request(t, http.MethodDelete, "/api/reviews/"+review.ID.String(), author.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
