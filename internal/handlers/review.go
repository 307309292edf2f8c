package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/cache"
	"github.com/example/kolzo/internal/middleware"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/utils"
)

// ReviewHandler manages product reviews and moderation.
type ReviewHandler struct {
	db    *gorm.DB
	store *cache.Cache
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB, store *cache.Cache) *ReviewHandler {
	return &ReviewHandler{db: db, store: store}
}

// ListProductReviews returns the approved reviews of a product.
func (h *ReviewHandler) ListProductReviews(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{}).
		Where("product_id = ? AND status = ?", productID, models.ReviewStatusApproved)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Preload("User").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(reviews))
	for _, review := range reviews {
		entry := fiber.Map{
			"id":         review.ID,
			"rating":     review.Rating,
			"title":      review.Title,
			"comment":    review.Comment,
			"created_at": review.CreatedAt,
			"helpful":    h.store.GetCount(c.Context(), helpfulKey(review.ID)),
		}
		if review.User != nil {
			entry["author"] = review.User.FirstName
		}
		data = append(data, entry)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// CreateReview adds a review for a product. One review per user per product;
// new reviews await moderation.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var existing models.Review
	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "you have already reviewed this product")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Status:    models.ReviewStatusPending,
	}

	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// UpdateReview edits the caller's own review and sends it back to moderation.
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	if review.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "not your review")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	review.Rating = req.Rating
	review.Title = req.Title
	review.Comment = req.Comment
	review.Status = models.ReviewStatusPending

	if err := h.db.Save(&review).Error; err != nil {
		return err
	}

	if err := h.recomputeRating(review.ProductID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": review})
}

// DeleteReview removes the caller's own review.
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	if review.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "not your review")
	}

	if err := h.db.Delete(&review).Error; err != nil {
		return err
	}

	if err := h.recomputeRating(review.ProductID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "review deleted"})
}

// MarkHelpful counts a helpful vote for a review. Votes live in Redis only;
// losing them degrades the display, not correctness.
func (h *ReviewHandler) MarkHelpful(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	count := h.store.Increment(c.Context(), helpfulKey(id))

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"helpful": count}})
}

type moderateReviewRequest struct {
	Status string `json:"status"`
}

// ModerateReview sets a review's moderation status and refreshes the
// product's rating aggregate. Admin-only via route middleware.
func (h *ReviewHandler) ModerateReview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req moderateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch req.Status {
	case models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "invalid review status")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	review.Status = req.Status
	if err := h.db.Save(&review).Error; err != nil {
		return err
	}

	if err := h.recomputeRating(review.ProductID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": review})
}

// recomputeRating refreshes a product's rating aggregate from its approved
// reviews.
func (h *ReviewHandler) recomputeRating(productID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := h.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("product_id = ? AND status = ?", productID, models.ReviewStatusApproved).
		Scan(&agg).Error; err != nil {
		return err
	}

	return h.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating_average": utils.RoundMoney(agg.Avg),
			"rating_count":   agg.Count,
		}).Error
}

func helpfulKey(reviewID uuid.UUID) string {
	return fmt.Sprintf("review:helpful:%s", reviewID)
}
