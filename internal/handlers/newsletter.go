package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/services"
)

// NewsletterHandler manages newsletter signups. The subscriber table is the
// source of truth; provider sync is best-effort and recorded per row.
type NewsletterHandler struct {
	db       *gorm.DB
	provider *services.NewsletterService
}

// NewNewsletterHandler constructs NewsletterHandler.
func NewNewsletterHandler(db *gorm.DB, provider *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{db: db, provider: provider}
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter. Re-subscribing an existing
// address is idempotent.
func (h *NewsletterHandler) Subscribe(c *fiber.Ctx) error {
	email, err := parseNewsletterEmail(c)
	if err != nil {
		return err
	}

	subscriber := models.NewsletterSubscriber{Email: email, Subscribed: true}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"subscribed": true}),
	}).Create(&subscriber).Error; err != nil {
		return err
	}

	h.syncProvider(c, email, true)

	return c.JSON(fiber.Map{"success": true, "message": "subscribed to newsletter"})
}

// Unsubscribe removes an email from the newsletter.
func (h *NewsletterHandler) Unsubscribe(c *fiber.Ctx) error {
	email, err := parseNewsletterEmail(c)
	if err != nil {
		return err
	}

	res := h.db.Model(&models.NewsletterSubscriber{}).
		Where("email = ?", email).
		Update("subscribed", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "email is not subscribed")
	}

	h.syncProvider(c, email, false)

	return c.JSON(fiber.Map{"success": true, "message": "unsubscribed from newsletter"})
}

// syncProvider pushes the change to the mailing-list provider and records the
// attempt on the subscriber row. Provider failures never fail the request.
func (h *NewsletterHandler) syncProvider(c *fiber.Ctx, email string, subscribed bool) {
	var syncErr error
	if subscribed {
		syncErr = h.provider.Subscribe(c.Context(), email)
	} else {
		syncErr = h.provider.Unsubscribe(c.Context(), email)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"provider_sync_at": &now,
		"provider_error":   "",
	}
	if syncErr != nil {
		updates["provider_error"] = syncErr.Error()
	}
	h.db.Model(&models.NewsletterSubscriber{}).
		Where("email = ?", email).
		Updates(updates)
}

func parseNewsletterEmail(c *fiber.Ctx) (string, error) {
	var req newsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}
	return email, nil
}
