package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/middleware"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/services"
	"github.com/example/kolzo/internal/utils"
)

// PaymentHandler bridges orders to the Stripe payment flow.
type PaymentHandler struct {
	db     *gorm.DB
	orders *services.OrderService
	stripe *services.StripeService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB, orders *services.OrderService, stripe *services.StripeService) *PaymentHandler {
	return &PaymentHandler{db: db, orders: orders, stripe: stripe}
}

type createIntentRequest struct {
	Order string `json:"order"`
}

// CreateIntent opens a Stripe payment intent for one of the caller's orders
// and returns the client secret the frontend needs to confirm it.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.Order)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return fiber.NewError(fiber.StatusConflict, "order is already paid")
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return fiber.NewError(fiber.StatusConflict, "order is cancelled")
	}

	intent, err := h.stripe.CreatePaymentIntent(c.Context(),
		utils.ToMinorUnits(order.Total), "inr", order.OrderNumber)
	if err != nil {
		if err == services.ErrStripeNotConfigured {
			return fiber.NewError(fiber.StatusServiceUnavailable, "payments are not configured")
		}
		return err
	}

	if err := h.orders.AttachPaymentIntent(c.Context(), order.ID, intent.ID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"payment_intent_id": intent.ID,
			"client_secret":     intent.ClientSecret,
			"amount":            intent.Amount,
			"currency":          intent.Currency,
		},
	})
}

type stripeEventObject struct {
	ID             string `json:"id"`
	AmountRefunded int64  `json:"amount_refunded"`
	PaymentIntent  string `json:"payment_intent"`
}

// Webhook receives Stripe events. The signature is verified against the raw
// body before anything is trusted. Events for unknown orders are acknowledged
// with 200 so Stripe stops retrying them.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	event, err := h.stripe.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if err == services.ErrStripeNotConfigured {
			return fiber.NewError(fiber.StatusServiceUnavailable, "payments are not configured")
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid signature")
	}

	var object stripeEventObject
	if err := json.Unmarshal(event.Data.Object, &object); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed event payload")
	}

	var markErr error
	switch event.Type {
	case "payment_intent.succeeded":
		markErr = h.orders.MarkPaymentStatus(c.Context(), object.ID, models.PaymentStatusPaid, 0)
	case "payment_intent.payment_failed":
		markErr = h.orders.MarkPaymentStatus(c.Context(), object.ID, models.PaymentStatusFailed, 0)
	case "charge.refunded":
		refund := utils.RoundMoney(float64(object.AmountRefunded) / 100)
		markErr = h.orders.MarkPaymentStatus(c.Context(), object.PaymentIntent, models.PaymentStatusRefunded, refund)
	default:
		// Unhandled event types are acknowledged without action.
	}

	if markErr == services.ErrOrderNotFound {
		log.Printf("[Stripe] Event %s references an unknown payment intent", event.ID)
	} else if markErr != nil {
		return markErr
	}

	return c.JSON(fiber.Map{"received": true})
}
