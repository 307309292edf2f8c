package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/middleware"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/services"
	"github.com/example/kolzo/internal/utils"
)

// OrderHandler manages order endpoints. Mutations go through OrderService;
// reads query the database directly.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type orderItemRequest struct {
	Product       string `json:"product"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

type orderAddressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type createOrderRequest struct {
	Items           []orderItemRequest  `json:"items"`
	ShippingAddress orderAddressRequest `json:"shippingAddress"`
	BillingAddress  orderAddressRequest `json:"billingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
}

// CreateOrder places an order for the authenticated user.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input, errs := buildCreateOrderInput(req)
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	order, err := h.orders.Create(c.Context(), userID, input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns orders for the authenticated user, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("order_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		Preload("Items.Product").
		Preload("Notes").
		First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "not your order")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder cancels an order the user owns and restores its stock.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	// Body is optional; an empty body means the default reason.
	_ = c.BodyParser(&req)

	order, err := h.orders.Cancel(c.Context(), userID, id, req.Reason)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	Note           string `json:"note"`
}

// UpdateStatus applies an admin status transition. The admin guard runs in
// the route middleware.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Context(), id, services.StatusUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// GetTracking returns a compact status/tracking summary of an order.
func (h *OrderHandler) GetTracking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "not your order")
	}

	history := make([]fiber.Map, 0, len(order.Notes))
	for _, note := range order.Notes {
		history = append(history, fiber.Map{
			"note":       note.Note,
			"created_at": note.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order_number":       order.OrderNumber,
			"order_status":       order.OrderStatus,
			"payment_status":     order.PaymentStatus,
			"tracking_number":    order.TrackingNumber,
			"estimated_delivery": order.EstimatedDelivery,
			"placed_at":          order.PlacedAt,
			"history":            history,
		},
	})
}

func buildCreateOrderInput(req createOrderRequest) (services.CreateOrderInput, []string) {
	var errs []string

	if len(req.Items) == 0 {
		errs = append(errs, "items: at least one item is required")
	}

	input := services.CreateOrderInput{
		ShippingAddress: models.OrderAddress(req.ShippingAddress),
		BillingAddress:  models.OrderAddress(req.BillingAddress),
		PaymentMethod:   req.PaymentMethod,
	}

	for i, item := range req.Items {
		id, err := uuid.Parse(item.Product)
		if err != nil {
			errs = append(errs, fmt.Sprintf("items[%d].product: invalid product id", i))
			continue
		}
		if item.Quantity < 1 {
			errs = append(errs, fmt.Sprintf("items[%d].quantity: must be at least 1", i))
			continue
		}
		input.Items = append(input.Items, services.OrderItemInput{
			ProductID:     id,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}

	if !input.ShippingAddress.Complete() {
		errs = append(errs, "shippingAddress: name, phone, address, city, state and pincode are required")
	}
	if !input.BillingAddress.Complete() {
		errs = append(errs, "billingAddress: name, phone, address, city, state and pincode are required")
	}
	if req.PaymentMethod == "" {
		errs = append(errs, "paymentMethod: required")
	}

	return input, errs
}
