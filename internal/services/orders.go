package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/utils"
)

// Pricing rules applied at checkout.
const (
	TaxRate               = 0.18
	ShippingFlatFee       = 200.0
	FreeShippingThreshold = 5000.0
)

const defaultCancellationReason = "Cancelled by customer"

// OrderService owns every order mutation: creation, cancellation and status
// transitions. Reads stay in the handlers.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	SelectedSize  string
	SelectedColor string
}

// CreateOrderInput is the validated payload for placing an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress models.OrderAddress
	BillingAddress  models.OrderAddress
	PaymentMethod   string
}

// Create places an order for the user. Stock checks and decrements run as
// conditional updates inside a single transaction, so a failure on any line
// rolls back every decrement made before it and an order row is only ever
// written together with its stock adjustments.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var orderID uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		distinct := make(map[uuid.UUID]struct{}, len(input.Items))
		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			if _, ok := distinct[item.ProductID]; !ok {
				distinct[item.ProductID] = struct{}{}
				ids = append(ids, item.ProductID)
			}
		}

		var products []models.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return err
		}
		if len(products) != len(ids) {
			return ErrProductsUnavailable
		}

		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		now := time.Now()
		order := models.Order{
			UserID:          userID,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			OrderStatus:     models.OrderStatusPending,
			PlacedAt:        now,
		}

		var subtotal float64
		for _, item := range input.Items {
			product := byID[item.ProductID]

			if !product.IsActive {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
			}

			// Decrement only when enough stock remains; zero rows affected
			// means another checkout got there first or the request asked
			// for more than is on hand.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", product.ID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			productID := product.ID
			lineTotal := utils.RoundMoney(product.Price * float64(item.Quantity))
			subtotal += lineTotal

			order.Items = append(order.Items, models.OrderItem{
				ProductID:     &productID,
				ProductName:   product.Name,
				Quantity:      item.Quantity,
				Price:         product.Price,
				LineTotal:     lineTotal,
				SelectedSize:  item.SelectedSize,
				SelectedColor: item.SelectedColor,
			})
		}

		order.Subtotal = utils.RoundMoney(subtotal)
		order.Tax = utils.RoundMoney(order.Subtotal * TaxRate)
		if order.Subtotal > FreeShippingThreshold {
			order.Shipping = 0
		} else {
			order.Shipping = ShippingFlatFee
		}
		order.Total = utils.RoundMoney(order.Subtotal + order.Tax + order.Shipping)

		number, err := nextOrderNumber(tx, now)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		order.Notes = []models.OrderNote{{Note: "Order placed"}}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, orderID)
}

// Cancel transitions an order the user owns back out of the pipeline and
// restores the stock it consumed. Products deleted since purchase are
// skipped; their stock cannot be restored anywhere.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*models.Order, error) {
	if reason == "" {
		reason = defaultCancellationReason
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return err
		}

		if order.UserID != userID {
			return ErrNotOrderOwner
		}
		if order.OrderStatus == models.OrderStatusCancelled {
			return ErrAlreadyCancelled
		}
		if order.OrderStatus == models.OrderStatusShipped || order.OrderStatus == models.OrderStatusDelivered {
			return ErrCancellationClosed
		}

		now := time.Now()
		updates := map[string]interface{}{
			"order_status":        models.OrderStatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        &now,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", *item.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		note := models.OrderNote{OrderID: order.ID, Note: "Order cancelled: " + reason}
		return tx.Create(&note).Error
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, orderID)
}

// StatusUpdate carries the optional extras of an admin status change.
type StatusUpdate struct {
	Status         string
	TrackingNumber string
	Note           string
}

// UpdateStatus applies an admin status transition. Shipping an order stamps
// the estimated delivery five days out. No stock side effects.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*models.Order, error) {
	if !validOrderStatus(update.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, update.Status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return err
		}

		updates := map[string]interface{}{"order_status": update.Status}
		if update.TrackingNumber != "" {
			updates["tracking_number"] = update.TrackingNumber
		}
		if update.Status == models.OrderStatusShipped {
			eta := time.Now().Add(5 * 24 * time.Hour)
			updates["estimated_delivery"] = &eta
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}

		if update.Note != "" {
			note := models.OrderNote{OrderID: order.ID, Note: update.Note}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, orderID)
}

// MarkPaymentStatus records a payment transition reported by the payment
// provider, looked up by payment intent. Order status is untouched; the
// fulfilment pipeline reacts separately.
func (s *OrderService) MarkPaymentStatus(ctx context.Context, paymentIntentID, status string, refundAmount float64) error {
	updates := map[string]interface{}{"payment_status": status}
	if status == models.PaymentStatusRefunded {
		now := time.Now()
		updates["refund_amount"] = refundAmount
		updates["refunded_at"] = &now
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// AttachPaymentIntent stores the provider's intent ID on the order.
func (s *OrderService) AttachPaymentIntent(ctx context.Context, orderID uuid.UUID, intentID string) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("stripe_payment_intent_id", intentID).Error
}

func (s *OrderService) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// nextOrderNumber allocates the next KOLZO-YYYYMMDD-NNNN number by bumping
// the per-day counter row inside the caller's transaction. The unique index
// on order_number backstops the counter.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"seq": gorm.Expr("seq + 1")}),
	}).Create(&models.OrderCounter{Day: day, Seq: 1}).Error; err != nil {
		return "", err
	}

	var counter models.OrderCounter
	if err := tx.Where("day = ?", day).First(&counter).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("KOLZO-%s-%04d", day, counter.Seq), nil
}

func validateCreateInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: product id required", ErrValidation)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}
	if !input.ShippingAddress.Complete() {
		return fmt.Errorf("%w: shipping address incomplete", ErrValidation)
	}
	if !input.BillingAddress.Complete() {
		return fmt.Errorf("%w: billing address incomplete", ErrValidation)
	}
	if input.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method required", ErrValidation)
	}
	return nil
}

func validOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered,
		models.OrderStatusCancelled:
		return true
	}
	return false
}
