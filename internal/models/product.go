package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Slug               string           `gorm:"uniqueIndex" json:"slug"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              float64          `json:"price"`
	OriginalPrice      float64          `json:"original_price"`
	DiscountPercentage float64          `json:"discount_percentage"`
	Category           string           `gorm:"index" json:"category"`
	Gender             string           `json:"gender"`
	Brand              string           `gorm:"index" json:"brand"`
	SKU                string           `gorm:"uniqueIndex" json:"sku"`
	Images             pq.StringArray   `gorm:"type:text[]" json:"images"`
	StockQuantity      int              `json:"stock_quantity"`
	RatingAverage      float64          `json:"rating_average"`
	RatingCount        int              `json:"rating_count"`
	IsActive           bool             `gorm:"default:true" json:"is_active"`
	IsFeatured         bool             `json:"is_featured"`
	IsOnSale           bool             `json:"is_on_sale"`
	ViewCount          int64            `json:"view_count"`
	Variants           []ProductVariant `json:"variants,omitempty"`
	Reviews            []Review         `json:"reviews,omitempty"`
}

type ProductVariant struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU           string    `gorm:"uniqueIndex" json:"sku"`
	Color         string    `json:"color"`
	Size          string    `json:"size"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}
