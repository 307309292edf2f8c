package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/search"
	"github.com/example/kolzo/internal/utils"
)

// ProductHandler manages catalog CRUD.
type ProductHandler struct {
	db  *gorm.DB
	idx *search.Index
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, idx *search.Index) *ProductHandler {
	return &ProductHandler{db: db, idx: idx}
}

// RegisterPublicRoutes attaches the read-only catalog endpoints.
func (h *ProductHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/featured", h.ListFeatured)
	router.Get("/slug/:slug", h.GetProductBySlug)
	router.Get("/:id", h.GetProduct)
}

// RegisterAdminRoutes attaches the catalog mutation endpoints.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/", h.CreateProduct)
	router.Put("/:id", h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
}

// ListProducts returns paginated active products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("is_active = ?", true)

	if v := c.Query("category"); v != "" {
		query = query.Where("category = ?", v)
	}

	if v := c.Query("gender"); v != "" {
		query = query.Where("gender = ?", v)
	}

	if v := c.Query("brand"); v != "" {
		query = query.Where("brand = ?", v)
	}

	if v := strings.TrimSpace(c.Query("search")); v != "" {
		q := "%" + v + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", val)
		}
	}

	if c.Query("on_sale") == "true" {
		query = query.Where("is_on_sale = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Variants").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ListFeatured returns the featured shelf.
func (h *ProductHandler) ListFeatured(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at desc").
		Limit(12).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// GetProduct loads a product with variants and approved reviews, counting
// the detail-page view.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").
		Preload("Reviews", "status = ?", models.ReviewStatusApproved).
		First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	h.bumpViewCount(product.ID)
	product.ViewCount++

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// GetProductBySlug loads a product by its URL slug.
func (h *ProductHandler) GetProductBySlug(c *fiber.Ctx) error {
	var product models.Product
	if err := h.db.Preload("Variants").
		Preload("Reviews", "status = ?", models.ReviewStatusApproved).
		First(&product, "slug = ?", c.Params("slug")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	h.bumpViewCount(product.ID)
	product.ViewCount++

	return c.JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) bumpViewCount(id uuid.UUID) {
	if err := h.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		// View counting is advisory; a failed bump never fails the read.
		return
	}
}

type productRequest struct {
	Slug               string           `json:"slug"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              float64          `json:"price"`
	OriginalPrice      float64          `json:"original_price"`
	DiscountPercentage float64          `json:"discount_percentage"`
	Category           string           `json:"category"`
	Gender             string           `json:"gender"`
	Brand              string           `json:"brand"`
	SKU                string           `json:"sku"`
	Images             []string         `json:"images"`
	StockQuantity      int              `json:"stock_quantity"`
	IsActive           *bool            `json:"is_active"`
	IsFeatured         bool             `json:"is_featured"`
	IsOnSale           bool             `json:"is_on_sale"`
	Variants           []variantRequest `json:"variants"`
}

type variantRequest struct {
	ID            string  `json:"id"`
	SKU           string  `json:"sku"`
	Color         string  `json:"color"`
	Size          string  `json:"size"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      *bool   `json:"is_active"`
}

// CreateProduct handles product creation.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Slug == "" || req.SKU == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, slug and sku are required")
	}
	if req.Price < 0 || req.StockQuantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price and stock must not be negative")
	}

	product := productFromRequest(req)

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	h.idx.Add(product)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Price < 0 || req.StockQuantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price and stock must not be negative")
	}

	updated := productFromRequest(req)
	updated.ID = product.ID
	updated.CreatedAt = product.CreatedAt
	updated.RatingAverage = product.RatingAverage
	updated.RatingCount = product.RatingCount
	updated.ViewCount = product.ViewCount

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		return err
	}

	h.idx.Add(updated)

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// DeleteProduct removes a product from the catalog.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	h.idx.Remove(id)

	return c.SendStatus(fiber.StatusNoContent)
}

func productFromRequest(req productRequest) models.Product {
	product := models.Product{
		Slug:               req.Slug,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		Category:           req.Category,
		Gender:             req.Gender,
		Brand:              req.Brand,
		SKU:                req.SKU,
		Images:             req.Images,
		StockQuantity:      req.StockQuantity,
		IsActive:           true,
		IsFeatured:         req.IsFeatured,
		IsOnSale:           req.IsOnSale,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	for _, v := range req.Variants {
		variant := models.ProductVariant{
			SKU:           v.SKU,
			Color:         v.Color,
			Size:          v.Size,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
			IsActive:      true,
		}
		if v.IsActive != nil {
			variant.IsActive = *v.IsActive
		}
		if v.ID != "" {
			if id, err := uuid.Parse(v.ID); err == nil {
				variant.ID = id
			}
		}
		product.Variants = append(product.Variants, variant)
	}

	return product
}
