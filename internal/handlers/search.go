package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/cache"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/search"
)

const (
	searchResultCap  = 50
	searchCacheTTL   = 5 * time.Minute
	searchPopularSet = "search:popular"
)

// SearchHandler serves catalog search off the in-memory index, with a Redis
// result cache and a popularity leaderboard in front of it.
type SearchHandler struct {
	db    *gorm.DB
	idx   *search.Index
	store *cache.Cache
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(db *gorm.DB, idx *search.Index, store *cache.Cache) *SearchHandler {
	return &SearchHandler{db: db, idx: idx, store: store}
}

// Search looks up products for the q parameter.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := search.Normalize(c.Query("q"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q is required")
	}

	h.store.ZIncr(c.Context(), searchPopularSet, query)

	cacheKey := "search:q:" + query
	var cached []models.Product
	if h.store.GetJSON(c.Context(), cacheKey, &cached) {
		return c.JSON(fiber.Map{"success": true, "data": cached, "cached": true})
	}

	ids := h.idx.Lookup(query)
	if len(ids) > searchResultCap {
		ids = ids[:searchResultCap]
	}

	products, err := h.fetchInOrder(ids)
	if err != nil {
		return err
	}

	h.store.SetJSON(c.Context(), cacheKey, products, searchCacheTTL)

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// Suggestions returns autocomplete candidates for a prefix.
func (h *SearchHandler) Suggestions(c *fiber.Ctx) error {
	prefix := search.Normalize(c.Query("q"))
	if prefix == "" {
		return c.JSON(fiber.Map{"success": true, "data": []string{}})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.idx.Suggest(prefix, 10)})
}

// Popular returns the most-searched queries.
func (h *SearchHandler) Popular(c *fiber.Ctx) error {
	queries := h.store.ZTop(c.Context(), searchPopularSet, 10)
	if queries == nil {
		queries = []string{}
	}

	return c.JSON(fiber.Map{"success": true, "data": queries})
}

// fetchInOrder loads products by ID, preserving the index's ranking.
func (h *SearchHandler) fetchInOrder(ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := h.db.Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
