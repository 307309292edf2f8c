package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/kolzo/internal/cache"
	"github.com/example/kolzo/internal/config"
	"github.com/example/kolzo/internal/database"
	"github.com/example/kolzo/internal/handlers"
	"github.com/example/kolzo/internal/models"
	"github.com/example/kolzo/internal/routes"
	"github.com/example/kolzo/internal/search"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	store := cache.Connect(cfg.RedisURL)

	idx := search.NewIndex()
	var products []models.Product
	if err := db.Where("is_active = ?", true).Find(&products).Error; err != nil {
		log.Fatalf("failed to load catalog for search index: %v", err)
	}
	idx.Build(products)
	log.Printf("Search index built over %d products", len(products))

	app := fiber.New(fiber.Config{
		AppName:      "KOLZO Backend",
		ErrorHandler: handlers.ErrorHandler(cfg),
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, store, idx)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
