package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/kolzo/internal/cache"
	"github.com/example/kolzo/internal/config"
	"github.com/example/kolzo/internal/handlers"
	"github.com/example/kolzo/internal/middleware"
	"github.com/example/kolzo/internal/search"
	"github.com/example/kolzo/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, store *cache.Cache, idx *search.Index) {
	orderService := services.NewOrderService(db)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	newsletterService := services.NewNewsletterService(cfg.NewsletterAPIURL, cfg.NewsletterAPIKey, cfg.NewsletterListID)

	authHandler := handlers.NewAuthHandler(db, cfg)
	passwordResetHandler := handlers.NewPasswordResetHandler(db)
	productHandler := handlers.NewProductHandler(db, idx)
	orderHandler := handlers.NewOrderHandler(db, orderService)
	paymentHandler := handlers.NewPaymentHandler(db, orderService, stripeService)
	profileHandler := handlers.NewProfileHandler(db)
	reviewHandler := handlers.NewReviewHandler(db, store)
	wishlistHandler := handlers.NewWishlistHandler(db)
	newsletterHandler := handlers.NewNewsletterHandler(db, newsletterService)
	searchHandler := handlers.NewSearchHandler(db, idx, store)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes. Credential endpoints share the login throttle.
	throttle := middleware.LoginRateLimit(store, cfg.LoginRateLimit, cfg.LoginRateWindow)
	auth := api.Group("/auth")
	auth.Post("/register", throttle, authHandler.Register)
	auth.Post("/login", throttle, authHandler.Login)
	auth.Post("/forgot-password", throttle, passwordResetHandler.ForgotPassword)
	auth.Post("/reset-password", passwordResetHandler.ResetPassword)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Catalog
	products := api.Group("/products")
	productHandler.RegisterPublicRoutes(products)
	products.Get("/:id/reviews", reviewHandler.ListProductReviews)

	// Search
	api.Get("/search", searchHandler.Search)
	api.Get("/search/suggestions", searchHandler.Suggestions)
	api.Get("/search/popular", searchHandler.Popular)

	// Newsletter
	api.Post("/newsletter/subscribe", newsletterHandler.Subscribe)
	api.Post("/newsletter/unsubscribe", newsletterHandler.Unsubscribe)

	// Stripe calls this; signature verification is the auth.
	api.Post("/payments/webhook", paymentHandler.Webhook)

	// Review helpfulness votes are anonymous.
	api.Post("/reviews/:id/helpful", reviewHandler.MarkHelpful)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Get("/orders/:id/tracking", orderHandler.GetTracking)
	protected.Put("/orders/:id/cancel", orderHandler.CancelOrder)
	protected.Put("/orders/:id/status", middleware.RequireAdmin(), orderHandler.UpdateStatus)

	protected.Post("/payments/intent", paymentHandler.CreateIntent)

	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Post("/products/:id/reviews", reviewHandler.CreateReview)
	protected.Put("/reviews/:id", reviewHandler.UpdateReview)
	protected.Delete("/reviews/:id", reviewHandler.DeleteReview)

	protected.Get("/wishlist", wishlistHandler.ListWishlist)
	protected.Post("/wishlist", wishlistHandler.AddToWishlist)
	protected.Delete("/wishlist/:productId", wishlistHandler.RemoveFromWishlist)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin())

	adminProducts := admin.Group("/products")
	productHandler.RegisterAdminRoutes(adminProducts)

	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Put("/orders/:id/status", orderHandler.UpdateStatus)
	admin.Get("/reviews/pending", adminHandler.ListPendingReviews)
	admin.Put("/reviews/:id", reviewHandler.ModerateReview)
	admin.Get("/products-low-stock", adminHandler.ListLowStock)
}
