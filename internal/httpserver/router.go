package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/content"
)

type CatalogService interface {
	ProductBySlugOrKey(ctx context.Context, slugOrKey string) (*domain.Product, error)
	Products(ctx context.Context) []domain.Product
	Categories(ctx context.Context) []domain.Category
	CategoryPage(ctx context.Context, slug string) (*catalog.CategoryPage, error)
}

type ContentService interface {
	Homepage(ctx context.Context, preview bool) content.Homepage
}

type CartService interface {
	Store(ctx context.Context, sessionID string) (*cart.Store, error)
	Checkout(ctx context.Context, sessionID string) (*commerce.Cart, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	Catalog CatalogService
	Content ContentService
	Carts   CartService

	AllowedOrigins []string
	SessionCookie  string
	Ready          []ReadinessCheck
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(deps.AllowedOrigins))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	api := router.Group("/api")
	api.GET("/homepage", homepageHandler(deps.Content, logger))
	api.GET("/products", listProductsHandler(deps.Catalog))
	api.GET("/products/:slug", productHandler(deps.Catalog, logger))
	api.GET("/categories", listCategoriesHandler(deps.Catalog))
	api.GET("/categories/:slug", categoryHandler(deps.Catalog))

	carts := api.Group("/cart", sessionMiddleware(deps.SessionCookie))
	carts.GET("", getCartHandler(deps.Carts, logger))
	carts.DELETE("", clearCartHandler(deps.Carts, logger))
	carts.POST("/items", addItemHandler(deps.Carts, logger))
	carts.PATCH("/items/:id", updateItemHandler(deps.Carts, logger))
	carts.DELETE("/items/:id", removeItemHandler(deps.Carts, logger))
	carts.POST("/checkout", checkoutHandler(deps.Carts, logger))

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", sessionHeader},
		ExposeHeaders:    []string{sessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
