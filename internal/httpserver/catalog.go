package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

const homepageCacheControl = "public, s-maxage=60, stale-while-revalidate=300"

func homepageHandler(svc ContentService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Msg("homepage content")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch homepage content"})
			}
		}()
		preview := c.Query("preview") == "true"
		page := svc.Homepage(c.Request.Context(), preview)
		c.Header("Cache-Control", homepageCacheControl)
		c.JSON(http.StatusOK, page)
	}
}

func productHandler(svc CatalogService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		product, err := svc.ProductBySlugOrKey(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			logger.Error().Err(err).Str("slug", slug).Msg("fetch product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func listProductsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products := svc.Products(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
	}
}

func listCategoriesHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats := svc.Categories(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"count": len(cats), "results": cats})
	}
}

func categoryHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.CategoryPage(c.Request.Context(), c.Param("slug"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
