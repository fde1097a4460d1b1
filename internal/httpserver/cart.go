package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/service/cart"
)

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// cartResponse mirrors the cart state a client renders: the cart or null,
// plus the item count.
func cartResponse(st *cart.Store) gin.H {
	c, n := st.Snapshot()
	return gin.H{"cart": c, "itemCount": n}
}

// sessionStore resolves the caller's cart store, answering 503 when the
// session slot could not be read.
func sessionStore(c *gin.Context, svc CartService, logger zerolog.Logger) (*cart.Store, bool) {
	st, err := svc.Store(c.Request.Context(), sessionID(c))
	if err != nil {
		logger.Error().Err(err).Msg("load cart session")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cart unavailable"})
		return nil, false
	}
	return st, true
}

func getCartHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionStore(c, svc, logger)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, cartResponse(st))
	}
}

func clearCartHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionStore(c, svc, logger)
		if !ok {
			return
		}
		st.Clear(c.Request.Context())
		c.JSON(http.StatusOK, cartResponse(st))
	}
}

func addItemHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		st, ok := sessionStore(c, svc, logger)
		if !ok {
			return
		}
		if err := st.AddItem(c.Request.Context(), in); err != nil {
			switch {
			case errors.Is(err, cart.ErrProductRequired):
				c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
				return
			case errors.Is(err, cart.ErrQuantityRange), errors.Is(err, cart.ErrNegativePrice):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(st))
	}
}

func updateItemHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		if *req.Quantity > cart.MaxLineQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": cart.ErrQuantityRange.Error()})
			return
		}
		st, ok := sessionStore(c, svc, logger)
		if !ok {
			return
		}
		st.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
		c.JSON(http.StatusOK, cartResponse(st))
	}
}

func removeItemHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionStore(c, svc, logger)
		if !ok {
			return
		}
		st.RemoveItem(c.Request.Context(), c.Param("id"))
		c.JSON(http.StatusOK, cartResponse(st))
	}
}

func checkoutHandler(svc CartService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		remote, err := svc.Checkout(c.Request.Context(), sessionID(c))
		if err != nil {
			if errors.Is(err, cart.ErrEmptyCart) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
				return
			}
			if errors.Is(err, cart.ErrUnavailableItem) {
				logger.Warn().Err(err).Msg("checkout")
				c.JSON(http.StatusConflict, gin.H{"error": "Cart contains unavailable items"})
				return
			}
			logger.Error().Err(err).Msg("checkout")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Checkout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": nil, "itemCount": 0, "backendCart": remote})
	}
}
