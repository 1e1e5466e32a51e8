package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-api/internal/handlers"
	"github.com/01moynul/storefront-api/internal/middleware"
)

// corsConfig allows the configured frontends to call the API with a bearer token.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(h *handlers.Handlers, verifier middleware.TokenVerifier, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))

	// --- CORS must run before any route ---
	router.Use(cors.New(corsConfig(corsOrigins)))

	v1 := router.Group("/v1")
	{
		// --- Public Routes ---
		v1.GET("/ping", h.Ping)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)

		// --- Protected Routes (Login Required) ---
		authed := v1.Group("/")
		authed.Use(middleware.AuthMiddleware(verifier, h.DB, h.Log))
		{
			authed.GET("/profile/me", h.GetProfile)

			// Cart
			authed.GET("/cart", h.GetCart)
			authed.DELETE("/cart", h.ClearCart)
			authed.GET("/cart/validate", h.ValidateCart)
			authed.POST("/cart/items", h.AddToCart)
			authed.PUT("/cart/items/:id", h.UpdateCartItem)
			authed.DELETE("/cart/items/:id", h.DeleteCartItem)

			// Checkout & order history
			authed.POST("/checkout", h.Checkout)
			authed.GET("/orders", h.GetMyOrders)
			authed.GET("/orders/:id", h.GetMyOrder)

			// --- Admin Routes ---
			admin := authed.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/products/low-stock", h.LowStock)
				admin.POST("/products", h.CreateProduct)
				admin.PATCH("/products/:id", h.UpdateProduct)
				admin.PATCH("/products/:id/stock", h.AdjustStock)
				admin.DELETE("/products/:id", h.DeleteProduct)
				admin.DELETE("/users/:id", h.DeleteUser)
			}
		}
	}

	return router
}
