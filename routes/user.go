package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manch118/fasteStore/auth"
	cartControllers "github.com/manch118/fasteStore/controllers/cart"
	orderControllers "github.com/manch118/fasteStore/controllers/order"
	productControllers "github.com/manch118/fasteStore/controllers/product"
	"github.com/manch118/fasteStore/middleware"
)

// SetupUserRoutes registers the storefront API. Catalog browsing is public;
// cart, profile and orders require a session.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	api := r.Group("/api")
	{
		api.GET("/products", productControllers.GetProducts(db))
		api.GET("/products/:id", productControllers.GetProductByID(db))
		api.GET("/new-arrivals", productControllers.GetNewArrivals(db))
	}

	authed := r.Group("/api")
	authed.Use(middleware.ValidateToken)
	{
		authed.GET("/me", auth.MeHandler(db))

		authed.GET("/cart", cartControllers.GetCart(db))
		authed.POST("/cart", cartControllers.AddToCart(db))
		authed.PUT("/cart/:product_id", cartControllers.UpdateCartItem(db))
		authed.DELETE("/cart/:product_id", cartControllers.RemoveCartItem(db))

		authed.GET("/orders", orderControllers.GetUserOrders(db))
		authed.GET("/orders/:id", orderControllers.GetUserOrderByID(db))
	}
}
