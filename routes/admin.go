package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/manch118/fasteStore/controllers/order"
	productControllers "github.com/manch118/fasteStore/controllers/product"
	userControllers "github.com/manch118/fasteStore/controllers/user"
	"github.com/manch118/fasteStore/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires an admin
// session.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireAdmin)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.DELETE("/users/:id", userControllers.DeleteUser(db))

		adminGroup.GET("/orders", orderControllers.GetAllOrders(db))

		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productControllers.CreateProduct(db))
			productAdmin.PUT("/:id", productControllers.UpdateProduct(db))
			productAdmin.DELETE("/:id", productControllers.DeleteProduct(db))
			productAdmin.GET("/export-excel", productControllers.ExportProductsToExcel(db))
		}
	}
}
