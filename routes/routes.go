package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	checkoutControllers "github.com/manch118/fasteStore/controllers/checkout"
)

// SetupRoutes is the single entry-point that wires up the auth, user, admin
// and checkout route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, gw checkoutControllers.Gateway) {
	SetupAuthRoutes(r, db)
	SetupUserRoutes(r, db)
	SetupAdminRoutes(r, db)
	SetupCheckoutRoutes(r, db, gw)
}
