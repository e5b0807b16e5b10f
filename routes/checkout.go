package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	checkoutControllers "github.com/manch118/fasteStore/controllers/checkout"
	"github.com/manch118/fasteStore/middleware"
)

// SetupCheckoutRoutes registers the payment flow. Starting a checkout needs a
// session; the capture endpoint is reached from the processor's return
// redirect, which carries none.
func SetupCheckoutRoutes(r *gin.Engine, db *gorm.DB, gw checkoutControllers.Gateway) {
	checkout := r.Group("/checkout")
	{
		checkout.POST("/start", middleware.ValidateToken, checkoutControllers.StartCheckoutHandler(db, gw))
		checkout.POST("/capture", checkoutControllers.CaptureHandler(db, gw))
		// The processor's return redirect arrives as a GET.
		checkout.GET("/capture", checkoutControllers.CaptureHandler(db, gw))
	}
}
