package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manch118/fasteStore/auth"
)

// SetupAuthRoutes registers the public account endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", auth.SignupHandler(db))
		authGroup.POST("/login", auth.LoginHandler(db))
		authGroup.POST("/logout", auth.LogoutHandler())
	}

	r.POST("/forgot-password", auth.ForgotPasswordHandler(db))
	r.POST("/reset-password", auth.ResetPasswordHandler(db))
}
