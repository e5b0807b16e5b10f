package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/manch118/fasteStore/models"
)

const resetTokenLifetime = time.Hour

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// POST /forgot-password
// Issues a single-use reset token. The response never says whether the email
// exists; delivery of the token is outside this service, so it is only
// logged.
func ForgotPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ForgotPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}

		generic := gin.H{"success": true, "message": "If the email exists, a reset link has been sent"}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, generic)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
			return
		}

		reset := models.PasswordReset{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(resetTokenLifetime),
		}
		if err := db.Create(&reset).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue reset token"})
			return
		}

		log.Info().Uint("user_id", user.ID).Str("token", reset.Token).Msg("password reset token issued")
		c.JSON(http.StatusOK, generic)
	}
}

// POST /reset-password
func ResetPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ResetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input: " + err.Error()})
			return
		}
		if input.Password != input.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Passwords do not match"})
			return
		}

		var reset models.PasswordReset
		err := db.Where("token = ? AND used = ? AND expires_at > ?", input.Token, false, time.Now()).
			First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
			return
		}

		hash, err := HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reset password"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
				Update("password_hash", hash).Error; err != nil {
				return err
			}
			return tx.Model(&reset).Update("used", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reset password"})
			return
		}

		log.Info().Uint("user_id", reset.UserID).Msg("password reset completed")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated, you can now log in"})
	}
}
