package userControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/manch118/fasteStore/models"
)

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "username", "email", "is_admin", "created_at").
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
	}
}

// DELETE /admin/users/:id
// Cart items, password resets and orders (with their items) go with the user;
// the cascades are declared on the models and enforced at the store level.
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&models.PasswordReset{}).Error; err != nil {
				return err
			}
			var orderIDs []uint
			if err := tx.Model(&models.Order{}).Where("user_id = ?", id).Pluck("id", &orderIDs).Error; err != nil {
				return err
			}
			if len(orderIDs) > 0 {
				if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
					return err
				}
				if err := tx.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.User{}, id).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
			return
		}

		log.Info().Int("user_id", id).Msg("user deleted")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
	}
}
