package middleware

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/manch118/fasteStore/auth"
)

// ValidateToken authenticates the session cookie and puts the caller's
// identity into the request context.
func ValidateToken(c *gin.Context) {
	tokenString, err := c.Cookie(auth.CookieName)
	if err != nil || tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No token provided"})
		c.Abort()
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
		c.Abort()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
		c.Abort()
		return
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
		c.Abort()
		return
	}

	isAdmin, _ := claims["is_admin"].(bool)
	username, _ := claims["sub"].(string)

	c.Set("user_id", uint(uid))
	c.Set("username", username)
	c.Set("is_admin", isAdmin)

	c.Next()
}

// RequireAdmin rejects non-admin sessions. Must run after ValidateToken.
func RequireAdmin(c *gin.Context) {
	if !c.GetBool("is_admin") {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
		c.Abort()
		return
	}
	c.Next()
}
