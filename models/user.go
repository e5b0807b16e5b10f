package models

import "time"

type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Username       string          `gorm:"uniqueIndex;not null" json:"username"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string          `json:"-"`
	IsAdmin        bool            `gorm:"not null;default:false" json:"is_admin"`
	CartItems      []CartItem      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PasswordResets []PasswordReset `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders         []Order         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
}
