package models

import "time"

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	Price        float64   `gorm:"not null" json:"price"`
	Image        string    `json:"image"`
	Category     string    `gorm:"index" json:"category"`
	IsNewArrival bool      `gorm:"not null;default:false" json:"is_new_arrival"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
