package models

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending" // created locally, payment not finished
	OrderStatusPaid    OrderStatus = "paid"    // capture confirmed, terminal
	OrderStatusFailed  OrderStatus = "failed"  // remote creation or capture rejected, terminal
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;index" json:"user_id"`
	Total         float64     `gorm:"not null" json:"total"`
	PayPalOrderID *string     `gorm:"column:paypal_order_id;uniqueIndex" json:"paypal_order_id"`
	Status        OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem is an immutable copy of a cart line at the moment the order was
// created. It never points back at the live product row, so catalog edits and
// deletions leave historical orders untouched.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}
