// Package ledger owns the order state machine: pending -> paid | failed.
// Every transition is guarded by the order row's current status so that two
// concurrent callbacks cannot both apply the same transition.
package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/manch118/fasteStore/models"
)

var (
	ErrEmptyItems    = errors.New("order must have at least one line item")
	ErrNotFound      = errors.New("order not found")
	ErrNotPending    = errors.New("order is not pending")
	ErrAlreadyLinked = errors.New("order already has a paypal order id")
	ErrNotLinked     = errors.New("order has no paypal order id")
)

// LineItem is a snapshot line carried into an order at creation time.
type LineItem struct {
	ProductID uint
	Name      string
	Price     float64
	Image     string
	Quantity  int
}

// Create persists a pending order and its items as one unit. The total is
// computed here from the snapshot prices; a client-supplied total is never
// trusted.
func Create(db *gorm.DB, userID uint, items []LineItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	order := models.Order{
		UserID:    userID,
		Total:     total,
		Status:    models.OrderStatusPending,
		Items:     orderItems,
		CreatedAt: time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Get loads an order with its items.
func Get(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// AttachRemoteID links the processor's order id to a pending order. The id is
// written exactly once; a second call is a protocol violation.
func AttachRemoteID(db *gorm.DB, order *models.Order, remoteID string) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND paypal_order_id IS NULL", order.ID, models.OrderStatusPending).
		Update("paypal_order_id", remoteID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		cur, err := Get(db, order.ID)
		if err != nil {
			return err
		}
		if cur.PayPalOrderID != nil {
			return ErrAlreadyLinked
		}
		return ErrNotPending
	}
	order.PayPalOrderID = &remoteID
	return nil
}

// MarkPaid finalizes a pending order. It is idempotent: a duplicate capture
// confirmation for an already-paid order is a no-op, not an error.
func MarkPaid(db *gorm.DB, orderID uint) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		cur, err := Get(db, orderID)
		if err != nil {
			return err
		}
		if cur.Status == models.OrderStatusPaid {
			return nil
		}
		return ErrNotPending
	}
	return nil
}

// MarkFailed moves a pending order to its failed terminal state.
func MarkFailed(db *gorm.DB, orderID uint) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := Get(db, orderID); err != nil {
			return err
		}
		return ErrNotPending
	}
	return nil
}

// Discard removes an order that never made it to the processor. Once a remote
// id is attached the order must be failed, not discarded, so the processor
// reference is never lost.
func Discard(db *gorm.DB, order *models.Order) error {
	if order.PayPalOrderID != nil {
		return ErrAlreadyLinked
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
}
