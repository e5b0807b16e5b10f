// Package checkoutControllers ties cart, ledger and payment gateway together.
// It owns the ordering guarantees: the cart is never touched before a capture
// is confirmed, and a failed remote creation leaves no local order behind.
package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	cartControllers "github.com/manch118/fasteStore/controllers/cart"
	"github.com/manch118/fasteStore/ledger"
	"github.com/manch118/fasteStore/models"
	"github.com/manch118/fasteStore/paypal"
)

var ErrEmptyCart = errors.New("cart is empty")

// Gateway is the slice of the payment processor the orchestrator needs.
type Gateway interface {
	CreateOrder(ctx context.Context, orderID uint, total float64) (remoteID, approvalURL string, err error)
	CaptureOrder(ctx context.Context, remoteID string) error
}

// StartCheckout snapshots the cart into a pending order and asks the
// processor for an approval redirect. The cart itself is left untouched; on a
// processor reject the local order is discarded so a retry starts clean.
func StartCheckout(ctx context.Context, db *gorm.DB, gw Gateway, userID uint) (*models.Order, string, error) {
	items, err := cartControllers.Items(db, userID)
	if err != nil {
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrEmptyCart
	}

	lines := make([]ledger.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, ledger.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	order, err := ledger.Create(db, userID, lines)
	if err != nil {
		return nil, "", err
	}

	remoteID, approvalURL, err := gw.CreateOrder(ctx, order.ID, order.Total)
	if err != nil {
		if derr := ledger.Discard(db, order); derr != nil {
			log.Error().Err(derr).Uint("order_id", order.ID).Msg("failed to discard order after gateway reject")
		}
		return nil, "", err
	}

	if err := ledger.AttachRemoteID(db, order, remoteID); err != nil {
		return nil, "", err
	}
	return order, approvalURL, nil
}

// CompleteCheckout captures a previously approved order and reconciles the
// ledger. The cart is cleared only after the order is marked paid, and the
// paid mark is committed on its own, so a clear failure can never roll a
// captured payment back to pending.
func CompleteCheckout(ctx context.Context, db *gorm.DB, gw Gateway, orderID uint) (*models.Order, error) {
	order, err := ledger.Get(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, ledger.ErrNotPending
	}
	if order.PayPalOrderID == nil {
		return nil, ledger.ErrNotLinked
	}

	if err := gw.CaptureOrder(ctx, *order.PayPalOrderID); err != nil {
		if ferr := ledger.MarkFailed(db, order.ID); ferr != nil && !errors.Is(ferr, ledger.ErrNotPending) {
			log.Error().Err(ferr).Uint("order_id", order.ID).Msg("failed to mark order failed after capture reject")
		}
		return nil, err
	}

	if err := ledger.MarkPaid(db, order.ID); err != nil {
		return nil, err
	}

	// The paid mark is the source of truth and must survive a failed cart
	// clear; a stale cart is a cosmetic inconsistency, never a reason to
	// re-attempt payment.
	if err := cartControllers.Clear(db, order.UserID); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Uint("user_id", order.UserID).
			Msg("cart clear failed after capture, order stays paid")
	}

	order.Status = models.OrderStatusPaid
	return order, nil
}

// POST /checkout/start
func StartCheckoutHandler(db *gorm.DB, gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		order, approvalURL, err := StartCheckout(c.Request.Context(), db, gw, userID)
		if err != nil {
			status, msg := mapCheckoutError(err)
			log.Error().Err(err).Uint("user_id", userID).Msg("start checkout failed")
			c.JSON(status, gin.H{"success": false, "error": msg})
			return
		}

		log.Info().Uint("order_id", order.ID).Str("paypal_order_id", *order.PayPalOrderID).
			Msg("checkout started")
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"approval_url": approvalURL,
			"order_id":     order.ID,
		})
	}
}

// POST /checkout/capture?order_id=<id>
// Reached from the processor's return redirect, which carries no session, so
// the order id alone identifies the checkout being finalized.
func CaptureHandler(db *gorm.DB, gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		idParam := c.Query("order_id")
		orderID, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid order id"})
			return
		}

		order, err := CompleteCheckout(c.Request.Context(), db, gw, uint(orderID))
		if err != nil {
			status, msg := mapCheckoutError(err)
			log.Error().Err(err).Uint64("order_id", orderID).Msg("capture failed")
			c.JSON(status, gin.H{"success": false, "error": msg})
			return
		}

		log.Info().Uint("order_id", order.ID).Msg("order captured")
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/order-success?order_id=%d", order.ID))
	}
}

// mapCheckoutError turns internal errors into a small stable set of
// user-facing messages. Processor error text stays in the server logs.
func mapCheckoutError(err error) (int, string) {
	var authErr *paypal.AuthError
	var createErr *paypal.CreateError
	var captureErr *paypal.CaptureError

	switch {
	case errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, ledger.ErrNotPending),
		errors.Is(err, ledger.ErrNotLinked),
		errors.Is(err, ledger.ErrAlreadyLinked):
		return http.StatusConflict, "Order is not awaiting payment"
	case errors.As(err, &authErr), errors.As(err, &createErr), errors.As(err, &captureErr):
		return http.StatusBadGateway, "Payment failed, please try again"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
