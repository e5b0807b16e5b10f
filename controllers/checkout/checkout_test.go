package checkoutControllers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cartControllers "github.com/manch118/fasteStore/controllers/cart"
	"github.com/manch118/fasteStore/ledger"
	"github.com/manch118/fasteStore/models"
	"github.com/manch118/fasteStore/paypal"
)

type fakeGateway struct {
	createFn  func(orderID uint, total float64) (string, string, error)
	captureFn func(remoteID string) error

	createCalls  int
	captureCalls int
}

func (f *fakeGateway) CreateOrder(_ context.Context, orderID uint, total float64) (string, string, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(orderID, total)
	}
	return fmt.Sprintf("PP-%d", orderID), "https://paypal.test/approve", nil
}

func (f *fakeGateway) CaptureOrder(_ context.Context, remoteID string) error {
	f.captureCalls++
	if f.captureFn != nil {
		return f.captureFn(remoteID)
	}
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func seedCart(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	items := []models.CartItem{
		{UserID: userID, ProductID: 1, Name: "Alpha", Price: 10.00, Quantity: 2, AddedAt: time.Now()},
		{UserID: userID, ProductID: 2, Name: "Beta", Price: 5.00, Quantity: 1, AddedAt: time.Now()},
	}
	require.NoError(t, db.Create(&items).Error)
}

func TestStartCheckoutEmptyCart(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{}

	_, _, err := StartCheckout(context.Background(), db, gw, 1)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Zero(t, gw.createCalls)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestStartCheckoutSnapshotsCart(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{}

	order, approvalURL, err := StartCheckout(context.Background(), db, gw, 1)
	require.NoError(t, err)
	require.Equal(t, "https://paypal.test/approve", approvalURL)
	require.InDelta(t, 25.00, order.Total, 1e-9)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotNil(t, order.PayPalOrderID)
	require.Equal(t, fmt.Sprintf("PP-%d", order.ID), *order.PayPalOrderID)

	stored, err := ledger.Get(db, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)

	// cart must be untouched until a confirmed capture
	items, err := cartControllers.Items(db, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestStartCheckoutGatewayRejectRollsBack(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{
		createFn: func(uint, float64) (string, string, error) {
			return "", "", &paypal.CreateError{Status: 422, Message: "INVALID_REQUEST"}
		},
	}

	_, _, err := StartCheckout(context.Background(), db, gw, 1)
	var createErr *paypal.CreateError
	require.ErrorAs(t, err, &createErr)
	require.Equal(t, 422, createErr.Status)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)

	var orderItems int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&orderItems).Error)
	require.Zero(t, orderItems)

	items, err := cartControllers.Items(db, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestCompleteCheckoutSuccessClearsCart(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{}

	order, _, err := StartCheckout(context.Background(), db, gw, 1)
	require.NoError(t, err)

	done, err := CompleteCheckout(context.Background(), db, gw, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, done.Status)
	require.Equal(t, 1, gw.captureCalls)

	stored, err := ledger.Get(db, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, stored.Status)

	items, err := cartControllers.Items(db, 1)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCompleteCheckoutCaptureRejectKeepsCart(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{
		captureFn: func(string) error {
			return &paypal.CaptureError{Status: 400, Message: "CAPTURE_DENIED"}
		},
	}

	order, _, err := StartCheckout(context.Background(), db, gw, 1)
	require.NoError(t, err)

	_, err = CompleteCheckout(context.Background(), db, gw, order.ID)
	var captureErr *paypal.CaptureError
	require.ErrorAs(t, err, &captureErr)

	stored, err := ledger.Get(db, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusFailed, stored.Status)

	// user can retry checkout with the same cart
	items, err := cartControllers.Items(db, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestCartClearFailureKeepsOrderPaid(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{}

	order, _, err := StartCheckout(context.Background(), db, gw, 1)
	require.NoError(t, err)

	// make the cart clear fail after the capture is confirmed
	require.NoError(t, db.Migrator().DropTable(&models.CartItem{}))

	done, err := CompleteCheckout(context.Background(), db, gw, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, done.Status)

	stored, err := ledger.Get(db, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, stored.Status)

	// a replayed callback must see the paid order and never capture again
	_, err = CompleteCheckout(context.Background(), db, gw, order.ID)
	require.ErrorIs(t, err, ledger.ErrNotPending)
	require.Equal(t, 1, gw.captureCalls)
}

func TestCompleteCheckoutNotPending(t *testing.T) {
	db := testDB(t)
	seedCart(t, db, 1)
	gw := &fakeGateway{}

	order, _, err := StartCheckout(context.Background(), db, gw, 1)
	require.NoError(t, err)

	_, err = CompleteCheckout(context.Background(), db, gw, order.ID)
	require.NoError(t, err)

	// replayed callback must not capture twice
	_, err = CompleteCheckout(context.Background(), db, gw, order.ID)
	require.ErrorIs(t, err, ledger.ErrNotPending)
	require.Equal(t, 1, gw.captureCalls)
}

func TestCompleteCheckoutUnknownOrder(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{}

	_, err := CompleteCheckout(context.Background(), db, gw, 99)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	require.Zero(t, gw.captureCalls)
}

func TestCompleteCheckoutUnlinkedOrder(t *testing.T) {
	db := testDB(t)

	order, err := ledger.Create(db, 1, []ledger.LineItem{{ProductID: 1, Name: "Alpha", Price: 10, Quantity: 1}})
	require.NoError(t, err)

	gw := &fakeGateway{}
	_, err = CompleteCheckout(context.Background(), db, gw, order.ID)
	require.ErrorIs(t, err, ledger.ErrNotLinked)
	require.Zero(t, gw.captureCalls)
}
