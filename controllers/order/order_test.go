package orderControllers

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

var testPricing = cartControllers.PricingConfig{DeliveryFee: 500, FreeDeliveryThreshold: 50000}

var testInput = CheckoutInput{
	CustomerName:  "Ngozi Eze",
	CustomerEmail: "ngozi@example.com",
	CustomerPhone: "+2348012345678",
	PaymentMethod: "paystack",
}

func TestGenerateOrderRefFormat(t *testing.T) {
	ref := generateOrderRef()
	if !strings.HasPrefix(ref, "ORD-") {
		t.Errorf("ref %q lacks ORD- prefix", ref)
	}
	if got := len(strings.Split(ref, "-")); got != 4 {
		t.Errorf("ref %q has %d segments, want 4", ref, got)
	}
	if ref == generateOrderRef() {
		t.Error("two refs generated back to back collided")
	}
}

func TestCreateOrderSnapshotsPricesAndDecrementsStock(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(11, 3, 7, 2))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "sale_price", "stock"}).
			AddRow(7, "Yam Tuber", 1000.0, 0.0, 5))
	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// only the snapshotted line is cleared, by id, so a line added after the
	// cart was read is not swept away
	mock.ExpectExec(`DELETE FROM "cart_items" WHERE id IN \(\$1\)`).
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := CreateOrder(db, cartControllers.UserActor("u1"), testInput, testPricing)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.TotalAmount != 2500 {
		t.Errorf("total %.2f, want 2500 (2x1000 + 500 delivery)", order.TotalAmount)
	}
	if order.DeliveryFee != 500 {
		t.Errorf("delivery fee %.2f, want 500", order.DeliveryFee)
	}
	if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("new order must start pending/pending, got %s/%s", order.Status, order.PaymentStatus)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice != 1000 || order.Items[0].Subtotal != 2000 {
		t.Errorf("snapshot lines wrong: %+v", order.Items)
	}
	if order.UserID == nil || *order.UserID != "u1" {
		t.Error("order not attributed to the user")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestCreateOrderRollsBackWhenAnyLineLosesStock(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(11, 3, 7, 2).
			AddRow(12, 3, 8, 1))

	mock.ExpectBegin()
	// first line passes and its stock is decremented
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "sale_price", "stock"}).
			AddRow(7, "Yam Tuber", 1000.0, 0.0, 5))
	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// second line sold out since the cart was built
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "sale_price", "stock"}).
			AddRow(8, "Palm Oil 1L", 2500.0, 0.0, 0))
	mock.ExpectRollback()

	_, err := CreateOrder(db, cartControllers.UserActor("u1"), testInput, testPricing)

	var stock *StockChangedError
	if !errors.As(err, &stock) {
		t.Fatalf("got %v, want StockChangedError", err)
	}
	if stock.ProductID != 8 || stock.Available != 0 {
		t.Errorf("error payload %+v, want product 8 with 0 available", stock)
	}
	// no order insert, no cart clear: the transaction rolled everything back
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}))

	if _, err := CreateOrder(db, cartControllers.UserActor("u1"), testInput, testPricing); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("got %v, want ErrCartEmpty", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestUpdateOrderStatusRejectsInvalidTransition(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_ref = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_ref", "status", "payment_status"}).
			AddRow(42, "ORD-20260901-101500-ABCDEF", "delivered", "paid"))
	mock.ExpectRollback()

	_, err := UpdateOrderStatus(db, "ORD-20260901-101500-ABCDEF", models.OrderStatusShipped)

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != models.OrderStatusDelivered || invalid.To != models.OrderStatusShipped {
		t.Errorf("error payload %+v", invalid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestUpdateOrderStatusAllowsValidTransition(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_ref = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_ref", "status", "payment_status"}).
			AddRow(42, "ORD-20260901-101500-ABCDEF", "confirmed", "paid"))
	mock.ExpectExec(`UPDATE "orders" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := UpdateOrderStatus(db, "ORD-20260901-101500-ABCDEF", models.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if order.Status != models.OrderStatusProcessing {
		t.Errorf("status %s, want processing", order.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}
