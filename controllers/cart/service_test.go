package cartControllers

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	db, mock := newTestDB(t)

	if _, err := AddItem(db, UserActor("u1"), 1, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("got %v, want ErrInvalidQuantity", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}

func TestAddItemOutOfStockWritesNothing(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "stock"}).
			AddRow(7, "Yam Tuber", 1200.0, 2))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}))

	_, err := AddItem(db, UserActor("u1"), 7, 5)

	var oos *OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("got %v, want OutOfStockError", err)
	}
	if oos.Available != 2 || oos.Requested != 5 {
		t.Errorf("error payload %+v, want requested 5 available 2", oos)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("cart must not be written on stock failure: %v", err)
	}
}

func TestAddItemMergeExceedingStockFails(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "stock"}).
			AddRow(7, "Yam Tuber", 1200.0, 4))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(11, 3, 7, 3))

	// 3 already in cart, 2 more would exceed stock of 4
	_, err := AddItem(db, UserActor("u1"), 7, 2)

	var oos *OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("got %v, want OutOfStockError", err)
	}
	if oos.Requested != 5 {
		t.Errorf("requested %d, want combined quantity 5", oos.Requested)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("line must not be updated on stock failure: %v", err)
	}
}

func TestRemoveItemMissingCartIsSilent(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id"}))

	if err := RemoveItem(db, GuestActor("guest-abc"), 9); err != nil {
		t.Fatalf("got %v, want nil for absent cart", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestTransferGuestCartClampsMergedQuantityToStock(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	// guest cart: 5 of product 7
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(1, "guest-abc", true))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(21, 1, 7, 5))
	// user cart already holds 3 of the same product; only 6 are in stock
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "stock"}).
			AddRow(7, "Yam Tuber", 1200.0, 6))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(11, 3, 7, 3))
	// 3 + 5 would be 8: the written quantity is clamped to the stock of 6
	mock.ExpectExec(`UPDATE "cart_items" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 6, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "carts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mergedFlag, err := TransferGuestCart(db, "guest-abc", "u1")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !mergedFlag {
		t.Error("merged = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestTransferGuestCartDropsLinesForMissingProducts(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(1, "guest-abc", true))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
			AddRow(21, 1, 9, 2))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id", "guest"}).
			AddRow(3, "u1", false))
	// the product was removed from the catalog; nothing is written
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "regular_price", "stock"}))
	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "carts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := TransferGuestCart(db, "guest-abc", "u1"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestTransferGuestCartNoGuestCartIsNoOp(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "owner_id"}))
	mock.ExpectCommit()

	merged, err := TransferGuestCart(db, "guest-abc", "u1")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if merged {
		t.Error("merged = true, want false when guest cart is gone")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("%v", err)
	}
}
