package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/cart"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/database/dbtest"
	"github.com/01moynul/storefront-api/internal/models"
)

func setup(t *testing.T) (*database.DB, *cart.Service, int64) {
	t.Helper()
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "buyer@x.io", models.RoleCustomer)
	return db, cart.NewService(db, zaptest.NewLogger(t), models.MaxQuantityPerLine), user
}

func TestAddMergesIntoOneLine(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Mug", "12.50", 20)

	if _, err := svc.Add(ctx, user, p, 2); err != nil {
		t.Fatal(err)
	}
	line, err := svc.Add(ctx, user, p, 3)
	if err != nil {
		t.Fatal(err)
	}
	if line.Quantity != 5 || !line.Subtotal().Equal(decimal.RequireFromString("62.50")) {
		t.Fatalf("line = %+v subtotal %s", line, line.Subtotal())
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM cart_items WHERE product_id = ?`, p); n != 1 {
		t.Fatalf("cart_items rows = %d, want 1", n)
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM carts WHERE user_id = ?`, user); n != 1 {
		t.Fatalf("carts = %d, want 1", n)
	}
}

func TestAddRejectsOverStockWithoutMutation(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Lamp", "30.00", 5)

	if _, err := svc.Add(ctx, user, p, 3); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Add(ctx, user, p, 3)
	if !apperr.Is(err, apperr.InsufficientStock) {
		t.Fatalf("err = %v, want insufficient_stock", err)
	}
	sf := apperr.ShortfallsOf(err)
	if len(sf) != 1 || sf[0].Available != 5 || sf[0].InCart != 3 || sf[0].Requested != 3 || sf[0].Resulting != 6 {
		t.Fatalf("shortfall = %+v", sf)
	}

	v, err := svc.View(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Lines) != 1 || v.Lines[0].Quantity != 3 {
		t.Fatalf("cart after rejection = %+v", v.Lines)
	}
	if dbtest.Stock(t, db, p) != 5 {
		t.Fatal("adding to cart must not touch stock")
	}
}

func TestAddValidation(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Pen", "1.00", 5000)

	if _, err := svc.Add(ctx, user, p, 0); !apperr.Is(err, apperr.QuantityInvalid) {
		t.Errorf("zero: %v", err)
	}
	if _, err := svc.Add(ctx, user, p, 1000); !apperr.Is(err, apperr.QuantityInvalid) {
		t.Errorf("over cap: %v", err)
	}
	if _, err := svc.Add(ctx, user, 424242, 1); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("missing product: %v", err)
	}
}

func TestSetQuantityClampsToStock(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Plate", "8.00", 5)

	line, err := svc.Add(ctx, user, p, 1)
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.SetQuantity(ctx, user, line.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Adjusted || res.Line.Quantity != 5 || res.Removed {
		t.Fatalf("result = %+v", res)
	}

	res, err = svc.SetQuantity(ctx, user, line.ID, 2)
	if err != nil || res.Adjusted || res.Line.Quantity != 2 {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
}

func TestSetQuantityClampToZeroRemoves(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Bowl", "8.00", 2)

	line, err := svc.Add(ctx, user, p, 2)
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`UPDATE products SET stock = 0 WHERE id = ?`, p)

	res, err := svc.SetQuantity(ctx, user, line.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Adjusted || !res.Removed {
		t.Fatalf("result = %+v", res)
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM cart_items`); n != 0 {
		t.Fatalf("cart_items = %d", n)
	}
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Cup", "4.00", 9)

	line, _ := svc.Add(ctx, user, p, 4)
	res, err := svc.SetQuantity(ctx, user, line.ID, 0)
	if err != nil || !res.Removed {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
	if _, err := svc.SetQuantity(ctx, user, line.ID, 0); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("second removal: %v", err)
	}
}

func TestOtherUsersLinesAreNotFound(t *testing.T) {
	db, svc, owner := setup(t)
	ctx := context.Background()
	intruder := dbtest.CreateUser(t, db, "other@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Vase", "25.00", 3)

	line, err := svc.Add(ctx, owner, p, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SetQuantity(ctx, intruder, line.ID, 2); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("set by other user: %v", err)
	}
	if err := svc.Remove(ctx, intruder, line.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("remove by other user: %v", err)
	}
	if n, err := svc.Clear(ctx, intruder); err != nil || n != 0 {
		t.Errorf("clear by other user removed %d, err %v", n, err)
	}

	v, _ := svc.View(ctx, owner)
	if len(v.Lines) != 1 || v.Lines[0].Quantity != 1 {
		t.Fatalf("owner cart changed: %+v", v.Lines)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()

	if n, err := svc.Clear(ctx, user); err != nil || n != 0 {
		t.Fatalf("clear without cart = %d, %v", n, err)
	}

	a := dbtest.CreateProduct(t, db, "A", "1.00", 5)
	b := dbtest.CreateProduct(t, db, "B", "2.00", 5)
	svc.Add(ctx, user, a, 1)
	svc.Add(ctx, user, b, 1)

	if n, err := svc.Clear(ctx, user); err != nil || n != 2 {
		t.Fatalf("clear = %d, %v", n, err)
	}
	if n, err := svc.Clear(ctx, user); err != nil || n != 0 {
		t.Fatalf("second clear = %d, %v", n, err)
	}
}

func TestViewUsesLivePriceAndFlagsStock(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()
	a := dbtest.CreateProduct(t, db, "Towel", "10.00", 4)
	b := dbtest.CreateProduct(t, db, "Soap", "3.00", 10)

	svc.Add(ctx, user, a, 3)
	svc.Add(ctx, user, b, 2)
	dbtest.SetPrice(t, db, a, "12.00")
	db.MustExec(`UPDATE products SET stock = 1 WHERE id = ?`, a)

	v, err := svc.View(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Total.Equal(decimal.RequireFromString("42.00")) {
		t.Errorf("total = %s, want 42.00", v.Total)
	}
	if v.LineCount != 2 || v.OutOfStock != 1 {
		t.Errorf("summary = %d lines, %d out of stock", v.LineCount, v.OutOfStock)
	}
	if v.Lines[0].StockSufficient() || !v.Lines[1].StockSufficient() {
		t.Errorf("stock flags wrong: %+v", v.Lines)
	}
}

func TestValidateForCheckout(t *testing.T) {
	db, svc, user := setup(t)
	ctx := context.Background()

	val, err := svc.ValidateForCheckout(ctx, user)
	if err != nil || !val.Empty || val.Valid {
		t.Fatalf("empty cart validation = %+v, %v", val, err)
	}

	p := dbtest.CreateProduct(t, db, "Fork", "2.50", 6)
	svc.Add(ctx, user, p, 4)

	val, err = svc.ValidateForCheckout(ctx, user)
	if err != nil || !val.Valid || !val.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("validation = %+v, %v", val, err)
	}

	db.MustExec(`UPDATE products SET stock = 1 WHERE id = ?`, p)
	val, err = svc.ValidateForCheckout(ctx, user)
	if err != nil || val.Valid || len(val.Shortfalls) != 1 {
		t.Fatalf("validation = %+v, %v", val, err)
	}
	if sf := val.Shortfalls[0]; sf.ProductID != p || sf.Requested != 4 || sf.Available != 1 || sf.Shortfall != 3 {
		t.Fatalf("shortfall = %+v", sf)
	}
}

func TestAddForMissingUserIsNotFound(t *testing.T) {
	db, svc, _ := setup(t)
	p := dbtest.CreateProduct(t, db, "Mug", "12.50", 20)

	if _, err := svc.Add(context.Background(), 9999, p, 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("err = %v", err)
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM carts`); n != 0 {
		t.Fatalf("carts = %d", n)
	}
}
