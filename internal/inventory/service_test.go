package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database/dbtest"
	"github.com/01moynul/storefront-api/internal/inventory"
)

func ptr[T any](v T) *T { return &v }

func TestAdjustStock(t *testing.T) {
	db := dbtest.New(t)
	svc := inventory.NewService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	id := dbtest.CreateProduct(t, db, "Desk", "120.00", 5)

	tests := []struct {
		op   inventory.StockOp
		qty  int
		want int
	}{
		{inventory.StockAdd, 3, 8},
		{inventory.StockSubtract, 2, 6},
		{inventory.StockSubtract, 50, 0},
		{inventory.StockSet, 7, 7},
	}
	for _, tt := range tests {
		change, err := svc.AdjustStock(ctx, id, tt.op, tt.qty)
		if err != nil {
			t.Fatalf("%s %d: %v", tt.op, tt.qty, err)
		}
		if change.Current != tt.want || dbtest.Stock(t, db, id) != tt.want {
			t.Fatalf("%s %d: stock = %d, want %d", tt.op, tt.qty, change.Current, tt.want)
		}
	}

	if _, err := svc.AdjustStock(ctx, id, "multiply", 2); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("unknown op: %v", err)
	}
	if _, err := svc.AdjustStock(ctx, id, inventory.StockAdd, -1); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("negative qty: %v", err)
	}
	if _, err := svc.AdjustStock(ctx, 9999, inventory.StockAdd, 1); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("missing product: %v", err)
	}
	if got := dbtest.Stock(t, db, id); got != 7 {
		t.Errorf("rejected adjustments changed stock to %d", got)
	}
}

func TestCreateProduct(t *testing.T) {
	db := dbtest.New(t)
	svc := inventory.NewService(db, zaptest.NewLogger(t))
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, inventory.NewProduct{
		Name:     "Oak Side Table",
		Price:    decimal.RequireFromString("89.90"),
		Stock:    4,
		Category: ptr("furniture"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Slug != "oak-side-table" || !p.Price.Equal(decimal.RequireFromString("89.9")) || p.Stock != 4 {
		t.Fatalf("created = %+v", p)
	}

	_, err = svc.CreateProduct(ctx, inventory.NewProduct{Name: "Oak side table", Price: decimal.NewFromInt(1)})
	if !apperr.Is(err, apperr.Conflict) {
		t.Errorf("duplicate slug: %v", err)
	}

	bad := []inventory.NewProduct{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "Neg", Price: decimal.NewFromInt(-1)},
		{Name: "Fraction", Price: decimal.RequireFromString("1.999")},
		{Name: "Minus stock", Price: decimal.NewFromInt(1), Stock: -1},
		{Name: "!!!", Price: decimal.NewFromInt(1)},
	}
	for _, in := range bad {
		if _, err := svc.CreateProduct(ctx, in); !apperr.Is(err, apperr.InvalidInput) {
			t.Errorf("%+v: %v", in, err)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	db := dbtest.New(t)
	svc := inventory.NewService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	id := dbtest.CreateProduct(t, db, "Chair", "40.00", 2)
	dbtest.CreateProduct(t, db, "Stool", "20.00", 2)

	price := decimal.RequireFromString("35.50")
	p, err := svc.UpdateProduct(ctx, id, inventory.ProductPatch{Name: ptr("Lounge Chair"), Price: &price, Stock: ptr(9)})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Lounge Chair" || p.Slug != "lounge-chair" || !p.Price.Equal(price) || p.Stock != 9 {
		t.Fatalf("updated = %+v", p)
	}
	if p.Color != nil {
		t.Errorf("unset field changed: color = %v", *p.Color)
	}

	if _, err := svc.UpdateProduct(ctx, id, inventory.ProductPatch{}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("empty patch: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, id, inventory.ProductPatch{Name: ptr("")}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, id, inventory.ProductPatch{Stock: ptr(-3)}); !apperr.Is(err, apperr.InvalidInput) {
		t.Errorf("negative stock: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, id, inventory.ProductPatch{Name: ptr("Stool")}); !apperr.Is(err, apperr.Conflict) {
		t.Errorf("rename onto existing slug: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, 9999, inventory.ProductPatch{Color: ptr("red")}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("missing product: %v", err)
	}
}

func TestDeleteProductRefusedWhileInCart(t *testing.T) {
	db := dbtest.New(t)
	svc := inventory.NewService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "u@x.io", "customer")
	id := dbtest.CreateProduct(t, db, "Rug", "60.00", 3)

	now := time.Now().UTC()
	res := db.MustExec(`INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)`, user, now, now)
	cartID, _ := res.LastInsertId()
	db.MustExec(`INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`, cartID, id, now, now)

	if err := svc.DeleteProduct(ctx, id); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("delete while in cart: %v", err)
	}

	db.MustExec(`DELETE FROM cart_items`)
	if err := svc.DeleteProduct(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProduct(ctx, id); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
