package orders_test

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/cart"
	"github.com/01moynul/storefront-api/internal/checkout"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/database/dbtest"
	"github.com/01moynul/storefront-api/internal/inventory"
	"github.com/01moynul/storefront-api/internal/models"
	"github.com/01moynul/storefront-api/internal/orders"
)

// placeOrder puts qty of product in the user's cart and checks out.
func placeOrder(t *testing.T, db *database.DB, user, product int64, qty int) models.Order {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx := context.Background()
	if _, err := cart.NewService(db, log, models.MaxQuantityPerLine).Add(ctx, user, product, qty); err != nil {
		t.Fatal(err)
	}
	o, err := checkout.NewService(db, log).Checkout(ctx, user, "cash")
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestListForUserPaginatesNewestFirst(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "a@x.io", models.RoleCustomer)
	other := dbtest.CreateUser(t, db, "b@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Notebook", "4.00", 100)

	var placed []int64
	for i := 1; i <= 3; i++ {
		placed = append(placed, placeOrder(t, db, user, p, i).ID)
	}
	placeOrder(t, db, other, p, 1)

	r := orders.NewReader(db)
	page, err := r.ListForUser(context.Background(), user, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Orders) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Orders[0].ID != placed[2] || page.Orders[1].ID != placed[1] {
		t.Fatalf("order ids = %d, %d", page.Orders[0].ID, page.Orders[1].ID)
	}
	if len(page.Orders[0].Lines) != 1 || page.Orders[0].Lines[0].Quantity != 3 {
		t.Fatalf("lines = %+v", page.Orders[0].Lines)
	}

	page, err = r.ListForUser(context.Background(), user, 2, 2)
	if err != nil || len(page.Orders) != 1 || page.Orders[0].ID != placed[0] {
		t.Fatalf("second page = %+v, %v", page, err)
	}

	page, err = r.ListForUser(context.Background(), user, 0, 0)
	if err != nil || page.Page != 1 || page.PageSize != orders.DefaultPageSize {
		t.Fatalf("defaults = %+v, %v", page, err)
	}
}

func TestListForUserPastLastPageIsEmpty(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "a@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Notebook", "4.00", 10)
	placeOrder(t, db, user, p, 1)

	r := orders.NewReader(db)
	for _, page := range []int{2, math.MaxInt} {
		got, err := r.ListForUser(context.Background(), user, page, 20)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if got.Total != 1 || len(got.Orders) != 0 || got.Page != page {
			t.Fatalf("page %d = %+v", page, got)
		}
	}
}

func TestGetScopesToOwner(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.CreateUser(t, db, "a@x.io", models.RoleCustomer)
	other := dbtest.CreateUser(t, db, "b@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Pencil", "0.75", 10)
	o := placeOrder(t, db, owner, p, 4)

	r := orders.NewReader(db)
	got, err := r.Get(context.Background(), owner, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Total.Equal(decimal.NewFromInt(3)) || got.Lines[0].ProductName != "Pencil" {
		t.Fatalf("order = %+v", got)
	}
	if _, err := r.Get(context.Background(), other, o.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("other user read: %v", err)
	}
}

func TestDeletedProductShowsPlaceholder(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "a@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Discontinued", "9.99", 2)
	o := placeOrder(t, db, user, p, 2)

	if err := inventory.NewService(db, zaptest.NewLogger(t)).DeleteProduct(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := orders.NewReader(db).Get(ctx, user, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	l := got.Lines[0]
	if l.ProductID != nil || l.ProductName != models.DeletedProductName {
		t.Fatalf("line = %+v", l)
	}
	if !l.UnitPrice.Equal(decimal.RequireFromString("9.99")) || !l.Subtotal.Equal(decimal.RequireFromString("19.98")) {
		t.Fatalf("frozen amounts lost: %+v", l)
	}
}

func TestDeletingUserKeepsOrders(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "gone@x.io", models.RoleCustomer)
	p := dbtest.CreateProduct(t, db, "Scarf", "18.00", 5)
	o := placeOrder(t, db, user, p, 1)

	db.MustExec(`DELETE FROM users WHERE id = ?`, user)

	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM orders WHERE id = ? AND user_id IS NULL`, o.ID); n != 1 {
		t.Fatalf("order not retained with null user")
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM order_lines WHERE order_id = ?`, o.ID); n != 1 {
		t.Fatalf("order lines lost")
	}
	if n := dbtest.Count(t, db, `SELECT COUNT(*) FROM carts`); n != 0 {
		t.Fatalf("cart should cascade away")
	}
}
