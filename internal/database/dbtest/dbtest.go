// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap/zaptest"

	"github.com/01moynul/storefront-api/internal/database"
)

// New opens a migrated sqlite database in a temp dir. It is closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := database.Open(context.Background(), "sqlite", dsn, database.Options{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t testing.TB, db *database.DB, email, role string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (email, name, role, created_at) VALUES (?, ?, ?, ?)`,
		email, email, role, time.Now().UTC())
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// CreateProduct inserts a product and returns its id. price is a decimal string such as "19.99".
func CreateProduct(t testing.TB, db *database.DB, name, price string, stock int) int64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := db.Exec(`INSERT INTO products (name, slug, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, name, slug.Make(name), price, stock, now, now)
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// Stock reads the current stock of a product.
func Stock(t testing.TB, db *database.DB, productID int64) int {
	t.Helper()
	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id = ?`, productID); err != nil {
		t.Fatalf("read stock of %d: %v", productID, err)
	}
	return stock
}

// SetPrice overwrites a product's price outside of any service.
func SetPrice(t testing.TB, db *database.DB, productID int64, price string) {
	t.Helper()
	if _, err := db.Exec(`UPDATE products SET price = ? WHERE id = ?`, price, productID); err != nil {
		t.Fatalf("set price of %d: %v", productID, err)
	}
}

// Count runs a COUNT(*) query.
func Count(t testing.TB, db *database.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.Get(&n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
