package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantityPerLine is the default cap on a single cart line.
const MaxQuantityPerLine = 999

// Cart defines the struct for the 'carts' table. One per user, created lazily.
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table.
// The cart never stores a price; it is always read from the product.
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	CartID    int64     `json:"cartId" db:"cart_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLine is a cart item joined with its live product data.
type CartLine struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"name" db:"name"`
	Image       *string         `json:"image,omitempty" db:"image"`
	UnitPrice   decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// Subtotal is quantity times the live unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockSufficient reports whether live stock covers the line.
func (l CartLine) StockSufficient() bool {
	return l.Quantity <= l.Stock
}
