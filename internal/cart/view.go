package cart

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/models"
)

// View is the cart joined with live product data.
type View struct {
	Lines      []models.CartLine
	Total      decimal.Decimal
	LineCount  int
	OutOfStock int // lines whose quantity exceeds live stock
}

// Validation is the checkout pre-flight result.
type Validation struct {
	Valid      bool
	Empty      bool
	Total      decimal.Decimal
	LineCount  int
	Shortfalls []apperr.Shortfall
}

// LoadLines reads the user's cart lines joined with their products. With
// lock set, the product rows stay exclusively locked until q's transaction
// ends; rows are then read in product id order.
func LoadLines(ctx context.Context, q database.Querier, d database.Dialect, userID int64, lock bool) ([]models.CartLine, error) {
	orderBy := "ci.id"
	if lock {
		orderBy = "ci.product_id"
	}
	query := fmt.Sprintf(`SELECT ci.id, ci.product_id, p.name, p.image, p.price, p.stock, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = ?
		ORDER BY %s`, orderBy)
	if lock {
		query = d.ForUpdate(query)
	}

	var lines []models.CartLine
	if err := sqlx.SelectContext(ctx, q, &lines, query, userID); err != nil {
		return nil, err
	}
	return lines, nil
}

// Shortfalls lists every line whose quantity exceeds live stock.
func Shortfalls(lines []models.CartLine) []apperr.Shortfall {
	var out []apperr.Shortfall
	for _, l := range lines {
		if l.StockSufficient() {
			continue
		}
		out = append(out, apperr.Shortfall{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Requested: l.Quantity,
			InCart:    l.Quantity,
			Resulting: l.Quantity,
			Available: l.Stock,
			Shortfall: l.Quantity - l.Stock,
		})
	}
	return out
}

// View returns the cart with live prices. Stock shortages are flagged, not rejected.
func (s *Service) View(ctx context.Context, userID int64) (View, error) {
	lines, err := LoadLines(ctx, s.db, s.db.Dialect, userID, false)
	if err != nil {
		return View{}, database.Classify(err, "view cart")
	}
	v := View{Lines: lines, Total: total(lines), LineCount: len(lines)}
	for _, l := range lines {
		if !l.StockSufficient() {
			v.OutOfStock++
		}
	}
	return v, nil
}

// ValidateForCheckout re-reads the cart against live stock.
func (s *Service) ValidateForCheckout(ctx context.Context, userID int64) (Validation, error) {
	lines, err := LoadLines(ctx, s.db, s.db.Dialect, userID, false)
	if err != nil {
		return Validation{}, database.Classify(err, "validate cart")
	}
	if len(lines) == 0 {
		return Validation{Empty: true, Total: decimal.Zero}, nil
	}
	shortfalls := Shortfalls(lines)
	return Validation{
		Valid:      len(shortfalls) == 0,
		Total:      total(lines),
		LineCount:  len(lines),
		Shortfalls: shortfalls,
	}, nil
}
