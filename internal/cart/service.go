// Package cart applies user cart mutations against live inventory.
package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/inventory"
	"github.com/01moynul/storefront-api/internal/models"
)

// Service is the cart mutation service. Every method acts on one user's cart.
type Service struct {
	db         *database.DB
	log        *zap.Logger
	maxPerLine int
}

func NewService(db *database.DB, log *zap.Logger, maxPerLine int) *Service {
	return &Service{db: db, log: log, maxPerLine: maxPerLine}
}

// SetResult is the outcome of SetQuantity.
type SetResult struct {
	Line     models.CartLine
	Adjusted bool
	Removed  bool
}

// Add merges quantity of a product into the user's cart, creating the cart
// on first use. Insufficient stock rejects without changing anything.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) (models.CartLine, error) {
	if err := inventory.ValidateQuantity(quantity, s.maxPerLine); err != nil {
		return models.CartLine{}, err
	}

	var line models.CartLine
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		// 1. --- Lock the product row ---
		p, err := inventory.LockProduct(ctx, tx, s.db.Dialect, productID)
		if err != nil {
			return err
		}

		// 2. --- Get or create the cart ---
		cartID, err := s.ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		// 3. --- Find the existing line, if any ---
		var existing models.CartItem
		err = tx.GetContext(ctx, &existing,
			`SELECT id, cart_id, product_id, quantity, created_at, updated_at
			 FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
		found := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		// 4. --- Reservation check against locked stock ---
		qty, err := inventory.Check(inventory.Request{
			Mode:       inventory.ModeAdd,
			ProductID:  p.ID,
			Name:       p.Name,
			Requested:  quantity,
			Existing:   existing.Quantity,
			Available:  p.Stock,
			MaxPerLine: s.maxPerLine,
		})
		if err != nil {
			return err
		}

		// 5. --- Upsert the line ---
		now := time.Now().UTC()
		lineID := existing.ID
		if found {
			_, err = tx.ExecContext(ctx, `UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`, qty, now, lineID)
		} else {
			var res sql.Result
			res, err = tx.ExecContext(ctx,
				`INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				cartID, productID, qty, now, now)
			if err == nil {
				lineID, err = res.LastInsertId()
			}
		}
		if err != nil {
			return err
		}

		line = lineFromProduct(lineID, p, qty)
		return nil
	})
	if err != nil {
		return models.CartLine{}, err
	}

	s.log.Debug("cart line added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

// SetQuantity replaces a line's quantity. Zero removes the line. Quantities
// above live stock are clamped and reported as adjusted.
func (s *Service) SetQuantity(ctx context.Context, userID, lineID int64, quantity int) (SetResult, error) {
	if quantity == 0 {
		if err := s.Remove(ctx, userID, lineID); err != nil {
			return SetResult{}, err
		}
		return SetResult{Removed: true}, nil
	}
	if err := inventory.ValidateQuantity(quantity, s.maxPerLine); err != nil {
		return SetResult{}, err
	}

	var result SetResult
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		// 1. --- Ownership check. Someone else's line is simply not found ---
		var item models.CartItem
		err := tx.GetContext(ctx, &item,
			`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at
			 FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
			 WHERE ci.id = ? AND c.user_id = ?`, lineID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "cart item %d not found", lineID)
		}
		if err != nil {
			return err
		}

		// 2. --- Lock the product and decide ---
		p, err := inventory.LockProduct(ctx, tx, s.db.Dialect, item.ProductID)
		if err != nil {
			return err
		}
		decision, err := inventory.CheckOrClamp(inventory.Request{
			Mode:       inventory.ModeSet,
			ProductID:  p.ID,
			Name:       p.Name,
			Requested:  quantity,
			Existing:   item.Quantity,
			Available:  p.Stock,
			MaxPerLine: s.maxPerLine,
		})
		if err != nil {
			return err
		}

		// 3. --- Apply ---
		result.Adjusted = decision.Adjusted
		if decision.Remove {
			result.Removed = true
			_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, item.ID)
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`,
			decision.Quantity, time.Now().UTC(), item.ID)
		result.Line = lineFromProduct(item.ID, p, decision.Quantity)
		return err
	})
	if err != nil {
		return SetResult{}, err
	}
	return result, nil
}

// Remove deletes one line from the user's cart.
func (s *Service) Remove(ctx context.Context, userID, lineID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)`,
		lineID, userID)
	if err != nil {
		return database.Classify(err, "remove cart item")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.Classify(err, "remove cart item")
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "cart item %d not found", lineID)
	}
	return nil
}

// Clear empties the user's cart and reports how many lines were removed.
// An already empty (or missing) cart removes 0.
func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = ?)`, userID)
	if err != nil {
		return 0, database.Classify(err, "clear cart")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, database.Classify(err, "clear cart")
	}
	return n, nil
}

// ensureCart returns the user's cart id, creating the cart if needed.
func (s *Service) ensureCart(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx,
		s.db.Dialect.SkipDuplicate(`INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)`),
		userID, now, now)
	if database.IsForeignKey(err) {
		return 0, apperr.Wrap(apperr.NotFound, err, "user %d not found", userID)
	}
	if err != nil {
		return 0, err
	}
	var cartID int64
	err = tx.GetContext(ctx, &cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	return cartID, err
}

func lineFromProduct(lineID int64, p models.Product, qty int) models.CartLine {
	return models.CartLine{
		ID:          lineID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Image:       p.Image,
		UnitPrice:   p.Price,
		Stock:       p.Stock,
		Quantity:    qty,
	}
}

// total sums line subtotals at live prices.
func total(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
