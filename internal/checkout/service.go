// Package checkout turns a user's cart into an order in one unit of work.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/cart"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/models"
)

// Service runs checkouts.
type Service struct {
	db  *database.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(db *database.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Checkout converts the user's cart into a completed order.
//
// Product rows are locked before the cart is validated against stock, so
// concurrent checkouts on the same product are serialized and can never
// oversell. Either the order is created, stock is decremented and the cart
// is emptied, or nothing changes. Once started it runs to completion even
// if ctx is cancelled; only the engine's lock-wait timeout ends it early.
func (s *Service) Checkout(ctx context.Context, userID int64, paymentMethod string) (models.Order, error) {
	method, ok := models.ParsePaymentMethod(paymentMethod)
	if !ok {
		return models.Order{}, apperr.New(apperr.InvalidPaymentMethod,
			"payment method %q is not one of %v", paymentMethod, models.PaymentMethods)
	}

	a := newAttempt(userID, s.log)
	ctx = context.WithoutCancel(ctx)

	var order models.Order
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		// 1. --- Lock: read the cart with its product rows locked ---
		lines, err := cart.LoadLines(ctx, tx, s.db.Dialect, userID, true)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			a.advance(StateAborted)
			return apperr.New(apperr.EmptyCart, "cart is empty")
		}
		a.advance(StateLocked)

		// 2. --- Validate every line against locked stock ---
		if shortfalls := cart.Shortfalls(lines); len(shortfalls) > 0 {
			a.advance(StateAborted)
			return apperr.Stock(apperr.InsufficientStockAtCheckout,
				fmt.Sprintf("%d item(s) exceed available stock", len(shortfalls)), shortfalls...)
		}
		a.advance(StateValidated)

		// 3. --- Commit work ---
		order, err = s.placeOrder(ctx, tx, userID, method, lines)
		return err
	})
	if err != nil {
		a.abort()
		s.logAbort(userID, err)
		return models.Order{}, err
	}
	a.advance(StateCommitted)

	s.log.Info("checkout committed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("lines", len(order.Lines)))
	return order, nil
}

// placeOrder writes the order, freezes line prices, decrements stock and
// empties the cart. It must run inside the locking transaction.
func (s *Service) placeOrder(ctx context.Context, tx *sqlx.Tx, userID int64, method models.PaymentMethod, lines []models.CartLine) (models.Order, error) {
	// a. --- Total at the locked prices ---
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	// b. --- Order row ---
	now := s.now().UTC().Truncate(time.Second)
	order := models.Order{
		UserID:        &userID,
		Total:         total,
		PaymentMethod: method,
		Status:        models.OrderCompleted,
		CreatedAt:     now,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, total, payment_method, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, order.Total, order.PaymentMethod, order.Status, order.CreatedAt)
	if err != nil {
		return order, err
	}
	if order.ID, err = res.LastInsertId(); err != nil {
		return order, err
	}

	for _, l := range lines {
		// c. --- Order line with frozen price ---
		ol := models.OrderLine{
			OrderID:     order.ID,
			ProductID:   &l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
			ProductName: l.ProductName,
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)`,
			ol.OrderID, l.ProductID, ol.Quantity, ol.UnitPrice, ol.Subtotal)
		if err != nil {
			return order, err
		}
		if ol.ID, err = res.LastInsertId(); err != nil {
			return order, err
		}

		// d. --- Conditional decrement ---
		if err := decrementStock(ctx, tx, l, now); err != nil {
			return order, err
		}

		order.Lines = append(order.Lines, ol)
	}

	// e. --- Empty the cart ---
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = ?)`, userID); err != nil {
		return order, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE carts SET updated_at = ? WHERE user_id = ?`, now, userID)
	return order, err
}

// decrementStock takes the line's quantity off the product only if enough is
// left. Otherwise the rejection carries the stock found inside tx.
func decrementStock(ctx context.Context, tx *sqlx.Tx, l models.CartLine, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
		l.Quantity, now, l.ProductID, l.Quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil || n == 1 {
		return err
	}

	var available int
	err = tx.GetContext(ctx, &available, `SELECT stock FROM products WHERE id = ?`, l.ProductID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return apperr.Stock(apperr.InsufficientStockAtCheckout,
		fmt.Sprintf("stock for %q changed during checkout", l.ProductName),
		apperr.Shortfall{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Requested: l.Quantity,
			InCart:    l.Quantity,
			Resulting: l.Quantity,
			Available: available,
			Shortfall: l.Quantity - available,
		})
}

func (s *Service) logAbort(userID int64, err error) {
	kind := apperr.KindOf(err)
	fields := []zap.Field{
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
	}
	switch kind {
	case apperr.StorageFailure:
		s.log.Error("checkout rolled back", append(fields, zap.Error(err))...)
	case apperr.Contention:
		s.log.Warn("checkout timed out waiting for locks", fields...)
	default:
		s.log.Warn("checkout rejected", append(fields, zap.Int("shortfalls", len(apperr.ShortfallsOf(err))))...)
	}
}
