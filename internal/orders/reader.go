// Package orders reads a user's order history. Prices come from the frozen
// order lines, never from the live catalog.
package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/models"
)

const (
	DefaultPageSize = database.DefaultPageSize
	MaxPageSize     = database.MaxPageSize
)

const orderColumns = `id, user_id, total, payment_method, status, created_at`

type Reader struct {
	db *database.DB
}

func NewReader(db *database.DB) *Reader {
	return &Reader{db: db}
}

// Page is one page of a user's orders, newest first.
type Page struct {
	Orders   []models.Order `json:"orders"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Total    int            `json:"total"`
}

// ListForUser returns a page of orders with their lines.
func (r *Reader) ListForUser(ctx context.Context, userID int64, page, pageSize int) (Page, error) {
	page, pageSize = database.NormalizePage(page, pageSize)

	out := Page{Page: page, PageSize: pageSize, Orders: []models.Order{}}
	if err := r.db.GetContext(ctx, &out.Total, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID); err != nil {
		return Page{}, database.Classify(err, "count orders")
	}
	offset, ok := database.PageOffset(page, pageSize, out.Total)
	if !ok {
		return out, nil
	}

	err := r.db.SelectContext(ctx, &out.Orders,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, pageSize, offset)
	if err != nil {
		return Page{}, database.Classify(err, "list orders")
	}
	if err := r.attachLines(ctx, out.Orders); err != nil {
		return Page{}, err
	}
	return out, nil
}

// Get returns one of the user's orders. Another user's order is not found.
func (r *Reader) Get(ctx context.Context, userID, orderID int64) (models.Order, error) {
	var o models.Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return o, apperr.New(apperr.NotFound, "order %d not found", orderID)
	}
	if err != nil {
		return o, database.Classify(err, "get order")
	}

	orders := []models.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return o, err
	}
	return orders[0], nil
}

// attachLines loads the lines of every order in one query. Lines whose
// product was deleted get a placeholder name.
func (r *Reader) attachLines(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Lines = []models.OrderLine{}
	}

	query, args, err := sqlx.In(`SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.unit_price, ol.subtotal,
			COALESCE(p.name, ?) AS product_name
		FROM order_lines ol
		LEFT JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id IN (?)
		ORDER BY ol.order_id, ol.id`, models.DeletedProductName, ids)
	if err != nil {
		return database.Classify(err, "load order lines")
	}

	var lines []models.OrderLine
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return database.Classify(err, "load order lines")
	}
	for _, l := range lines {
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return nil
}
