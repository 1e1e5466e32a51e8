package inventory

import (
	"context"
	"strings"

	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/models"
)

// DefaultLowStockThreshold is used when the admin report is asked for without one.
const DefaultLowStockThreshold = 10

// ProductPage is one page of the public catalog.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
}

// ListProducts pages through the catalog by name. Empty category or color
// match everything.
func (s *Service) ListProducts(ctx context.Context, page, pageSize int, category, color string) (ProductPage, error) {
	page, pageSize = database.NormalizePage(page, pageSize)

	var conds []string
	var args []any
	if category != "" {
		conds = append(conds, "category = ?")
		args = append(args, category)
	}
	if color != "" {
		conds = append(conds, "color = ?")
		args = append(args, color)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	out := ProductPage{Page: page, PageSize: pageSize, Products: []models.Product{}}
	if err := s.db.GetContext(ctx, &out.Total, `SELECT COUNT(*) FROM products`+where, args...); err != nil {
		return ProductPage{}, database.Classify(err, "count products")
	}
	offset, ok := database.PageOffset(page, pageSize, out.Total)
	if !ok {
		return out, nil
	}

	err := s.db.SelectContext(ctx, &out.Products,
		`SELECT `+productColumns+` FROM products`+where+` ORDER BY name, id LIMIT ? OFFSET ?`,
		append(args, pageSize, offset)...)
	if err != nil {
		return ProductPage{}, database.Classify(err, "list products")
	}
	return out, nil
}

// StockLevel tags a product in the low-stock report.
type StockLevel string

const (
	StockSoldOut StockLevel = "sold_out"
	StockLow     StockLevel = "low"
)

// LowStockItem is a product at or below the report threshold.
type LowStockItem struct {
	models.Product
	Level StockLevel `json:"level"`
}

// LowStock lists products with stock at or below threshold, scarcest first.
// Thresholds below 1 are raised to 1.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	threshold = max(threshold, 1)

	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products WHERE stock <= ? ORDER BY stock, name, id`, threshold)
	if err != nil {
		return nil, database.Classify(err, "low stock report")
	}

	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		level := StockLow
		if p.Stock == 0 {
			level = StockSoldOut
		}
		items = append(items, LowStockItem{Product: p, Level: level})
	}
	return items, nil
}
