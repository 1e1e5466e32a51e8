package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database"
	"github.com/01moynul/storefront-api/internal/models"
)

const productColumns = `id, name, slug, description, price, stock, category, color, image, created_at, updated_at`

// LockProduct reads a product under an exclusive row lock held until tx ends.
// Every stock mutation starts here.
func LockProduct(ctx context.Context, tx *sqlx.Tx, d database.Dialect, productID int64) (models.Product, error) {
	var p models.Product
	err := tx.GetContext(ctx, &p, d.ForUpdate(`SELECT `+productColumns+` FROM products WHERE id = ?`), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return p, apperr.New(apperr.NotFound, "product %d not found", productID)
	}
	return p, err
}

// Service handles the admin side of the catalog.
type Service struct {
	db       *database.DB
	log      *zap.Logger
	validate *validator.Validate
}

// NewService wires the inventory service. Input structs share gin's "binding" tags.
func NewService(db *database.DB, log *zap.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return &Service{db: db, log: log, validate: v}
}

// StockOp is an admin stock adjustment.
type StockOp string

const (
	StockAdd      StockOp = "add"
	StockSubtract StockOp = "subtract"
	StockSet      StockOp = "set"
)

// StockChange reports the stock before and after an adjustment.
type StockChange struct {
	ProductID int64 `json:"productId"`
	Previous  int   `json:"previousStock"`
	Current   int   `json:"stock"`
}

// AdjustStock applies op to a product's stock under the row lock.
// Subtracting more than is available floors at zero.
func (s *Service) AdjustStock(ctx context.Context, productID int64, op StockOp, qty int) (StockChange, error) {
	if qty < 0 {
		return StockChange{}, apperr.New(apperr.InvalidInput, "quantity must not be negative")
	}

	change := StockChange{ProductID: productID}
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		p, err := LockProduct(ctx, tx, s.db.Dialect, productID)
		if err != nil {
			return err
		}
		change.Previous = p.Stock

		switch op {
		case StockAdd:
			change.Current = p.Stock + qty
		case StockSubtract:
			change.Current = max(p.Stock-qty, 0)
		case StockSet:
			change.Current = qty
		default:
			return apperr.New(apperr.InvalidInput, "unknown stock operation %q", op)
		}

		_, err = tx.ExecContext(ctx, `UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`,
			change.Current, time.Now().UTC(), productID)
		return err
	})
	if err != nil {
		return StockChange{}, err
	}

	s.log.Info("stock adjusted",
		zap.Int64("product_id", productID),
		zap.String("op", string(op)),
		zap.Int("previous", change.Previous),
		zap.Int("current", change.Current))
	return change, nil
}

// CreateProduct inserts a new product. The slug is derived from the name.
func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (models.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.Product{}, apperr.Wrap(apperr.InvalidInput, err, "invalid product")
	}
	if err := validatePrice(in.Price); err != nil {
		return models.Product{}, err
	}
	if slug.Make(in.Name) == "" {
		return models.Product{}, apperr.New(apperr.InvalidInput, "name must contain letters or digits")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `INSERT INTO products
		(name, slug, description, price, stock, category, color, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, slug.Make(in.Name), in.Description, in.Price, in.Stock, in.Category, in.Color, in.Image, now, now)
	if err != nil {
		if database.IsDuplicate(err) {
			return models.Product{}, apperr.Wrap(apperr.Conflict, err, "a product named %q already exists", in.Name)
		}
		return models.Product{}, database.Classify(err, "create product")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Product{}, database.Classify(err, "create product")
	}
	return s.GetProduct(ctx, id)
}

// UpdateProduct applies a partial update under the row lock.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, patch ProductPatch) (models.Product, error) {
	if err := s.validatePatch(patch); err != nil {
		return models.Product{}, err
	}

	var updated models.Product
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := LockProduct(ctx, tx, s.db.Dialect, productID); err != nil {
			return err
		}

		query, args := patch.updateStatement(productID, time.Now().UTC())
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if database.IsDuplicate(err) {
				return apperr.Wrap(apperr.Conflict, err, "a product named %q already exists", *patch.Name)
			}
			return err
		}
		return tx.GetContext(ctx, &updated, `SELECT `+productColumns+` FROM products WHERE id = ?`, productID)
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes a product that no cart references. Order lines
// keep their frozen data with product_id nulled by the foreign key.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := LockProduct(ctx, tx, s.db.Dialect, productID); err != nil {
			return err
		}

		var inCarts int
		if err := tx.GetContext(ctx, &inCarts, `SELECT COUNT(*) FROM cart_items WHERE product_id = ?`, productID); err != nil {
			return err
		}
		if inCarts > 0 {
			return apperr.New(apperr.Conflict, "product %d is in %d cart(s)", productID, inCarts)
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
		return err
	})
}

// GetProduct reads one product without locking.
func (s *Service) GetProduct(ctx context.Context, productID int64) (models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return p, apperr.New(apperr.NotFound, "product %d not found", productID)
	}
	if err != nil {
		return p, database.Classify(err, "get product")
	}
	return p, nil
}
