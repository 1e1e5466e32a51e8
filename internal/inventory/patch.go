package inventory

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-api/internal/apperr"
)

// NewProduct is the input for CreateProduct.
type NewProduct struct {
	Name        string          `json:"name" binding:"required,max=150"`
	Description *string         `json:"description" binding:"omitnil,max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Category    *string         `json:"category" binding:"omitnil,max=100"`
	Color       *string         `json:"color" binding:"omitnil,max=50"`
	Image       *string         `json:"image" binding:"omitnil,max=255"`
}

// ProductPatch is a partial product update. Nil fields are left alone.
type ProductPatch struct {
	Name        *string          `json:"name" binding:"omitnil,min=1,max=150"`
	Description *string          `json:"description" binding:"omitnil,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitnil,max=100"`
	Color       *string          `json:"color" binding:"omitnil,max=50"`
	Stock       *int             `json:"stock" binding:"omitnil,gte=0"`
	Image       *string          `json:"image" binding:"omitnil,max=255"`
}

type assignment struct {
	column string
	value  any
}

// assignments lists the set fields in a fixed column order.
func (p ProductPatch) assignments() []assignment {
	var out []assignment
	if p.Name != nil {
		out = append(out, assignment{"name", *p.Name}, assignment{"slug", slug.Make(*p.Name)})
	}
	if p.Description != nil {
		out = append(out, assignment{"description", *p.Description})
	}
	if p.Price != nil {
		out = append(out, assignment{"price", *p.Price})
	}
	if p.Category != nil {
		out = append(out, assignment{"category", *p.Category})
	}
	if p.Color != nil {
		out = append(out, assignment{"color", *p.Color})
	}
	if p.Stock != nil {
		out = append(out, assignment{"stock", *p.Stock})
	}
	if p.Image != nil {
		out = append(out, assignment{"image", *p.Image})
	}
	return out
}

// updateStatement builds the UPDATE for the set fields. Column names come
// only from assignments, never from input.
func (p ProductPatch) updateStatement(productID int64, now time.Time) (string, []any) {
	fields := p.assignments()
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		sets = append(sets, f.column+" = ?")
		args = append(args, f.value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now, productID)
	return "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?", args
}

func (s *Service) validatePatch(p ProductPatch) error {
	if len(p.assignments()) == 0 {
		return apperr.New(apperr.InvalidInput, "no fields to update")
	}
	if err := s.validate.Struct(p); err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "invalid product update")
	}
	if p.Name != nil && slug.Make(*p.Name) == "" {
		return apperr.New(apperr.InvalidInput, "name must contain letters or digits")
	}
	if p.Price != nil {
		return validatePrice(*p.Price)
	}
	return nil
}

// validatePrice accepts non-negative amounts with at most two decimals.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.New(apperr.InvalidInput, "price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return apperr.New(apperr.InvalidInput, "price %s has more than two decimals", price)
	}
	return nil
}
