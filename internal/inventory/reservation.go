// Package inventory owns product stock: the reservation decision used by the
// cart, the row lock every stock mutation goes through, and product admin.
package inventory

import (
	"fmt"

	"github.com/01moynul/storefront-api/internal/apperr"
)

// Mode says how a requested quantity combines with the existing cart line.
type Mode int

const (
	// ModeAdd accumulates onto the existing line.
	ModeAdd Mode = iota
	// ModeSet replaces the existing line quantity.
	ModeSet
)

// Request carries values already read under the product row lock.
type Request struct {
	Mode       Mode
	ProductID  int64
	Name       string
	Requested  int
	Existing   int // 0 for a new line
	Available  int
	MaxPerLine int
}

// Decision is the outcome of CheckOrClamp.
type Decision struct {
	Quantity int
	Adjusted bool // clamped down to available stock
	Remove   bool // clamped to zero, delete the line instead
}

// ValidateQuantity rejects non-positive quantities and quantities above the per-line cap.
func ValidateQuantity(qty, maxPerLine int) error {
	if qty <= 0 {
		return apperr.New(apperr.QuantityInvalid, "quantity must be a positive integer, got %d", qty)
	}
	if qty > maxPerLine {
		return apperr.New(apperr.QuantityInvalid, "quantity %d exceeds the per-line limit of %d", qty, maxPerLine)
	}
	return nil
}

// Check decides whether the request can be satisfied and returns the
// resulting line quantity. It never touches storage.
func Check(r Request) (int, error) {
	if r.Requested <= 0 {
		return 0, apperr.New(apperr.QuantityInvalid, "quantity must be a positive integer, got %d", r.Requested)
	}

	resulting := r.Requested
	if r.Mode == ModeAdd {
		resulting += r.Existing
	}
	if err := ValidateQuantity(resulting, r.MaxPerLine); err != nil {
		return 0, err
	}

	if resulting > r.Available {
		return 0, apperr.Stock(apperr.InsufficientStock,
			fmt.Sprintf("only %d of %q available, %d requested with %d already in cart", r.Available, r.Name, r.Requested, r.Existing),
			apperr.Shortfall{
				ProductID: r.ProductID,
				Name:      r.Name,
				Requested: r.Requested,
				InCart:    r.Existing,
				Resulting: resulting,
				Available: r.Available,
				Shortfall: resulting - r.Available,
			})
	}
	return resulting, nil
}

// CheckOrClamp runs Check and, on insufficient stock, clamps the quantity
// down to what is available instead of rejecting.
func CheckOrClamp(r Request) (Decision, error) {
	qty, err := Check(r)
	if err == nil {
		return Decision{Quantity: qty}, nil
	}
	if !apperr.Is(err, apperr.InsufficientStock) {
		return Decision{}, err
	}

	available := max(r.Available, 0)
	return Decision{Quantity: available, Adjusted: true, Remove: available == 0}, nil
}
