// Package apperr defines the rejection taxonomy shared by the cart, checkout
// and inventory services. Handlers translate a Kind into an HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure. The string value is sent to clients.
type Kind string

const (
	NotFound                    Kind = "not_found"
	QuantityInvalid             Kind = "quantity_invalid"
	InsufficientStock           Kind = "insufficient_stock"
	InsufficientStockAtCheckout Kind = "insufficient_stock_at_checkout"
	EmptyCart                   Kind = "empty_cart"
	InvalidPaymentMethod        Kind = "invalid_payment_method"
	InvalidInput                Kind = "invalid_input"
	Conflict                    Kind = "conflict"
	Contention                  Kind = "contention"
	StorageFailure              Kind = "storage_failure"
)

// Shortfall describes one cart line that cannot be satisfied by live stock.
type Shortfall struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"` // quantity asked for by this call
	InCart    int    `json:"inCart"`    // quantity already in the cart before this call
	Resulting int    `json:"resulting"` // quantity the line would end up with
	Available int    `json:"available"`
	Shortfall int    `json:"shortfall"`
}

// Error is a classified failure with optional stock detail.
type Error struct {
	Kind       Kind
	Message    string
	Shortfalls []Shortfall
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind, keeping it in the chain.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Stock builds an insufficient-stock rejection carrying its shortfalls.
func Stock(kind Kind, message string, shortfalls ...Shortfall) *Error {
	return &Error{Kind: kind, Message: message, Shortfalls: shortfalls}
}

// KindOf reports the Kind of err. Unclassified errors are storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageFailure
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ShortfallsOf returns the stock detail attached to err, if any.
func ShortfallsOf(err error) []Shortfall {
	var e *Error
	if errors.As(err, &e) {
		return e.Shortfalls
	}
	return nil
}
