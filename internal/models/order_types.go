package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentWallet   PaymentMethod = "wallet"
)

// PaymentMethods lists every accepted method.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentTransfer, PaymentWallet}

// ParsePaymentMethod validates a client supplied method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderPending   OrderStatus = "pending"
)

// DeletedProductName is shown for order lines whose product no longer exists.
const DeletedProductName = "Product no longer available"

// Order is the model for the 'orders' table. Immutable once created.
// UserID is nil when the owning account has been deleted.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	UserID        *int64          `json:"userId,omitempty" db:"user_id"`
	Total         decimal.Decimal `json:"total" db:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	Status        OrderStatus     `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`

	Lines []OrderLine `json:"lines" db:"-"`
}

// OrderLine is the model for the 'order_lines' table.
// UnitPrice and Subtotal are frozen at purchase time.
type OrderLine struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"orderId" db:"order_id"`
	ProductID *int64          `json:"productId,omitempty" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`

	// Populated from a LEFT JOIN, DeletedProductName when the product is gone.
	ProductName string `json:"productName" db:"product_name"`
}
