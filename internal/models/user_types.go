package models

import "time"

// Roles stored in users.role.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User mirrors the 'users' table. Accounts are issued elsewhere; the row
// exists so carts and orders can reference it.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
