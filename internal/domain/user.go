package domain

import "time"

type User struct {
	ID               int64     `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Name             string    `db:"name" json:"name"`
	Role             string    `db:"role" json:"role"`
	Plan             string    `db:"plan" json:"plan"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type AdminStats struct {
	Users       int64 `db:"users" json:"users"`
	Admins      int64 `db:"admins" json:"admins"`
	PaidUsers   int64 `db:"paid_users" json:"paid_users"`
	Simulations int64 `db:"simulations" json:"simulations"`
	Scenarios   int64 `db:"scenarios" json:"scenarios"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
