package user

import (
	"context"
	"time"
)

// User is an operator account allowed to mutate orders and rates.
type User struct {
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Login     string    `db:"login" json:"login"`
	Password  string    `db:"password" json:"-"`
	ID        int       `db:"id" json:"id"`
}

// key is unexported so no other package can collide with context values
// set here.
type key int

var userKey key

// NewContext returns a context carrying the authenticated operator.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the operator stored in ctx by the auth middleware,
// if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
