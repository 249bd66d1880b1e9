package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents a freight order lifecycle state.
type Status string

const (
	NEW        Status = "new"
	INPROGRESS Status = "in_progress"
	ATCUSTOMS  Status = "at_customs"
	DELIVERED  Status = "delivered"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case NEW, INPROGRESS, ATCUSTOMS, DELIVERED:
		return true
	}
	return false
}

// Order represents one freight/procurement request. The three totals carry
// the same underlying value in different currencies, frozen at write time.
type Order struct {
	CreatedDate  time.Time       `db:"created_date" json:"created_date"`
	Name         string          `db:"name" json:"name"`
	Status       Status          `db:"status" json:"status"`
	ClientName   string          `db:"client_name" json:"client_name,omitempty"`
	SupplierName string          `db:"supplier_name" json:"supplier_name,omitempty"`
	TotalCNY     decimal.Decimal `db:"total_cny" json:"total_cny"`
	TotalRUB     decimal.Decimal `db:"total_rub" json:"total_rub"`
	TotalUSD     decimal.Decimal `db:"total_usd" json:"total_usd"`
	ID           int             `db:"id" json:"id"`
	ClientID     int             `db:"client_id" json:"client_id,omitempty"`
	SupplierID   int             `db:"supplier_id" json:"supplier_id,omitempty"`
}
