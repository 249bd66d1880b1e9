// Package state holds the dashboard's application state: two independent
// slices (orders, currency) mutated only by pure reducers in response to
// dispatched actions.
package state

import (
	"time"

	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/shopspring/decimal"
)

// Action is an immutable, tagged event describing a state transition.
// The set of actions is closed: reducers match on the concrete types and
// treat anything else as identity.
type Action interface {
	isAction()
}

// OrdersRequested marks the start of an order list fetch.
type OrdersRequested struct{}

// OrdersLoaded replaces the order list.
type OrdersLoaded struct {
	Orders []order.Order
}

// OrdersFailed terminates an order list fetch with an error message.
type OrdersFailed struct {
	Message string
}

// OrderRequested marks the start of a single order fetch.
type OrderRequested struct{}

// OrderLoaded replaces the currently inspected order.
type OrderLoaded struct {
	Order order.Order
}

// OrderFailed terminates a single order fetch with an error message.
type OrderFailed struct {
	Message string
}

// RatesLoading marks the start of a currency rates fetch.
type RatesLoading struct{}

// RatesLoaded replaces the rate snapshot entirely.
type RatesLoaded struct {
	Rates      map[string]decimal.Decimal
	LastUpdate string
	// Manual marks a user-triggered refresh; UpdatedAt then records when
	// it happened. Carried in the action to keep the reducer pure.
	Manual    bool
	UpdatedAt time.Time
}

// RatesFailed terminates a rates fetch, preserving any stale snapshot.
type RatesFailed struct {
	Message string
}

func (OrdersRequested) isAction() {}
func (OrdersLoaded) isAction()    {}
func (OrdersFailed) isAction()    {}
func (OrderRequested) isAction()  {}
func (OrderLoaded) isAction()     {}
func (OrderFailed) isAction()     {}
func (RatesLoading) isAction()    {}
func (RatesLoaded) isAction()     {}
func (RatesFailed) isAction()     {}
