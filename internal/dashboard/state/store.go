package state

import (
	"sync"

	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/shopspring/decimal"
)

// State composes the two slices under fixed keys.
type State struct {
	Orders   OrdersState
	Currency CurrencyState
}

// Store is a single-writer state container. All mutations happen
// synchronously inside Dispatch; dispatched actions are applied in dispatch
// order. A Store is an explicitly constructed instance, never a package
// singleton, so tests can run isolated stores side by side.
type Store struct {
	mu        sync.Mutex
	state     State
	subs      map[int]func(State)
	nextSubID int
}

// NewStore creates a store holding the initial state of both slices.
func NewStore() *Store {
	return &Store{
		state: State{
			Orders:   initialOrdersState(),
			Currency: initialCurrencyState(),
		},
		subs: make(map[int]func(State)),
	}
}

// Dispatch applies the action to both reducers and notifies subscribers
// with the resulting snapshot.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state.Orders = reduceOrders(s.state.Orders, a)
	s.state.Currency = reduceCurrency(s.state.Currency, a)
	snapshot := cloneState(s.state)

	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// State returns a snapshot of the current state. The snapshot's slices and
// maps are copies; mutating them does not affect the store.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Subscribe registers fn for change notification and returns a function
// removing the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func cloneState(s State) State {
	if s.Orders.Orders != nil {
		orders := make([]order.Order, len(s.Orders.Orders))
		copy(orders, s.Orders.Orders)
		s.Orders.Orders = orders
	}
	if s.Orders.Current != nil {
		current := *s.Orders.Current
		s.Orders.Current = &current
	}
	if s.Currency.Rates != nil {
		rates := make(map[string]decimal.Decimal, len(s.Currency.Rates))
		for code, rate := range s.Currency.Rates {
			rates[code] = rate
		}
		s.Currency.Rates = rates
	}
	return s
}
