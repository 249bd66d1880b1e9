package state

import "github.com/lisenok-cargo/cargomanager/internal/models/order"

// Request tracks the lifecycle of one in-flight fetch.
// Loading implies an empty Err.
type Request struct {
	Err     string
	Loading bool
}

// OrdersState is the orders slice. The list and the single inspected order
// are independent resources, each with its own request lifecycle, so a
// failing detail fetch never masks a loaded list and vice versa.
type OrdersState struct {
	Current *order.Order
	Orders  []order.Order
	List    Request
	Detail  Request
}

func initialOrdersState() OrdersState {
	return OrdersState{Orders: []order.Order{}}
}

// reduceOrders is the pure transition function of the orders slice.
func reduceOrders(s OrdersState, a Action) OrdersState {
	switch a := a.(type) {
	case OrdersRequested:
		s.List = Request{Loading: true}
	case OrdersLoaded:
		s.List = Request{}
		s.Orders = a.Orders
	case OrdersFailed:
		s.List = Request{Err: a.Message}
	case OrderRequested:
		s.Detail = Request{Loading: true}
	case OrderLoaded:
		s.Detail = Request{}
		o := a.Order
		s.Current = &o
	case OrderFailed:
		s.Detail = Request{Err: a.Message}
	}
	return s
}
