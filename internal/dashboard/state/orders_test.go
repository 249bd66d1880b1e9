package state

import (
	"testing"
	"time"

	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrders() []order.Order {
	return []order.Order{
		{
			ID:          1,
			Name:        "Electronics batch",
			Status:      order.INPROGRESS,
			ClientName:  "Ivanov",
			TotalCNY:    decimal.NewFromInt(1000),
			CreatedDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          2,
			Name:        "Textile",
			Status:      order.ATCUSTOMS,
			ClientName:  "Petrov",
			TotalCNY:    decimal.NewFromInt(2500),
			CreatedDate: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestReduceOrders_ListLifecycle(t *testing.T) {
	s := initialOrdersState()
	require.Empty(t, s.Orders)
	require.False(t, s.List.Loading)

	s = reduceOrders(s, OrdersRequested{})
	assert.True(t, s.List.Loading)
	assert.Empty(t, s.List.Err, "loading implies no error")

	orders := sampleOrders()
	s = reduceOrders(s, OrdersLoaded{Orders: orders})
	assert.False(t, s.List.Loading)
	assert.Empty(t, s.List.Err)
	assert.Equal(t, orders, s.Orders)
}

func TestReduceOrders_FailureClearsLoading(t *testing.T) {
	s := reduceOrders(initialOrdersState(), OrdersRequested{})
	require.True(t, s.List.Loading)

	s = reduceOrders(s, OrdersFailed{Message: "boom"})
	assert.False(t, s.List.Loading)
	assert.Equal(t, "boom", s.List.Err)
	assert.Empty(t, s.Orders, "previously loaded data is untouched")
}

func TestReduceOrders_RetryClearsError(t *testing.T) {
	s := reduceOrders(initialOrdersState(), OrdersFailed{Message: "boom"})
	require.Equal(t, "boom", s.List.Err)

	s = reduceOrders(s, OrdersRequested{})
	assert.Empty(t, s.List.Err)
	assert.True(t, s.List.Loading)
}

func TestReduceOrders_IndependentLifecycles(t *testing.T) {
	// The list and the inspected order fail and load independently.
	s := reduceOrders(initialOrdersState(), OrdersLoaded{Orders: sampleOrders()})
	s = reduceOrders(s, OrderRequested{})
	s = reduceOrders(s, OrderFailed{Message: "order not found"})

	assert.Empty(t, s.List.Err)
	assert.Len(t, s.Orders, 2)
	assert.Equal(t, "order not found", s.Detail.Err)
	assert.Nil(t, s.Current)

	single := sampleOrders()[0]
	s = reduceOrders(s, OrderLoaded{Order: single})
	assert.Empty(t, s.Detail.Err)
	require.NotNil(t, s.Current)
	assert.Equal(t, single, *s.Current)
}

func TestReduceOrders_LastWriterWins(t *testing.T) {
	// Two responses for the same resource applied in arrival order: the
	// reducer keeps whichever came last, with no ordering of its own.
	first := []order.Order{sampleOrders()[0]}
	second := []order.Order{sampleOrders()[1]}

	s := reduceOrders(initialOrdersState(), OrdersLoaded{Orders: first})
	s = reduceOrders(s, OrdersLoaded{Orders: second})

	assert.Equal(t, second, s.Orders)
}

func TestReduceOrders_UnknownActionIsIdentity(t *testing.T) {
	s := reduceOrders(initialOrdersState(), OrdersLoaded{Orders: sampleOrders()})
	assert.Equal(t, s, reduceOrders(s, RatesLoading{}))
}
