package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lisenok-cargo/cargomanager/internal/dashboard/api"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/state"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T, handler http.Handler) (*Dashboard, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d, err := New(api.New(srv.URL), state.NewStore(), logger.NewNop())
	require.NoError(t, err)

	return d, srv
}

func TestNew_NilDependencies(t *testing.T) {
	store := state.NewStore()

	_, err := New(nil, store, logger.NewNop())
	assert.Error(t, err)

	_, err = New(api.New("http://localhost"), nil, logger.NewNop())
	assert.Error(t, err)
}

func TestFetchOrders(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		w.Write([]byte(`{"orders":[{"id":1,"name":"Electronics batch","status":"in_progress"}]}`))
	}))

	d.FetchOrders(context.Background())

	got := d.Store().State().Orders
	assert.False(t, got.List.Loading)
	assert.Empty(t, got.List.Err)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, 1, got.Orders[0].ID)
	assert.Equal(t, "Electronics batch", got.Orders[0].Name)
}

func TestFetchOrders_FailureGoesToStore(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database is down"}`))
	}))

	d.FetchOrders(context.Background())

	got := d.Store().State().Orders
	assert.False(t, got.List.Loading)
	assert.Equal(t, "database is down", got.List.Err)
}

func TestFetchOrder(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/42", r.URL.Path)
		w.Write([]byte(`{"id":42,"name":"Textile","status":"at_customs"}`))
	}))

	d.FetchOrder(context.Background(), "42")

	got := d.Store().State().Orders
	require.NotNil(t, got.Current)
	assert.Equal(t, 42, got.Current.ID)
	assert.Empty(t, got.Detail.Err)
}

func TestFetchOrder_StaleResponseDiscarded(t *testing.T) {
	// The first request is held open until after the second one completes.
	// Its late response must not overwrite the newer order in the store.
	firstArrived := make(chan struct{})
	release := make(chan struct{})

	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/1":
			close(firstArrived)
			<-release
			w.Write([]byte(`{"id":1,"name":"stale","status":"new"}`))
		case "/api/orders/2":
			w.Write([]byte(`{"id":2,"name":"fresh","status":"new"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.FetchOrder(context.Background(), "1")
	}()

	<-firstArrived
	d.FetchOrder(context.Background(), "2")
	close(release)
	wg.Wait()

	got := d.Store().State().Orders
	require.NotNil(t, got.Current)
	assert.Equal(t, 2, got.Current.ID)
	assert.Equal(t, "fresh", got.Current.Name)
}

func TestLoadRates(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/currency/rates", r.URL.Path)
		w.Write([]byte(`{"rates":{"RUB":12.00,"USD":0.1370},"last_update":"2026-03-01T12:00:00Z"}`))
	}))

	require.NoError(t, d.LoadRates(context.Background()))

	got := d.Store().State().Currency
	assert.Equal(t, state.UpdateSucceeded, got.Status)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.LastUpdate)
	assert.True(t, got.Rates["RUB"].Equal(decimal.RequireFromString("12")))
	assert.True(t, got.LastManualUpdate.IsZero())
}

func TestLoadRates_FailureDispatchedAndReturned(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"rates unavailable"}`))
	}))

	err := d.LoadRates(context.Background())
	require.Error(t, err)

	got := d.Store().State().Currency
	assert.Equal(t, state.UpdateFailed, got.Status)
	assert.Equal(t, "rates unavailable", got.Err)
}

func TestRefreshRates(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/api/currency/update-now":
			w.Write([]byte(`{"status":"success"}`))
		case "/api/currency/rates":
			w.Write([]byte(`{"rates":{"RUB":12.50},"last_update":"2026-03-02T09:30:00Z"}`))
		}
	}))

	stamp := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	d.now = func() time.Time { return stamp }

	require.NoError(t, d.RefreshRates(context.Background()))

	assert.Equal(t, []string{
		"POST /api/currency/update-now",
		"GET /api/currency/rates",
	}, calls)

	got := d.Store().State().Currency
	assert.Equal(t, state.UpdateSucceeded, got.Status)
	assert.Equal(t, "2026-03-02T09:30:00Z", got.LastUpdate)
	assert.Equal(t, stamp, got.LastManualUpdate)
}

func TestRefreshRates_RateLimited(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))

	err := d.RefreshRates(context.Background())
	require.Error(t, err)

	got := d.Store().State().Currency
	assert.Equal(t, state.UpdateFailed, got.Status)
	assert.Equal(t, "rate limit exceeded", got.Err)
}

func TestConvertedAmounts(t *testing.T) {
	d, _ := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/currency/conversions", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("amount"))
		assert.Equal(t, "RUB", r.URL.Query().Get("from"))
		w.Write([]byte(`{"CNY":8.33,"RUB":100,"USD":1.14}`))
	}))

	got, err := d.ConvertedAmounts(context.Background(), decimal.NewFromInt(100), "RUB")
	require.NoError(t, err)
	assert.True(t, got["RUB"].Equal(decimal.NewFromInt(100)))
	assert.True(t, got["CNY"].Equal(decimal.RequireFromString("8.33")))

	// The store is untouched by an on-demand conversion.
	assert.Equal(t, state.UpdateIdle, d.Store().State().Currency.Status)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "boom", messageOf(&api.Error{Message: "boom"}, "fallback"))
	assert.Equal(t, "fallback", messageOf(nil, "fallback"))
	assert.Equal(t, "fallback", messageOf(&api.Error{}, "fallback"))
}
