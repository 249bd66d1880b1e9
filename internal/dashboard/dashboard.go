// Package dashboard wires the HTTP API client to the state store. Its
// methods are the action creators of the dashboard: each performs a request
// and dispatches the matching lifecycle events into the store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/api"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/state"
	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
)

// resource identifies one logical fetch target for stale-response discard.
type resource int

const (
	resOrdersList resource = iota
	resOrderDetail
	resRates
)

// Dashboard owns the API client and the store.
type Dashboard struct {
	api    *api.Client
	store  *state.Store
	logger logger.Logger
	now    func() time.Time

	// latest holds, per resource, the token of the most recently issued
	// request. A completed request whose token has been superseded must
	// not touch the store.
	mu     sync.Mutex
	latest map[resource]uuid.UUID
}

// New creates a dashboard around the given API client and store.
func New(client *api.Client, store *state.Store, logger logger.Logger) (*Dashboard, error) {
	if client == nil {
		return nil, errors.New("nil dependency: api client")
	}
	if store == nil {
		return nil, errors.New("nil dependency: store")
	}

	return &Dashboard{
		api:    client,
		store:  store,
		logger: logger,
		now:    time.Now,
		latest: make(map[resource]uuid.UUID),
	}, nil
}

// Store exposes the underlying store for subscriptions and snapshots.
func (d *Dashboard) Store() *state.Store {
	return d.store
}

// begin issues a fresh request token for the resource and makes it the
// latest one.
func (d *Dashboard) begin(r resource) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()

	token := uuid.New()
	d.latest[r] = token
	return token
}

// dispatchLatest applies the terminal action only when token still is the
// latest issued one for the resource; a superseded response is dropped.
func (d *Dashboard) dispatchLatest(r resource, token uuid.UUID, a state.Action) bool {
	d.mu.Lock()
	current := d.latest[r]
	d.mu.Unlock()

	if current != token {
		return false
	}

	d.store.Dispatch(a)
	return true
}

// FetchOrders loads the order list. Failures never propagate to the caller;
// they are dispatched into the store instead.
func (d *Dashboard) FetchOrders(ctx context.Context) {
	token := d.begin(resOrdersList)
	d.store.Dispatch(state.OrdersRequested{})

	var payload struct {
		Orders []order.Order `json:"orders"`
	}

	if err := d.api.Get(ctx, "/orders", nil, &payload); err != nil {
		d.dispatchLatest(resOrdersList, token, state.OrdersFailed{
			Message: messageOf(err, "failed to load orders"),
		})
		return
	}

	d.dispatchLatest(resOrdersList, token, state.OrdersLoaded{Orders: payload.Orders})
}

// FetchOrder loads a single order by id. Failures never propagate to the
// caller; they are dispatched into the store instead.
func (d *Dashboard) FetchOrder(ctx context.Context, id string) {
	token := d.begin(resOrderDetail)
	d.store.Dispatch(state.OrderRequested{})

	var payload order.Order

	if err := d.api.Get(ctx, "/orders/"+url.PathEscape(id), nil, &payload); err != nil {
		d.dispatchLatest(resOrderDetail, token, state.OrderFailed{
			Message: messageOf(err, "failed to load order"),
		})
		return
	}

	d.dispatchLatest(resOrderDetail, token, state.OrderLoaded{Order: payload})
}

// ratesPayload is the rate snapshot shape served by the API.
type ratesPayload struct {
	Rates      map[string]decimal.Decimal `json:"rates"`
	LastUpdate string                     `json:"last_update"`
}

// LoadRates fetches the current rate snapshot. The failure is both
// dispatched into the store and returned, so a caller chaining on the result
// can tell "finished" from "succeeded".
func (d *Dashboard) LoadRates(ctx context.Context) error {
	token := d.begin(resRates)
	d.store.Dispatch(state.RatesLoading{})

	var payload ratesPayload

	if err := d.api.Get(ctx, "/currency/rates", nil, &payload); err != nil {
		d.dispatchLatest(resRates, token, state.RatesFailed{
			Message: messageOf(err, "failed to load currency rates"),
		})
		return err
	}

	d.dispatchLatest(resRates, token, state.RatesLoaded{
		Rates:      payload.Rates,
		LastUpdate: payload.LastUpdate,
	})
	return nil
}

// RefreshRates triggers a server-side rate recomputation and fetches the
// refreshed snapshot, marking the success as a manual update. Like
// LoadRates, the failure is dispatched and returned.
func (d *Dashboard) RefreshRates(ctx context.Context) error {
	token := d.begin(resRates)
	d.store.Dispatch(state.RatesLoading{})

	// Response body intentionally ignored; the follow-up GET is the
	// source of truth.
	if err := d.api.Post(ctx, "/currency/update-now", nil, nil); err != nil {
		d.dispatchLatest(resRates, token, state.RatesFailed{
			Message: messageOf(err, "failed to refresh currency rates"),
		})
		return err
	}

	var payload ratesPayload

	if err := d.api.Get(ctx, "/currency/rates", nil, &payload); err != nil {
		d.dispatchLatest(resRates, token, state.RatesFailed{
			Message: messageOf(err, "failed to refresh currency rates"),
		})
		return err
	}

	d.dispatchLatest(resRates, token, state.RatesLoaded{
		Rates:      payload.Rates,
		LastUpdate: payload.LastUpdate,
		Manual:     true,
		UpdatedAt:  d.now(),
	})
	return nil
}

// ConvertedAmounts returns the given amount expressed in every known
// currency. An on-demand query: the result goes to the caller, not the store.
func (d *Dashboard) ConvertedAmounts(ctx context.Context, amount decimal.Decimal, from string) (map[string]decimal.Decimal, error) {
	params := url.Values{}
	params.Set("amount", amount.String())
	params.Set("from", from)

	var payload map[string]decimal.Decimal

	if err := d.api.Get(ctx, "/currency/conversions", params, &payload); err != nil {
		return nil, fmt.Errorf("convert amounts: %w", err)
	}

	return payload, nil
}

// messageOf extracts the human-readable message from a normalized API error,
// falling back when the underlying error lacks one.
func messageOf(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
