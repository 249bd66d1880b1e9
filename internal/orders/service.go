// Package orders serves the freight order CRUD API.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lisenok-cargo/cargomanager/internal/config"
	"github.com/lisenok-cargo/cargomanager/internal/currency"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
)

// RateSource provides the rate snapshot used to freeze order totals at
// write time.
type RateSource interface {
	Current() currency.Snapshot
}

// Transactor runs fn atomically. Satisfied by the transaction manager.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	rates  RateSource
	trm    Transactor
	logger logger.Logger
	config *config.Config
}

func NewService(repo Repository, rates RateSource, trm Transactor, logger logger.Logger, config *config.Config) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if rates == nil {
		return nil, errors.New("nil dependency: rate source")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	return &Service{repo: repo, rates: rates, trm: trm, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

// Get all orders (GET /api/orders).
func (s *Service) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.repo.GetOrders(r.Context())
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(map[string][]*order.Order{"orders": orders}); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Get one order (GET /api/orders/{id}).
func (s *Service) GetOrder(w http.ResponseWriter, r *http.Request, params OrderIDParam) {
	o, err := s.repo.GetOrderByID(r.Context(), params.ID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: order not found", errs.ErrNotFound))
			return
		}
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(o); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Create order (POST /api/orders).
func (s *Service) CreateOrder(w http.ResponseWriter, r *http.Request, params CreateOrderParams) {
	if !params.Status.Valid() {
		ErrorHandlerFunc(w, r, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidRequest, params.Status))
		return
	}

	o := &order.Order{
		ClientID:   params.ClientID,
		SupplierID: params.SupplierID,
		Name:       params.Name,
		Status:     params.Status,
		TotalCNY:   params.TotalCNY,
	}
	s.freezeTotals(o)

	err := s.trm.Do(r.Context(), func(ctx context.Context) error {
		if _, err := s.repo.CreateOrder(ctx, o); err != nil {
			return err
		}
		return s.repo.AppendStatusHistory(ctx, o.ID, o.Status)
	})
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(map[string]int{"id": o.ID}); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Update order (PUT /api/orders/{id}).
func (s *Service) UpdateOrder(w http.ResponseWriter, r *http.Request, params UpdateOrderParams) {
	var updated *order.Order

	err := s.trm.Do(r.Context(), func(ctx context.Context) error {
		o, err := s.repo.GetOrderByID(ctx, params.ID)
		if err != nil {
			return err
		}

		statusChanged := params.apply(o)
		if !o.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", errs.ErrInvalidRequest, o.Status)
		}
		if params.TotalCNY != nil {
			s.freezeTotals(o)
		}

		if err = s.repo.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if statusChanged {
			if err = s.repo.AppendStatusHistory(ctx, o.ID, o.Status); err != nil {
				return err
			}
		}

		updated = o
		return nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: order not found", errs.ErrNotFound))
			return
		}
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(updated); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Delete order (DELETE /api/orders/{id}).
func (s *Service) DeleteOrder(w http.ResponseWriter, r *http.Request, params OrderIDParam) {
	if err := s.repo.DeleteOrder(r.Context(), params.ID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: order not found", errs.ErrNotFound))
			return
		}
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "order deleted"}); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// freezeTotals derives the RUB and USD totals from the CNY amount at the
// currently known rates. Totals are frozen at write time and never
// reconciled against later snapshots.
func (s *Service) freezeTotals(o *order.Order) {
	snap := s.rates.Current()

	o.TotalRUB = convertAt(o.TotalCNY, snap, "RUB")
	o.TotalUSD = convertAt(o.TotalCNY, snap, "USD")
}

func convertAt(cny decimal.Decimal, snap currency.Snapshot, code string) decimal.Decimal {
	rate, ok := snap.Rates[code]
	if !ok {
		return decimal.Zero
	}
	return cny.Mul(rate)
}
