// Package currency serves the exchange rate snapshot anchored to CNY and
// on-demand amount conversions.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lisenok-cargo/cargomanager/internal/config"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/pkg/limiter"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
)

// BaseCode is the base currency every rate is anchored to:
// rates[code] is how many target units one CNY buys.
const BaseCode = "CNY"

// Snapshot is the rate set handed out to consumers. Replaced as a whole on
// every successful refresh, never merged.
type Snapshot struct {
	Rates      map[string]decimal.Decimal
	LastUpdate time.Time
}

// Service holds the current snapshot in memory and guards manual refreshes
// with a rate limiter.
type Service struct {
	repo    Repository
	logger  logger.Logger
	config  *config.Config
	limiter *limiter.RefreshLimiter

	mu       sync.RWMutex
	snapshot Snapshot
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	return &Service{
		repo:   repo,
		logger: logger,
		config: config,
		limiter: limiter.NewRefreshLimiter(
			config.Currency.ManualRefreshEvery,
			config.Currency.ManualRefreshBurst,
		),
	}, nil
}

var _ ServerInterface = (*Service)(nil)

// Load primes the snapshot from storage. Called once at startup.
func (s *Service) Load(ctx context.Context) error {
	rates, err := s.repo.GetRates(ctx)
	if err != nil {
		return fmt.Errorf("load currency rates: %w", err)
	}

	s.mu.Lock()
	s.snapshot = Snapshot{Rates: rates, LastUpdate: time.Now().UTC()}
	s.mu.Unlock()

	return nil
}

// Current returns a copy of the rate snapshot.
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rates := make(map[string]decimal.Decimal, len(s.snapshot.Rates))
	for code, rate := range s.snapshot.Rates {
		rates[code] = rate
	}

	return Snapshot{Rates: rates, LastUpdate: s.snapshot.LastUpdate}
}

// UpdateNow re-reads the rates from storage and stamps a fresh update time.
// Throttled: hitting the limit reports errs.ErrRateLimit.
func (s *Service) UpdateNow(ctx context.Context) (Snapshot, error) {
	if !s.limiter.Allow() {
		return Snapshot{}, fmt.Errorf("manual rates refresh: %w", errs.ErrRateLimit)
	}

	rates, err := s.repo.GetRates(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh currency rates: %w", err)
	}

	s.mu.Lock()
	s.snapshot = Snapshot{Rates: rates, LastUpdate: time.Now().UTC()}
	s.mu.Unlock()

	return s.Current(), nil
}

// ratesResponse is the wire shape of a snapshot.
type ratesResponse struct {
	Rates      map[string]decimal.Decimal `json:"rates"`
	LastUpdate string                     `json:"last_update"`
	Status     string                     `json:"status,omitempty"`
}

func toRatesResponse(snap Snapshot, status string) ratesResponse {
	return ratesResponse{
		Rates:      snap.Rates,
		LastUpdate: snap.LastUpdate.Format(time.RFC3339),
		Status:     status,
	}
}

// Current rate snapshot (GET /api/currency/rates).
func (s *Service) Rates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toRatesResponse(s.Current(), "")); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Trigger server-side rate refresh (POST /api/currency/update-now).
func (s *Service) UpdateRatesNow(w http.ResponseWriter, r *http.Request) {
	snap, err := s.UpdateNow(r.Context())
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(toRatesResponse(snap, "success")); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// On-demand conversion (GET /api/currency/conversions).
func (s *Service) Conversions(w http.ResponseWriter, r *http.Request, params ConversionsParams) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Convert(params.Amount, params.From)); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// Liveness probe (GET /api/health).
func (s *Service) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Convert expresses amount (denominated in from) in the base currency and
// every known target currency. An unknown from code is treated as the base.
func (s *Service) Convert(amount decimal.Decimal, from string) map[string]decimal.Decimal {
	snap := s.Current()

	from = strings.ToUpper(from)
	if from == "" {
		from = BaseCode
	}

	base := amount
	if rate, ok := snap.Rates[from]; ok && from != BaseCode && rate.IsPositive() {
		// rates[code] is units per one CNY, so one unit = 1/rate CNY.
		base = amount.Div(rate)
	}

	result := map[string]decimal.Decimal{BaseCode: base}
	for code, rate := range snap.Rates {
		result[code] = base.Mul(rate)
	}

	return result
}
