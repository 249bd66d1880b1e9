package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lisenok-cargo/cargomanager/internal/config"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (m *mockRepository) GetRates(context.Context) (map[string]decimal.Decimal, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	rates := make(map[string]decimal.Decimal, len(m.rates))
	for code, rate := range m.rates {
		rates[code] = rate
	}
	return rates, nil
}

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"RUB": decimal.RequireFromString("12.00"),
		"USD": decimal.RequireFromString("0.1370"),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Currency: config.Currency{
			ManualRefreshEvery: time.Hour,
			ManualRefreshBurst: 1,
		},
	}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()

	s, err := NewService(repo, logger.NewNop(), testConfig())
	require.NoError(t, err)

	return s
}

func TestNewService_NilDependencies(t *testing.T) {
	_, err := NewService(nil, logger.NewNop(), testConfig())
	assert.Error(t, err)

	_, err = NewService(&mockRepository{}, logger.NewNop(), nil)
	assert.Error(t, err)
}

func TestService_LoadAndCurrent(t *testing.T) {
	s := newTestService(t, &mockRepository{rates: testRates()})

	require.NoError(t, s.Load(context.Background()))

	snap := s.Current()
	assert.True(t, snap.Rates["RUB"].Equal(decimal.RequireFromString("12")))
	assert.False(t, snap.LastUpdate.IsZero())

	// The returned map is a copy.
	snap.Rates["RUB"] = decimal.Zero
	assert.True(t, s.Current().Rates["RUB"].IsPositive())
}

func TestService_UpdateNowRateLimited(t *testing.T) {
	repo := &mockRepository{rates: testRates()}
	s := newTestService(t, repo)

	_, err := s.UpdateNow(context.Background())
	require.NoError(t, err)

	_, err = s.UpdateNow(context.Background())
	require.ErrorIs(t, err, errs.ErrRateLimit)
	assert.Equal(t, 1, repo.calls, "throttled refresh never hits storage")
}

func TestService_Convert(t *testing.T) {
	s := newTestService(t, &mockRepository{rates: testRates()})
	require.NoError(t, s.Load(context.Background()))

	tests := []struct {
		name   string
		amount string
		from   string
		want   map[string]string
	}{
		{
			name:   "from base currency",
			amount: "100",
			from:   "CNY",
			want:   map[string]string{"CNY": "100", "RUB": "1200", "USD": "13.70"},
		},
		{
			name:   "from rub divides back to base",
			amount: "1200",
			from:   "RUB",
			want:   map[string]string{"CNY": "100", "RUB": "1200", "USD": "13.70"},
		},
		{
			name:   "empty from defaults to base",
			amount: "10",
			from:   "",
			want:   map[string]string{"CNY": "10", "RUB": "120", "USD": "1.370"},
		},
		{
			name:   "unknown from treated as base",
			amount: "10",
			from:   "EUR",
			want:   map[string]string{"CNY": "10", "RUB": "120", "USD": "1.370"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Convert(decimal.RequireFromString(tt.amount), tt.from)

			require.Len(t, got, len(tt.want))
			for code, want := range tt.want {
				assert.True(t, got[code].Equal(decimal.RequireFromString(want)),
					"%s: want %s, got %s", code, want, got[code])
			}
		})
	}
}

func TestService_ConvertLowercaseFrom(t *testing.T) {
	s := newTestService(t, &mockRepository{rates: testRates()})
	require.NoError(t, s.Load(context.Background()))

	got := s.Convert(decimal.NewFromInt(1200), "rub")
	assert.True(t, got["CNY"].Equal(decimal.NewFromInt(100)))
}

func newTestHandler(t *testing.T, repo Repository) http.Handler {
	t.Helper()

	s := newTestService(t, repo)
	require.NoError(t, s.Load(context.Background()))

	return HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: chi.NewRouter(),
		BaseURL:    "/api",
	})
}

func TestHandler_Rates(t *testing.T) {
	h := newTestHandler(t, &mockRepository{rates: testRates()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/currency/rates", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Rates      map[string]decimal.Decimal `json:"rates"`
		LastUpdate string                     `json:"last_update"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Rates["USD"].Equal(decimal.RequireFromString("0.137")))

	_, err := time.Parse(time.RFC3339, res.LastUpdate)
	assert.NoError(t, err)
}

func TestHandler_UpdateRatesNow(t *testing.T) {
	h := newTestHandler(t, &mockRepository{rates: testRates()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/currency/update-now", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "success", res.Status)

	// The second immediate refresh is throttled.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/currency/update-now", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var errRes errs.JSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errRes))
	assert.Contains(t, errRes.Error, "rate limit")
}

func TestHandler_Conversions(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{
			name:     "valid",
			target:   "/api/currency/conversions?amount=100&from=CNY",
			wantCode: http.StatusOK,
		},
		{
			name:     "missing amount",
			target:   "/api/currency/conversions?from=CNY",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed amount",
			target:   "/api/currency/conversions?amount=abc",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &mockRepository{rates: testRates()})

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusOK {
				var res map[string]decimal.Decimal
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				assert.True(t, res["RUB"].Equal(decimal.NewFromInt(1200)))
			}
		})
	}
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t, &mockRepository{rates: testRates()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
