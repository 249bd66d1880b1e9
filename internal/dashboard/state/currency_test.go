package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"RUB": decimal.RequireFromString("12.00"),
		"USD": decimal.RequireFromString("0.1370"),
	}
}

func TestReduceCurrency_Lifecycle(t *testing.T) {
	s := initialCurrencyState()
	require.Equal(t, UpdateIdle, s.Status)
	require.Nil(t, s.Rates)

	s = reduceCurrency(s, RatesLoading{})
	assert.Equal(t, UpdateLoading, s.Status)

	s = reduceCurrency(s, RatesLoaded{
		Rates:      sampleRates(),
		LastUpdate: "2026-03-01T12:00:00Z",
	})
	assert.Equal(t, UpdateSucceeded, s.Status)
	assert.Equal(t, sampleRates(), s.Rates)
	assert.Equal(t, "2026-03-01T12:00:00Z", s.LastUpdate)
	assert.Empty(t, s.Err)
}

func TestReduceCurrency_FailurePreservesSnapshot(t *testing.T) {
	s := reduceCurrency(initialCurrencyState(), RatesLoaded{
		Rates:      sampleRates(),
		LastUpdate: "2026-03-01T12:00:00Z",
	})

	s = reduceCurrency(s, RatesLoading{})
	s = reduceCurrency(s, RatesFailed{Message: "server unavailable"})

	assert.Equal(t, UpdateFailed, s.Status)
	assert.Equal(t, "server unavailable", s.Err)
	assert.Equal(t, sampleRates(), s.Rates, "stale rates stay on display")
	assert.Equal(t, "2026-03-01T12:00:00Z", s.LastUpdate)
}

func TestReduceCurrency_ManualUpdateStamp(t *testing.T) {
	stamp := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	s := reduceCurrency(initialCurrencyState(), RatesLoaded{
		Rates:      sampleRates(),
		LastUpdate: "2026-03-02T09:30:00Z",
		Manual:     true,
		UpdatedAt:  stamp,
	})
	require.Equal(t, stamp, s.LastManualUpdate)

	// A scheduled background refresh does not move the manual stamp.
	s = reduceCurrency(s, RatesLoaded{
		Rates:      sampleRates(),
		LastUpdate: "2026-03-03T09:30:00Z",
	})
	assert.Equal(t, stamp, s.LastManualUpdate)
}

func TestReduceCurrency_RetryClearsError(t *testing.T) {
	s := reduceCurrency(initialCurrencyState(), RatesFailed{Message: "boom"})
	require.Equal(t, "boom", s.Err)

	s = reduceCurrency(s, RatesLoading{})
	assert.Empty(t, s.Err)
	assert.Equal(t, UpdateLoading, s.Status)
}
