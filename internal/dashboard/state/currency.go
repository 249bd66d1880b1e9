package state

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateStatus is the lifecycle of the currency rates snapshot.
type UpdateStatus string

const (
	UpdateIdle      UpdateStatus = "idle"
	UpdateLoading   UpdateStatus = "loading"
	UpdateSucceeded UpdateStatus = "succeeded"
	UpdateFailed    UpdateStatus = "failed"
)

// CurrencyState is the currency slice: the latest rate snapshot anchored to
// the base currency plus its update lifecycle. Rates stay nil until the first
// successful fetch; a failed fetch keeps the previous snapshot on display.
type CurrencyState struct {
	Rates            map[string]decimal.Decimal
	LastUpdate       string
	Err              string
	Status           UpdateStatus
	LastManualUpdate time.Time
}

func initialCurrencyState() CurrencyState {
	return CurrencyState{Status: UpdateIdle}
}

// reduceCurrency is the pure transition function of the currency slice.
func reduceCurrency(s CurrencyState, a Action) CurrencyState {
	switch a := a.(type) {
	case RatesLoading:
		s.Status = UpdateLoading
		s.Err = ""
	case RatesLoaded:
		s.Rates = a.Rates
		s.LastUpdate = a.LastUpdate
		s.Status = UpdateSucceeded
		s.Err = ""
		if a.Manual {
			s.LastManualUpdate = a.UpdatedAt
		}
	case RatesFailed:
		// Stale rates and their timestamp are intentionally preserved.
		s.Status = UpdateFailed
		s.Err = a.Message
	}
	return s
}
