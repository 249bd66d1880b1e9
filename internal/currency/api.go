package currency

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/shopspring/decimal"
)

// ConversionsParams defines parameters for Conversions.
type ConversionsParams struct {
	From   string
	Amount decimal.Decimal
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Current rate snapshot (GET /api/currency/rates).
	Rates(w http.ResponseWriter, r *http.Request)
	// Trigger server-side rate refresh (POST /api/currency/update-now).
	UpdateRatesNow(w http.ResponseWriter, r *http.Request)
	// On-demand conversion (GET /api/currency/conversions).
	Conversions(w http.ResponseWriter, r *http.Request, params ConversionsParams)
	// Liveness probe (GET /api/health).
	Health(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Conversions operation middleware.
func (siw *ServerInterfaceWrapper) Conversions(w http.ResponseWriter, r *http.Request) {
	// ------------- Required query parameter "amount" ----------------

	raw := r.URL.Query().Get("amount")
	if raw == "" {
		siw.ErrorHandlerFunc(w, r, &errs.RequiredQueryParamError{ParamName: "amount"})
		return
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, errs.ErrInvalidRequest)
		return
	}

	// ------------- Optional query parameter "from" ------------------

	from := strings.ToUpper(r.URL.Query().Get("from"))
	if from == "" {
		from = BaseCode
	}

	siw.Handler.Conversions(w, r, ConversionsParams{Amount: amount, From: from})
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// UpdateMiddlewares guard the mutating update-now route only;
	// rate reads stay public.
	UpdateMiddlewares []MiddlewareFunc
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = ErrorHandlerFunc
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", si.Health)
		r.Get(options.BaseURL+"/currency/rates", si.Rates)
		r.Get(options.BaseURL+"/currency/conversions", wrapper.Conversions)
	})

	r.Group(func(r chi.Router) {
		for _, middleware := range options.UpdateMiddlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/currency/update-now", si.UpdateRatesNow)
	})

	return r
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidRequest) ||
		errors.Is(err, errs.ErrRequiredQueryParam):
		code = http.StatusBadRequest

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Too Many Requests (429).
	case errors.Is(err, errs.ErrRateLimit):
		code = http.StatusTooManyRequests
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
