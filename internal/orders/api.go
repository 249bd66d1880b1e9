package orders

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/shopspring/decimal"
)

// OrderIDParam identifies one order in the path.
type OrderIDParam struct {
	ID int
}

// CreateOrderParams defines the body of a create request.
// All fields are required.
type CreateOrderParams struct {
	Name       string          `json:"name"`
	Status     order.Status    `json:"status"`
	TotalCNY   decimal.Decimal `json:"total_cny"`
	ClientID   int             `json:"client_id"`
	SupplierID int             `json:"supplier_id"`
}

// UpdateOrderParams defines the body of a partial update; absent fields keep
// their stored values.
type UpdateOrderParams struct {
	Name       *string          `json:"name"`
	Status     *order.Status    `json:"status"`
	TotalCNY   *decimal.Decimal `json:"total_cny"`
	ClientID   *int             `json:"client_id"`
	SupplierID *int             `json:"supplier_id"`
	ID         int              `json:"-"`
}

// apply merges the update into o and reports whether the status changed.
func (p UpdateOrderParams) apply(o *order.Order) (statusChanged bool) {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Status != nil && *p.Status != o.Status {
		o.Status = *p.Status
		statusChanged = true
	}
	if p.TotalCNY != nil {
		o.TotalCNY = *p.TotalCNY
	}
	if p.ClientID != nil {
		o.ClientID = *p.ClientID
	}
	if p.SupplierID != nil {
		o.SupplierID = *p.SupplierID
	}
	return statusChanged
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Get all orders (GET /api/orders).
	ListOrders(w http.ResponseWriter, r *http.Request)
	// Get one order (GET /api/orders/{id}).
	GetOrder(w http.ResponseWriter, r *http.Request, params OrderIDParam)
	// Create order (POST /api/orders).
	CreateOrder(w http.ResponseWriter, r *http.Request, params CreateOrderParams)
	// Update order (PUT /api/orders/{id}).
	UpdateOrder(w http.ResponseWriter, r *http.Request, params UpdateOrderParams)
	// Delete order (DELETE /api/orders/{id}).
	DeleteOrder(w http.ResponseWriter, r *http.Request, params OrderIDParam)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) orderID(w http.ResponseWriter, r *http.Request) (OrderIDParam, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		siw.ErrorHandlerFunc(w, r, errs.ErrInvalidRequest)
		return OrderIDParam{}, false
	}
	return OrderIDParam{ID: id}, true
}

// Get order operation middleware.
func (siw *ServerInterfaceWrapper) GetOrder(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.orderID(w, r)
	if !ok {
		return
	}
	siw.Handler.GetOrder(w, r, params)
}

// Create order operation middleware.
func (siw *ServerInterfaceWrapper) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// ------------- Required JSON content type -----------------------

	if !isJSONContentType(r.Header.Get("Content-Type")) {
		siw.ErrorHandlerFunc(w, r, errs.ErrContentType)
		return
	}

	// ------------- Parse and validate request body params -----------

	var params CreateOrderParams

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			siw.ErrorHandlerFunc(w, r, errs.ErrInvalidPayload)
			return
		}
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	for name, missing := range map[string]bool{
		"client_id":   params.ClientID == 0,
		"supplier_id": params.SupplierID == 0,
		"name":        params.Name == "",
		"status":      params.Status == "",
	} {
		if missing {
			siw.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: name})
			return
		}
	}

	siw.Handler.CreateOrder(w, r, params)
}

// Update order operation middleware.
func (siw *ServerInterfaceWrapper) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	idParam, ok := siw.orderID(w, r)
	if !ok {
		return
	}

	if !isJSONContentType(r.Header.Get("Content-Type")) {
		siw.ErrorHandlerFunc(w, r, errs.ErrContentType)
		return
	}

	var params UpdateOrderParams

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			siw.ErrorHandlerFunc(w, r, errs.ErrInvalidPayload)
			return
		}
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	params.ID = idParam.ID

	siw.Handler.UpdateOrder(w, r, params)
}

// Delete order operation middleware.
func (siw *ServerInterfaceWrapper) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	params, ok := siw.orderID(w, r)
	if !ok {
		return
	}
	siw.Handler.DeleteOrder(w, r, params)
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// Middlewares guard the mutating routes; reads stay public for the
	// dashboard.
	Middlewares []MiddlewareFunc
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
		r.Get(options.BaseURL+"/orders", si.ListOrders)
		r.Get(options.BaseURL+"/orders/{id}", wrapper.GetOrder)
	})

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/orders", wrapper.CreateOrder)
		r.Put(options.BaseURL+"/orders/{id}", wrapper.UpdateOrder)
		r.Delete(options.BaseURL+"/orders/{id}", wrapper.DeleteOrder)
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
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrContentType) ||
		errors.Is(err, errs.ErrRequiredBodyParam):
		code = http.StatusBadRequest

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Conflict (409).
	case errors.Is(err, errs.ErrAlreadyExists) ||
		errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// isJSONContentType returns true if the content type is application/json.
func isJSONContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i > -1 {
		contentType = contentType[0:i]
	}
	return contentType == "application/json"
}
