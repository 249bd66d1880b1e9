package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
)

// RegisterParams defines parameters for Register.
type RegisterParams struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginParams defines parameters for Login.
type LoginParams struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Registration (POST /api/user/register).
	Register(w http.ResponseWriter, r *http.Request, params RegisterParams)
	// Authentication (POST /api/user/login).
	Login(w http.ResponseWriter, r *http.Request, params LoginParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// credentials parses and validates a login/password body shared by both
// operations.
func (siw *ServerInterfaceWrapper) credentials(w http.ResponseWriter, r *http.Request) (login, password string, ok bool) {
	defer r.Body.Close()

	var params struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			siw.ErrorHandlerFunc(w, r, errs.ErrInvalidPayload)
			return "", "", false
		}
		siw.ErrorHandlerFunc(w, r, err)
		return "", "", false
	}

	// ------------- Required JSON body parameter "login" -------------

	if params.Login == "" {
		siw.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: "login"})
		return "", "", false
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: "password"})
		return "", "", false
	}

	return params.Login, params.Password, true
}

// Register operation middleware.
func (siw *ServerInterfaceWrapper) Register(w http.ResponseWriter, r *http.Request) {
	login, password, ok := siw.credentials(w, r)
	if !ok {
		return
	}
	siw.Handler.Register(w, r, RegisterParams{Login: login, Password: password})
}

// Login operation middleware.
func (siw *ServerInterfaceWrapper) Login(w http.ResponseWriter, r *http.Request) {
	login, password, ok := siw.credentials(w, r)
	if !ok {
		return
	}
	siw.Handler.Login(w, r, LoginParams{Login: login, Password: password})
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
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
		r.Post(options.BaseURL+"/user/register", wrapper.Register)
		r.Post(options.BaseURL+"/user/login", wrapper.Login)
	})

	return r
}
