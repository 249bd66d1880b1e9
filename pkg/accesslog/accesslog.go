package accesslog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
)

// Handler returns a middleware that records an entry for every request:
// method, path, status, response size and duration.
func Handler(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.With(r.Context(),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				).Info("request completed")
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(f)
	}
}
