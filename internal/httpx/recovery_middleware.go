package httpx

import (
	"net/http"
	"runtime/debug"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				LoggerFrom(r).WithField("panic", rec).
					WithField("stack", string(debug.Stack())).
					Error("panic recovered")

				if !rw.headerWritten {
					JSONError(rw, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
