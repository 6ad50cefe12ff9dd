package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Recover catches panics at the top of the request pipeline, logs them with
// full context and answers a generic 500 without leaking internals.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while handling request",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"detail": "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
