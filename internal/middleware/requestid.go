package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

const (
	headerRequestID = "X-Request-ID"
	maxRequestIDLen = 64
)

// RequestID берёт X-Request-ID клиента, если он короткий и печатный, иначе выдаёт uuid.
// id попадает в ответ и в контекст запроса.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if !acceptableID(rid) {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), rid)))
		})
	}
}

func acceptableID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

// GetRequestID returns "" outside the RequestID middleware.
func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(ctxKey{}).(string)
	return rid
}
