package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover гасит панику обработчика и отвечает JSON 500 с id запроса.
// http.ErrAbortHandler пробрасывается дальше: net/http обрывает соединение молча.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				// Recover стоит снаружи RequestID, id виден только в заголовке ответа
				rid := GetRequestID(r)
				if rid == "" {
					rid = w.Header().Get(headerRequestID)
				}
				logger.Error().
					Str("rid", rid).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprint(rec)).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")

				body := map[string]string{"error": "internal"}
				if rid != "" {
					body["request_id"] = rid
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
