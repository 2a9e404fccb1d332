package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	w      http.ResponseWriter
	status int
	size   int
	wrote  bool
}

func (rw *responseWriter) Header() http.Header { return rw.w.Header() }
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.w.Write(b)
	rw.size += n
	return n, err
}
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wrote {
		return
	}
	rw.wrote = true
	rw.status = code
	rw.w.WriteHeader(code)
}

// Logging пишет строку на каждый запрос и кладёт в контекст логгер с rid,
// достать его в хендлере можно через zerolog.Ctx(r.Context()).
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.With().Str("rid", GetRequestID(r)).Logger()
			rw := &responseWriter{w: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(reqLog.WithContext(r.Context())))

			ev := reqLog.Info()
			if rw.status >= 500 {
				ev = reqLog.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("dur", time.Since(start)).
				Int("size", rw.size).
				Msg("http")
		})
	}
}
