package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/nzbget-exporter/internal/reqid"
)

const headerRequestID = "X-Request-ID"

// requestID honors an incoming X-Request-ID or generates a UUIDv4, stores it
// in the request context and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(reqid.With(r.Context(), id)))
	})
}

type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// accessLog logs every request at debug level, or warn for 4xx/5xx.
func accessLog(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &rwLogger{ResponseWriter: w}
			next.ServeHTTP(rw, r)
			if rw.status == 0 {
				rw.status = http.StatusOK
			}

			level := slog.LevelDebug
			if rw.status >= 400 {
				level = slog.LevelWarn
			}
			reqid.Logger(r.Context(), l).Log(r.Context(), level, "http request",
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.status,
				"remote", r.RemoteAddr,
				"ua", r.UserAgent(),
				"dur_ms", time.Since(start).Milliseconds(),
				"bytes", rw.bytes)
		})
	}
}
