// Access-log middleware: one record per request, panics included.

package engine

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/staticmock/staticmock/pkg/logbus"
	"github.com/staticmock/staticmock/pkg/metrics"
)

// accessWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type accessWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       uint64
}

func (w *accessWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *accessWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.status = http.StatusOK
		w.wroteHeader = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += uint64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *accessWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// accessLogMiddleware wraps the whole routing table so that the fallback
// 404 and panic 500 paths also produce exactly one record. It is the only
// place records are published.
func accessLogMiddleware(bus *logbus.Bus, reg *metrics.Registry, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := &accessWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				status := aw.status
				var size *uint64
				if rec := recover(); rec != nil {
					log.Error("handler panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
					status = http.StatusInternalServerError
					if !aw.wroteHeader {
						http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					}
					// Size is not determinable on the panic path.
				} else {
					n := aw.bytes
					size = &n
				}

				elapsed := time.Since(start)
				bus.Publish(logbus.NewRecord(start, r.Method, r.URL.Path, uint16(status), size, elapsed))

				if reg != nil {
					reg.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
					reg.RequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
				}
			}()

			next.ServeHTTP(aw, r)
		})
	}
}
