package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/solana_layer/internal/logging"
	"github.com/R3E-Network/solana_layer/internal/metrics"
)

const (
	traceHeader = "X-Trace-ID"

	// maxTraceIDLen bounds caller-supplied trace IDs; a UUID is 36.
	maxTraceIDLen = 64

	unmatchedRoute = "unmatched"
)

// LoggingMiddleware assigns the request a trace ID, stores the matched route
// template in the context, and logs the request once it completes.
func LoggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(traceHeader)
			if !validTraceID(traceID) {
				traceID = logging.NewTraceID()
			}
			w.Header().Set(traceHeader, traceID)

			ctx := logging.WithRoute(logging.WithTraceID(r.Context(), traceID), routeTemplate(r))
			r = r.WithContext(ctx)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			logger.LogRequest(ctx, logging.Request{
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   rw.statusCode,
				Bytes:    rw.bytes,
				Duration: time.Since(start),
			})
		})
	}
}

// MetricsMiddleware records request count, latency and in-flight gauge,
// labelled by route template so path parameters cannot explode cardinality.
func MetricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.IncrementInFlight()
			defer m.DecrementInFlight()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.RecordHTTPRequest(r.Method, routeTemplate(r), rw.statusCode, time.Since(start))
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := logging.GetRoute(r.Context()); route != "" {
		return route
	}
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return unmatchedRoute
}

// validTraceID accepts short IDs made of letters, digits, '-' and '_' so a
// caller cannot inject arbitrary text into logs and response headers.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}
