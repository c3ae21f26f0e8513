package http

import (
	"context"
	"net/http"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/logs"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// LoggerMiddleware stores a logger tagged with the request id in the
// request context.
func LoggerMiddleware(logger logs.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())

			contextLogger := logger.With("request_id", requestID)

			ctx := context.WithValue(r.Context(), loggerKey, contextLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLoggerMiddleware(logger logs.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"client_ip", r.RemoteAddr,
					"user_agent", r.UserAgent(),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// LoggerFromContext returns the request logger, or fallback when the
// request did not pass through LoggerMiddleware.
func LoggerFromContext(ctx context.Context, fallback logs.Logger) logs.Logger {
	if l, ok := ctx.Value(loggerKey).(logs.Logger); ok {
		return l
	}
	return fallback
}
