package server

import (
	"time"

	"github.com/rs/zerolog"

	"httpserve/internal/request"
	"httpserve/internal/response"
)

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain applies middleware around h; the first middleware is outermost.
func Chain(h Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// RecoveryMiddleware converts handler panics into a 500 response so one
// request cannot take its connection goroutine down uncleanly.
func RecoveryMiddleware(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *request.Request) (resp response.Response) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("method", string(req.Method)).
						Str("path", req.Path).
						Msg("handler panicked")
					resp = response.New(response.StatusInternalServerError, nil, nil)
				}
			}()
			return next(req)
		}
	}
}

// LoggingMiddleware logs one line per routed request.
func LoggingMiddleware(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *request.Request) response.Response {
			start := time.Now()
			resp := next(req)
			log.Info().
				Str("method", string(req.Method)).
				Str("path", req.Path).
				Int("status", int(resp.Status)).
				Dur("elapsed", time.Since(start)).
				Msg("request")
			return resp
		}
	}
}

// MetricsMiddleware records status and latency for every routed request.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next Handler) Handler {
		return func(req *request.Request) response.Response {
			start := time.Now()
			resp := next(req)
			m.RecordRequest(int(resp.Status), time.Since(start))
			return resp
		}
	}
}
