// Package server owns the TCP accept loop and per-connection lifecycle.
//
// One goroutine serves one connection end-to-end: parse, route, serialize,
// close. Faults are isolated at the connection boundary; nothing a single
// connection does can take down the accept loop or touch another
// connection. Writes to a peer that already hung up surface as ordinary
// I/O errors on the socket, not as a process-level signal.
package server

import (
	"context"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"httpserve/internal/request"
	"httpserve/internal/response"
)

// Handler computes a response for one parsed request.
type Handler func(*request.Request) response.Response

// Config carries the server's tunables.
type Config struct {
	Addr      string
	FilesRoot string

	// Zero disables the deadline; the default contract is unbounded
	// blocking reads and writes.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the reference configuration: loopback listener,
// system temp directory as the publish root, no deadlines.
func DefaultConfig() Config {
	return Config{
		Addr:      "127.0.0.1:4221",
		FilesRoot: os.TempDir(),
	}
}

// Server accepts connections and serves one request per connection.
type Server struct {
	cfg        Config
	handler    Handler
	chain      Handler // handler wrapped in middleware, built on serve
	middleware []Middleware
	log        zerolog.Logger
	metrics    *Metrics

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
	conns    sync.WaitGroup
}

// New builds a server around a handler. Panic recovery and metrics
// recording are installed up front; metrics sit outermost so recovered
// panics are still counted as 500s.
func New(cfg Config, handler Handler, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		log:     log,
		metrics: NewMetrics(),
	}
	s.middleware = []Middleware{
		MetricsMiddleware(s.metrics),
		RecoveryMiddleware(log),
	}
	return s
}

// Use appends middleware. Must be called before ListenAndServe or Serve.
func (s *Server) Use(mw Middleware) {
	s.middleware = append(s.middleware, mw)
}

// ListenAndServe listens on the configured address and serves until the
// server is closed.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln. It returns nil after Close, otherwise
// the accept error that stopped it.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.chain = Chain(s.handler, s.middleware...)

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			s.log.Error().Err(err).Msg("accept failed")
			continue
		}

		s.conns.Add(1)
		go s.serveConn(conn)
	}
}

// Close stops accepting new connections. In-flight connections finish on
// their own; use Shutdown to wait for them.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

// Shutdown closes the listener and waits for in-flight connections until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Close()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the server's counters.
func (s *Server) Stats() MetricsSnapshot {
	return s.metrics.Snapshot()
}
