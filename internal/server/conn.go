package server

import (
	"net"
	"time"

	"httpserve/internal/request"
	"httpserve/internal/response"
)

// serveConn handles one connection end-to-end and closes it exactly once.
// Every fault on this path stops at this frame.
func (s *Server) serveConn(conn net.Conn) {
	defer s.conns.Done()

	s.metrics.ActiveConnections.Add(1)
	defer s.metrics.ActiveConnections.Add(-1)

	// Peer address is best-effort diagnostics; its absence never aborts
	// the connection.
	peer := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		peer = addr.String()
	}
	log := s.log.With().Str("peer", peer).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("connection handler panicked")
		}
		conn.Close()
	}()

	log.Debug().Msg("connection accepted")
	start := time.Now()

	if s.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	req, err := request.RequestFromReader(conn)
	if err != nil {
		log.Warn().Err(err).Msg("request parse failed")
		s.sendServerError(conn)
		s.metrics.RecordRequest(int(response.StatusInternalServerError), time.Since(start))
		return
	}

	resp := s.chain(req)

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if _, err := resp.WriteTo(conn); err != nil {
		// Mid-transmission faults abort the connection; the client gets
		// whatever bytes made it out, never a retry of the response.
		log.Warn().Err(err).Msg("response write failed")
		return
	}

	log.Debug().
		Str("method", string(req.Method)).
		Str("path", req.Path).
		Int("status", int(resp.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("connection served")

	// Shut down the write side so the peer sees a clean EOF before the
	// deferred close tears the socket down.
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite()
	}
}

// sendServerError answers a parse failure with the bare 500 response.
// Write errors are ignored here: the connection is closing either way.
func (s *Server) sendServerError(conn net.Conn) {
	resp := response.New(response.StatusInternalServerError, nil, nil)
	resp.WriteTo(conn)
}
