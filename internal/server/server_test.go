package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpserve/internal/request"
	"httpserve/internal/response"
	"httpserve/internal/router"
)

// startTestServer runs a server on an ephemeral loopback port and returns
// its address together with the server for metric checks.
func startTestServer(t *testing.T, handler Handler) (string, *Server) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(DefaultConfig(), handler, zerolog.Nop())
	go s.Serve(ln)
	t.Cleanup(func() { s.Close() })

	return ln.Addr().String(), s
}

// exchange writes one raw request and reads the whole raw response.
func exchange(t *testing.T, addr, raw string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(got)
}

func TestRootEndToEnd(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, _ := startTestServer(t, rt.Route)

	got := exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")

	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", got)
}

func TestEchoEndToEnd(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, _ := startTestServer(t, rt.Route)

	got := exchange(t, addr, "GET /echo/abc HTTP/1.1\r\n\r\n")

	assert.True(t, strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n"), "got %q", got)
	assert.Contains(t, got, "Content-Type: text/plain\r\n")
	assert.Contains(t, got, "Content-Length: 3\r\n")
	assert.True(t, strings.HasSuffix(got, "\r\n\r\nabc"), "got %q", got)
}

func TestParseFailureAnswers500(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, _ := startTestServer(t, rt.Route)

	got := exchange(t, addr, "BREW / HTTP/1.1\r\n\r\n")

	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", got)
}

func TestTruncatedRequestAnswers500(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, _ := startTestServer(t, rt.Route)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Declare a body, send half of it, then hang up.
	_, err = conn.Write([]byte("POST /files/x HTTP/1.1\r\nContent-Length: 10\r\n\r\n1234"))
	require.NoError(t, err)
	tc := conn.(*net.TCPConn)
	require.NoError(t, tc.CloseWrite())

	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", string(got))
}

func TestHandlerPanicAnswers500(t *testing.T) {
	addr, _ := startTestServer(t, func(req *request.Request) response.Response {
		panic("boom")
	})

	got := exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")

	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\r\n\r\n", got)
}

func TestPanicDoesNotStopAcceptLoop(t *testing.T) {
	var calls atomic.Int32
	addr, _ := startTestServer(t, func(req *request.Request) response.Response {
		if calls.Add(1) == 1 {
			panic("first connection dies")
		}
		return response.New(response.StatusOK, nil, nil)
	})

	exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")
	got := exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")

	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", got)
}

func TestConcurrentConnections(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, _ := startTestServer(t, rt.Route)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("conn-%d", i)
			got := exchange(t, addr, "GET /echo/"+body+" HTTP/1.1\r\n\r\n")
			assert.True(t, strings.HasSuffix(got, "\r\n\r\n"+body), "got %q", got)
		}(i)
	}
	wg.Wait()
}

func TestMetricsRecorded(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, srv := startTestServer(t, rt.Route)

	exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")
	exchange(t, addr, "GET /nope HTTP/1.1\r\n\r\n")

	stats := srv.Stats()
	assert.Equal(t, int64(2), stats.RequestsTotal)
	assert.Equal(t, int64(1), stats.Errors4xx)

	// The connection goroutines may still be unwinding when the client
	// sees EOF; wait for the active count to settle.
	require.Eventually(t, func() bool {
		return srv.Stats().ActiveConnections == 0
	}, time.Second, 10*time.Millisecond)
}

func TestShutdown(t *testing.T) {
	rt := router.New(t.TempDir())
	addr, srv := startTestServer(t, rt.Route)

	exchange(t, addr, "GET / HTTP/1.1\r\n\r\n")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// The listener is gone after shutdown.
	_, err := net.Dial("tcp", addr)
	assert.Error(t, err)
}

func TestLoggingMiddlewareOrder(t *testing.T) {
	// Chain applies the first middleware outermost.
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(req *request.Request) response.Response {
				order = append(order, name)
				return next(req)
			}
		}
	}

	h := Chain(func(req *request.Request) response.Response {
		order = append(order, "handler")
		return response.New(response.StatusOK, nil, nil)
	}, mark("outer"), mark("inner"))

	h(&request.Request{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
