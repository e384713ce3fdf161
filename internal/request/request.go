// Package request turns raw byte streams into parsed HTTP/1.1 requests.
//
// Parsing is incremental: the parser accumulates short socket reads in an
// append-only buffer and resumes where it left off, so it works against
// arbitrarily fragmented input. It consumes exactly the bytes belonging to
// one request; the body is cut at the declared Content-Length.
package request

import (
	"io"
	"strconv"

	"httpserve/internal/headers"
)

// Method is the closed set of supported request methods. Anything else on
// the wire is a parse failure, not a variant.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Request is one parsed HTTP request. It is built fresh per connection and
// not mutated after parsing completes.
type Request struct {
	Method  Method
	Path    string // raw request target, no percent-decoding
	Major   int
	Minor   int
	Headers *headers.Headers
	Body    []byte
}

// RequestFromReader reads exactly one request from r, pulling more bytes on
// demand until the grammar is satisfied. End-of-stream before that point is
// ErrUnexpectedEOF.
func RequestFromReader(r io.Reader) (*Request, error) {
	req := &Request{Headers: headers.New()}
	p := newParser()

	if err := p.run(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ContentLength returns the declared body length: the integer value of the
// content-length header, or 0 when the header is absent or not an integer.
func (r *Request) ContentLength() int64 {
	v, ok := r.Headers.Get("content-length")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// UserAgent returns the user-agent header value, if any.
func (r *Request) UserAgent() (string, bool) {
	return r.Headers.Get("user-agent")
}
