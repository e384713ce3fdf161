// Package response models HTTP responses and serializes them onto the wire.
package response

import (
	"strconv"

	"httpserve/internal/headers"
)

// StatusCode is an HTTP response status.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusNotFound            StatusCode = 404
	StatusInternalServerError StatusCode = 500
)

// Response is one HTTP response: built by a handler, serialized once,
// then discarded.
type Response struct {
	Major   int
	Minor   int
	Status  StatusCode
	Headers *headers.Headers
	Body    []byte
}

// New builds an HTTP/1.1 response. When the body is non-empty a
// Content-Length header matching its byte length is set here, so handlers
// never have to keep the two in sync themselves.
func New(status StatusCode, h *headers.Headers, body []byte) Response {
	if h == nil {
		h = headers.New()
	}
	if len(body) > 0 {
		h.Set("Content-Length", strconv.Itoa(len(body)))
	}
	return Response{
		Major:   1,
		Minor:   1,
		Status:  status,
		Headers: h,
		Body:    body,
	}
}
