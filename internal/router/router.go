// Package router maps parsed requests to responses.
//
// Dispatch is an ordered decision list over (method, path); the first match
// wins and every reachable path yields a concrete status, so routing is a
// total function. File routes resolve names by raw suffix concatenation
// under the publish root: no canonicalization, no traversal protection.
// That is a deliberate scope decision, not an oversight.
package router

import (
	"os"
	"strings"

	"httpserve/internal/headers"
	"httpserve/internal/request"
	"httpserve/internal/response"
)

const (
	echoPrefix  = "/echo/"
	filesPrefix = "/files/"
)

// supportedEncodings is the server's fixed content-coding set, matched
// case-sensitively against accept-encoding tokens.
var supportedEncodings = []string{"gzip"}

// Router dispatches requests against a publish directory.
type Router struct {
	root string
}

func New(root string) *Router {
	return &Router{root: root}
}

// Route computes the response for one request. It never fails; unexpected
// outcomes surface as statuses.
func (rt *Router) Route(req *request.Request) response.Response {
	switch {
	case req.Method == request.MethodPost && strings.HasPrefix(req.Path, filesPrefix):
		return rt.writeFile(req)

	case req.Method == request.MethodPost:
		return response.New(response.StatusNotFound, nil, nil)

	case req.Method == request.MethodGet && req.Path == "/":
		return response.New(response.StatusOK, nil, nil)

	case req.Method == request.MethodGet && strings.HasPrefix(req.Path, echoPrefix):
		return echo(req)

	case req.Method == request.MethodGet && req.Path == "/user-agent":
		return userAgent(req)

	case req.Method == request.MethodGet && strings.HasPrefix(req.Path, filesPrefix):
		return rt.readFile(req)

	default:
		return response.New(response.StatusNotFound, nil, nil)
	}
}

// echo answers with the path suffix after /echo/ as a text/plain body.
func echo(req *request.Request) response.Response {
	body := []byte(req.Path[len(echoPrefix):])

	h := headers.New()
	h.Add("Content-Type", "text/plain")
	if enc, ok := negotiateEncoding(req); ok {
		h.Add("Content-Encoding", enc)
	}
	return response.New(response.StatusOK, h, body)
}

// userAgent answers with the client's user-agent header, or the literal
// "unknown" when the client sent none.
func userAgent(req *request.Request) response.Response {
	ua, ok := req.UserAgent()
	if !ok {
		ua = "unknown"
	}

	h := headers.New()
	h.Add("Content-Type", "text/plain")
	return response.New(response.StatusOK, h, []byte(ua))
}

// writeFile stores the request body under the publish root, creating or
// truncating the file. Any write failure answers 404: the route cannot tell
// "not writable" from "not there", and both read as resource unavailable.
func (rt *Router) writeFile(req *request.Request) response.Response {
	name := req.Path[len(filesPrefix):]

	if err := os.WriteFile(rt.root+"/"+name, req.Body, 0o644); err != nil {
		return response.New(response.StatusNotFound, nil, nil)
	}
	return response.New(response.StatusCreated, nil, nil)
}

// readFile serves a regular file under the publish root as an octet-stream.
func (rt *Router) readFile(req *request.Request) response.Response {
	name := req.Path[len(filesPrefix):]
	path := rt.root + "/" + name

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return response.New(response.StatusNotFound, nil, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return response.New(response.StatusNotFound, nil, nil)
	}

	h := headers.New()
	h.Add("Content-Type", "application/octet-stream")
	if enc, ok := negotiateEncoding(req); ok {
		h.Add("Content-Encoding", enc)
	}
	return response.New(response.StatusOK, h, data)
}

// negotiateEncoding picks the first accept-encoding token, in client
// preference order, that exactly matches a supported coding. The body is
// never transformed; only the Content-Encoding header is negotiated.
func negotiateEncoding(req *request.Request) (string, bool) {
	accept, ok := req.Headers.Get("accept-encoding")
	if !ok {
		return "", false
	}

	for _, token := range strings.Split(accept, ",") {
		token = strings.TrimSpace(token)
		for _, enc := range supportedEncodings {
			if token == enc {
				return enc, true
			}
		}
	}
	return "", false
}
