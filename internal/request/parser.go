package request

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	maxRequestLineSize = 8192    // 8KB for the request line
	maxHeaderBytes     = 1 << 20 // 1MB buffered before the header section must end
	readChunkSize      = 4096
)

var (
	ErrUnexpectedEOF       = errors.New("unexpected end of stream")
	ErrRequestLineTooLarge = errors.New("request line too large")
	ErrHeaderTooLarge      = errors.New("headers too large")
)

// parserState tracks which part of the grammar comes next.
type parserState int

const (
	stateRequestLine parserState = iota
	stateHeaders
	stateBody
	stateDone
)

// parser drives the request grammar incrementally over an append-only
// buffer. Each parse step reports how many bytes it consumed; zero consumed
// without an error means more input is needed.
type parser struct {
	state   parserState
	buffer  []byte
	bodyLen int // fixed by content-length once headers are done
}

// readBufPool recycles the per-connection scratch buffers used to pull
// bytes off the socket.
var readBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, readChunkSize)
		return &buf
	},
}

func newParser() *parser {
	return &parser{
		state:  stateRequestLine,
		buffer: make([]byte, 0, readChunkSize),
	}
}

// run reads from r until exactly one request has been parsed into req.
func (p *parser) run(r io.Reader, req *Request) error {
	readBuf := readBufPool.Get().(*[]byte)
	defer readBufPool.Put(readBuf)

	for p.state != stateDone {
		// Drain what we already have before reading more.
		if len(p.buffer) > 0 {
			consumed, err := p.parse(p.buffer, req)
			if err != nil {
				return err
			}
			if consumed > 0 {
				p.buffer = p.buffer[consumed:]
				continue
			}
		}

		if p.state != stateBody && len(p.buffer) >= maxHeaderBytes {
			return ErrHeaderTooLarge
		}

		n, err := r.Read(*readBuf)
		if n > 0 {
			p.buffer = append(p.buffer, (*readBuf)[:n]...)
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return ErrUnexpectedEOF
		}
		return fmt.Errorf("read request: %w", err)
	}

	return nil
}

// parse advances the state machine over buffered data and reports how many
// bytes were consumed.
func (p *parser) parse(data []byte, req *Request) (int, error) {
	switch p.state {
	case stateRequestLine:
		return p.parseRequestLine(data, req)
	case stateHeaders:
		return p.parseHeaders(data, req)
	case stateBody:
		return p.parseBody(data, req)
	case stateDone:
		return 0, nil
	default:
		return 0, fmt.Errorf("invalid parser state: %d", p.state)
	}
}

func (p *parser) parseRequestLine(data []byte, req *Request) (int, error) {
	if len(data) > maxRequestLineSize {
		return 0, ErrRequestLineTooLarge
	}

	method, path, major, minor, consumed, err := parseRequestLine(data)
	if err != nil {
		return 0, err
	}
	if consumed == 0 {
		// Need more data
		return 0, nil
	}

	req.Method = method
	req.Path = path
	req.Major = major
	req.Minor = minor

	p.state = stateHeaders
	return consumed, nil
}

func (p *parser) parseHeaders(data []byte, req *Request) (int, error) {
	consumed, done, err := req.Headers.Parse(data)
	if err != nil {
		return 0, err
	}
	if !done {
		return consumed, nil
	}

	// Header section complete; the body is exactly content-length bytes,
	// or absent.
	p.bodyLen = int(req.ContentLength())
	if p.bodyLen > 0 {
		p.state = stateBody
	} else {
		p.state = stateDone
	}
	return consumed, nil
}

// parseBody appends at most the declared number of body bytes; anything
// past the cutoff is left unconsumed.
func (p *parser) parseBody(data []byte, req *Request) (int, error) {
	remaining := p.bodyLen - len(req.Body)
	if remaining <= 0 {
		p.state = stateDone
		return 0, nil
	}

	toRead := min(remaining, len(data))
	req.Body = append(req.Body, data[:toRead]...)

	if len(req.Body) == p.bodyLen {
		p.state = stateDone
	}
	return toRead, nil
}
