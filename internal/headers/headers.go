package headers

import (
	"bytes"
	"fmt"
	"strings"
)

// Field is a single header as it appeared on the wire, after name
// lower-casing and value trimming.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered sequence of header fields. Insertion order is
// preserved and duplicate names are retained; lookups are case-insensitive
// and return the first match.
type Headers struct {
	fields []Field
}

func New() *Headers {
	return &Headers{}
}

// Get returns the first value for a header name.
func (h *Headers) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for a header name, in insertion order.
func (h *Headers) GetAll(name string) []string {
	var values []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Add appends a field. The name is stored as given.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set removes every field matching name and appends a single replacement.
func (h *Headers) Set(name, value string) {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	h.fields = append(kept, Field{Name: name, Value: value})
}

// Len returns the number of fields.
func (h *Headers) Len() int {
	return len(h.fields)
}

// All returns the fields in insertion order.
func (h *Headers) All() []Field {
	return h.fields
}

// Parse consumes complete "Name: value\r\n" lines from data, stopping at the
// bare CRLF that ends the header section. Names are lower-cased, values
// trimmed of surrounding whitespace. It returns the number of bytes consumed
// and whether the terminating empty line was seen; an incomplete trailing
// line consumes nothing.
func (h *Headers) Parse(data []byte) (int, bool, error) {
	read := 0
	done := false

	for {
		idx := bytes.Index(data[read:], []byte("\r\n"))
		if idx == -1 {
			// Need more data
			break
		}

		if idx == 0 {
			// Empty line = end of headers
			done = true
			read += 2
			break
		}

		line := data[read : read+idx]

		// Obsolete line folding, reject it
		if line[0] == ' ' || line[0] == '\t' {
			return read, false, fmt.Errorf("obsolete line folding not supported")
		}

		name, value, err := parseField(line)
		if err != nil {
			return read, done, err
		}

		h.Add(name, value)
		read += idx + 2
	}

	return read, done, nil
}

func parseField(line []byte) (string, string, error) {
	colonIdx := bytes.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("malformed header: no colon")
	}

	name := line[:colonIdx]
	value := line[colonIdx+1:]

	if len(name) == 0 {
		return "", "", fmt.Errorf("malformed header: empty name")
	}

	if bytes.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("malformed header: whitespace in name")
	}

	for _, b := range name {
		if !isValidFieldNameChar(b) {
			return "", "", fmt.Errorf("invalid character in header name: %c", b)
		}
	}

	value = bytes.TrimSpace(value)

	return strings.ToLower(string(name)), string(value), nil
}

func isValidFieldNameChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
