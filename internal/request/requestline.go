package request

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrUnknownMethod        = errors.New("unknown HTTP method")
	ErrMalformedVersion     = errors.New("malformed HTTP version")
)

var crlf = []byte("\r\n")

// parseRequestLine parses: METHOD SP TARGET SP HTTP/MAJOR.MINOR CRLF
// Returns bytesConsumed == 0 (no error) when the line is not complete yet.
func parseRequestLine(data []byte) (Method, string, int, int, int, error) {
	idx := bytes.Index(data, crlf)
	if idx == -1 {
		// Need more data
		return "", "", 0, 0, 0, nil
	}

	line := data[:idx]
	consumed := idx + 2

	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 {
		return "", "", 0, 0, 0, ErrMalformedRequestLine
	}

	method, err := parseMethod(string(parts[0]))
	if err != nil {
		return "", "", 0, 0, 0, err
	}

	// The target is taken verbatim, no decoding or validation of form.
	path := string(parts[1])
	if path == "" {
		return "", "", 0, 0, 0, ErrMalformedRequestLine
	}

	major, minor, err := parseVersion(string(parts[2]))
	if err != nil {
		return "", "", 0, 0, 0, err
	}

	return method, path, major, minor, consumed, nil
}

func parseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodGet, MethodPost:
		return Method(s), nil
	default:
		return "", ErrUnknownMethod
	}
}

// parseVersion parses the literal prefix "HTTP/" followed by
// one-or-more digits, '.', one-or-more digits.
func parseVersion(s string) (int, int, error) {
	rest, ok := strings.CutPrefix(s, "HTTP/")
	if !ok {
		return 0, 0, ErrMalformedVersion
	}

	majorStr, minorStr, ok := strings.Cut(rest, ".")
	if !ok || !isDigits(majorStr) || !isDigits(minorStr) {
		return 0, 0, ErrMalformedVersion
	}

	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return 0, 0, ErrMalformedVersion
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return 0, 0, ErrMalformedVersion
	}

	return major, minor, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
