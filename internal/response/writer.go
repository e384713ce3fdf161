package response

import (
	"bytes"
	"fmt"
	"io"
)

// WriteTo serializes the response and writes every byte to w, retrying
// short writes. Serialization itself never fails: a status outside the
// table degrades the entire response to the 500 line with no headers and
// no body, discarding whatever was set on the input. Only writer errors
// are returned.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	reason, ok := statusText[r.Status]
	if !ok {
		r = New(StatusInternalServerError, nil, nil)
		reason = statusText[StatusInternalServerError]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/%d.%d %d %s\r\n", r.Major, r.Minor, r.Status, reason)
	for _, f := range r.Headers.All() {
		fmt.Fprintf(&buf, "%s: %s\r\n", f.Name, f.Value)
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	return writeFull(w, buf.Bytes())
}

// writeFull pushes data to w until every byte is out or a write fails.
func writeFull(w io.Writer, data []byte) (int64, error) {
	var written int64
	for len(data) > 0 {
		n, err := w.Write(data)
		written += int64(n)
		if err != nil {
			return written, err
		}
		data = data[n:]
	}
	return written, nil
}
