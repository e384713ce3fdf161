package response

// statusText maps the status codes this server emits to their fixed reason
// phrases. A status outside this table does not serialize as-is: the whole
// response degrades to the bare 500 line (see Response.WriteTo).
var statusText = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// StatusText returns the reason phrase for a status code and whether the
// code is in the table.
func StatusText(code StatusCode) (string, bool) {
	text, ok := statusText[code]
	return text, ok
}
