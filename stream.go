package apidoc

import (
	"io"
	"net/http"
)

// Stream is a binary body. Return *Stream from a handler to bypass
// encoding, or take it as the request type to read the raw body. It is
// documented as application/octet-stream with the shared Stream schema.
type Stream struct {
	ContentType string
	Status      int
	Body        io.Reader
}

// writeStream copies a Stream to the response.
func writeStream(w http.ResponseWriter, s *Stream, defaultStatus int) {
	contentType := s.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	status := s.Status
	if status == 0 {
		status = defaultStatus
	}
	w.WriteHeader(status)

	if s.Body == nil {
		return
	}
	//nolint:errcheck,gosec // best-effort streaming copy
	io.Copy(w, s.Body)
	if c, ok := s.Body.(io.Closer); ok {
		c.Close() //nolint:errcheck,gosec // body already delivered
	}
}
