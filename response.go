package apidoc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// CookieSetter is optionally implemented by response types to set cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

// HeaderSetter is optionally implemented by response types to set response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// encodeResponse writes the response to the http.ResponseWriter. Streams
// bypass encoding; everything else is encoded with the codec the Accept
// header selects.
func encodeResponse(w http.ResponseWriter, r *http.Request, resp any, defaultStatus int, codecs *codecRegistry) {
	switch s := resp.(type) {
	case *Stream:
		writeStream(w, s, defaultStatus)
		return
	case *io.PipeReader:
		writeStream(w, &Stream{Body: s}, defaultStatus)
		return
	}

	if cs, ok := resp.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}

	status := defaultStatus
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	enc, ok := codecs.negotiate(r.Header.Get("Accept"))
	if !ok {
		writeErrorResponse(w, Errorf(http.StatusNotAcceptable, "no encoder for %q", r.Header.Get("Accept")))
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, resp)
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var problem *ProblemDetail
	if !errors.As(err, &problem) {
		status := ErrorStatus(err)
		problem = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(problem)
}
