package apidoc_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/apidoc"
)

type sessionResp struct {
	User string `json:"user"`
}

func (sessionResp) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: "session", Value: "s1"}}
}

func (sessionResp) SetHeaders(h http.Header) {
	h.Set("X-Session", "created")
}

func (sessionResp) StatusCode() int { return http.StatusAccepted }

func TestResponse_setters(t *testing.T) {
	t.Parallel()

	r := apidoc.New()
	apidoc.Post(r, "/session", func(_ context.Context, _ *apidoc.Void) (*sessionResp, error) {
		return &sessionResp{User: "ada"}, nil
	})

	resp, body := do(t, r, newRequest(http.MethodPost, "/session", nil))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "created", resp.Header.Get("X-Session"))
	require.Len(t, resp.Cookies(), 1)
	assert.Equal(t, "s1", resp.Cookies()[0].Value)
	assert.JSONEq(t, `{"user":"ada"}`, string(body))
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestResponse_stream(t *testing.T) {
	t.Parallel()

	tracker := &closeTracker{Reader: strings.NewReader("a,b\n")}

	r := apidoc.New()
	apidoc.Get(r, "/export", func(_ context.Context, _ *apidoc.Void) (*apidoc.Stream, error) {
		return &apidoc.Stream{ContentType: "text/csv", Body: tracker}, nil
	})
	apidoc.Get(r, "/blob", func(_ context.Context, _ *apidoc.Void) (*apidoc.Stream, error) {
		return &apidoc.Stream{Status: http.StatusPartialContent, Body: strings.NewReader("xy")}, nil
	})

	resp, body := do(t, r, newRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "a,b\n", string(body))
	assert.True(t, tracker.closed)

	resp, body = do(t, r, newRequest(http.MethodGet, "/blob", nil))
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "xy", string(body))
}

func TestResponse_pipe_reader(t *testing.T) {
	t.Parallel()

	r := apidoc.New()
	apidoc.Get(r, "/events", func(_ context.Context, _ *apidoc.Void) (*io.PipeReader, error) {
		pr, pw := io.Pipe()
		go func() {
			_, _ = pw.Write([]byte("tick\n"))
			_ = pw.Close()
		}()
		return pr, nil
	})

	resp, body := do(t, r, newRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tick\n", string(body))

	content := r.Spec().Paths["/events"]["get"].Responses["200"].Content
	require.Contains(t, content, "application/octet-stream")
	assert.Equal(t, "binary", content["application/octet-stream"].Schema.Format)
}

func TestRequest_stream(t *testing.T) {
	t.Parallel()

	r := apidoc.New()
	apidoc.Post(r, "/echo", func(_ context.Context, req *apidoc.Stream) (*apidoc.Stream, error) {
		return &apidoc.Stream{ContentType: req.ContentType, Body: req.Body}, nil
	})

	req := newRequest(http.MethodPost, "/echo", strings.NewReader("raw bytes"))
	req.Header.Set("Content-Type", "text/plain")
	resp, body := do(t, r, req)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "raw bytes", string(body))
}

func TestResponse_errors(t *testing.T) {
	t.Parallel()

	r := apidoc.New()
	apidoc.Get(r, "/missing", func(_ context.Context, _ *apidoc.Void) (*Item, error) {
		return nil, apidoc.Error(http.StatusNotFound, "no such item")
	})
	apidoc.Get(r, "/problem", func(_ context.Context, _ *apidoc.Void) (*Item, error) {
		return nil, &apidoc.ProblemDetail{Type: "https://example.com/conflict", Title: "Conflict", Status: http.StatusConflict}
	})
	apidoc.Get(r, "/plain", func(_ context.Context, _ *apidoc.Void) (*Item, error) {
		return nil, io.ErrUnexpectedEOF
	})

	tests := map[string]struct {
		path   string
		status int
		want   string
	}{
		"http error": {path: "/missing", status: http.StatusNotFound, want: `"detail":"no such item"`},
		"problem":    {path: "/problem", status: http.StatusConflict, want: `"type":"https://example.com/conflict"`},
		"plain":      {path: "/plain", status: http.StatusInternalServerError, want: `"title":"Internal Server Error"`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			resp, body := do(t, r, newRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), tc.want)
		})
	}
}
