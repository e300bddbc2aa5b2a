package apidoc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/time/rate"
)

// specCache holds the last encoded document and its entity tag. A limiter
// decides when a request may pay for a rebuild; everyone else gets the
// cached bytes.
type specCache struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	current encodedSpec
}

// encodedSpec is one build of the document.
type encodedSpec struct {
	data []byte
	etag string
}

// newSpecCache returns a cache that rebuilds at most once per interval.
// A zero interval rebuilds every time.
func newSpecCache(interval time.Duration) *specCache {
	if interval <= 0 {
		return &specCache{}
	}
	return &specCache{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// get returns the cached document, rebuilding it with build when allowed.
func (c *specCache) get(build func() ([]byte, error)) (encodedSpec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	allowed := c.limiter == nil || c.limiter.Allow()
	if c.current.data != nil && !allowed {
		return c.current, nil
	}

	data, err := build()
	if err != nil {
		return encodedSpec{}, err
	}
	sum := sha256.Sum256(data)
	c.current = encodedSpec{data: data, etag: hex.EncodeToString(sum[:8])}
	return c.current, nil
}

// specJSON returns the compact JSON encoding of the document, served from
// the router's cache.
func (r *Router) specJSON() (encodedSpec, error) {
	return r.cache.get(func() ([]byte, error) {
		return json.Marshal(r.Spec())
	})
}

// ServeSpec registers a GET handler at the given path that serves
// the OpenAPI spec as JSON. Responses carry an ETag, and a matching
// If-None-Match answers 304 Not Modified.
func (r *Router) ServeSpec(pattern string) {
	r.serveSpec(pattern, "application/json", "", func(w io.Writer, data []byte) error {
		_, err := w.Write(data)
		return err
	})
}

// ServeSpecYAML registers a GET handler at the given path that serves
// the OpenAPI spec as YAML, with the same conditional request handling as
// ServeSpec.
func (r *Router) ServeSpecYAML(pattern string) {
	r.serveSpec(pattern, "application/yaml", "-yaml", writeYAML)
}

// serveSpec registers a handler writing the cached document through write.
// suffix keeps the entity tags of different representations apart.
func (r *Router) serveSpec(pattern, contentType, suffix string, write func(io.Writer, []byte) error) {
	r.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, req *http.Request) {
		spec, err := r.specJSON()
		if err != nil {
			r.logger.ErrorContext(req.Context(), "encode spec", "error", err)
			writeErrorResponse(w, err)
			return
		}

		etag := `"` + spec.etag + suffix + `"`
		w.Header().Set("ETag", etag)
		if match := req.Header.Get("If-None-Match"); match != "" && (match == "*" || strings.Contains(match, etag)) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", contentType)
		if err := write(w, spec.data); err != nil {
			r.logger.ErrorContext(req.Context(), "write spec", "error", err)
		}
	})
}

// WriteSpec writes the OpenAPI spec as indented JSON to w.
func (r *Router) WriteSpec(w io.Writer) error {
	data, err := json.Marshal(r.Spec())
	if err != nil {
		return err
	}
	_, err = w.Write(indentJSON(data))
	return err
}

// WriteSpecYAML writes the OpenAPI spec as YAML to w.
func (r *Router) WriteSpecYAML(w io.Writer) error {
	data, err := json.Marshal(r.Spec())
	if err != nil {
		return err
	}
	return writeYAML(w, data)
}

// ValidateSpec loads the generated document with an independent OpenAPI
// implementation and validates it. Failures wrap ErrInvalidSpec.
func (r *Router) ValidateSpec(ctx context.Context) error {
	data, err := json.Marshal(r.Spec())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrInvalidSpec, err)
	}

	// contentEncoding is JSON Schema 2020-12 vocabulary the 3.0 model lacks.
	if err := doc.Validate(ctx, openapi3.AllowExtraSiblingFields("contentEncoding")); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return nil
}
