package apidoc

import (
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig/v3"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	Title   string
	SpecURL string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.Title = title
	}
}

// WithDocsSpecURL sets the URL the docs UI loads the document from.
// Defaults to /openapi.json.
func WithDocsSpecURL(url string) DocsOption {
	return func(c *docsConfig) {
		c.SpecURL = url
	}
}

var docsTemplate = template.Must(template.New("docs").Funcs(sprig.HtmlFuncMap()).Parse(docsHTML))

// ServeDocs serves an interactive API documentation UI at the given path.
// It renders Stoplight Elements pointing at the router's OpenAPI spec.
func (r *Router) ServeDocs(path string, opts ...DocsOption) {
	cfg := &docsConfig{
		Title:   r.title,
		SpecURL: "/openapi.json",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := docsTemplate.Execute(w, cfg); err != nil {
			r.logger.ErrorContext(req.Context(), "render docs", "error", err)
		}
	})
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title | trim | default "API Reference" }}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{ .SpecURL }}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`
