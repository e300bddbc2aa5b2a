package apidoc

import (
	"net/http"
	"reflect"
)

// operationDoc is the hand-written part of an operation's documentation.
// Schemas come from the route's types; everything else lives here.
type operationDoc struct {
	summary     string
	description string
	tags        []string
	deprecated  bool
	errors      []int
	operationID string
}

// routeInfo is one registered route: what the mux dispatches to and what the
// document assembler describes.
type routeInfo struct {
	method  string
	pattern string
	status  int
	handler http.Handler

	// nil for Raw routes.
	reqType  reflect.Type
	respType reflect.Type

	doc operationDoc
}

func newRoute(method, pattern string, opts []RouteOption) routeInfo {
	ri := routeInfo{method: method, pattern: pattern}
	for _, opt := range opts {
		opt(&ri)
	}
	return ri
}

// RouteOption configures a route at registration time.
type RouteOption func(*routeInfo)

// WithStatus sets the success status. Defaults to 200, or 204 for Void responses.
func WithStatus(code int) RouteOption {
	return func(ri *routeInfo) { ri.status = code }
}

// WithSummary sets the operation summary.
func WithSummary(s string) RouteOption {
	return func(ri *routeInfo) { ri.doc.summary = s }
}

// WithDescription sets the operation description.
func WithDescription(d string) RouteOption {
	return func(ri *routeInfo) { ri.doc.description = d }
}

// WithTags appends operation tags after any group tags.
func WithTags(tags ...string) RouteOption {
	return func(ri *routeInfo) { ri.doc.tags = append(ri.doc.tags, tags...) }
}

// WithDeprecated marks the operation deprecated.
func WithDeprecated() RouteOption {
	return func(ri *routeInfo) { ri.doc.deprecated = true }
}

// WithErrors declares error status codes the route can answer with. Each is
// documented as an application/problem+json ProblemDetail, so two routes
// declaring errors share one ProblemDetail component.
func WithErrors(codes ...int) RouteOption {
	return func(ri *routeInfo) { ri.doc.errors = append(ri.doc.errors, codes...) }
}

// WithOperationID overrides the operationId derived from method and path.
func WithOperationID(id string) RouteOption {
	return func(ri *routeInfo) { ri.doc.operationID = id }
}
