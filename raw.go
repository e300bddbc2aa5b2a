package apidoc

import (
	"cmp"
	"net/http"
)

// RawRequest can be embedded in a request type to get access to
// the underlying *http.Request. It never appears in a schema.
type RawRequest struct {
	Request *http.Request
}

// OperationInfo documents a raw route. Raw routes have no Go types to
// describe, so the operation carries no request or response schema beyond
// declared errors.
type OperationInfo struct {
	Summary     string
	Description string
	Tags        []string
	Status      int
	Errors      []int
	OperationID string
}

// Raw registers an untyped handler, for WebSocket upgrades, webhooks and
// anything else that needs the http primitives.
func Raw(reg Registrar, method, pattern string, h RawHandler, info OperationInfo) {
	ri := newRoute(method, pattern, nil)
	ri.status = cmp.Or(info.Status, http.StatusOK)
	ri.doc = operationDoc{
		summary:     info.Summary,
		description: info.Description,
		tags:        info.Tags,
		errors:      info.Errors,
		operationID: info.OperationID,
	}
	ri.handler = wrap(http.HandlerFunc(h), reg.routeMiddleware())
	reg.addRoute(ri)
}
