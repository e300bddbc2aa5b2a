package apidoc

import (
	"net/http"
	"reflect"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Group implement it.
type Registrar interface {
	addRoute(ri routeInfo)
	root() *Router
	routeMiddleware() []Middleware
}

func (r *Router) root() *Router                 { return r }
func (r *Router) routeMiddleware() []Middleware { return nil }

// register binds a typed handler and records its types for the document.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	ri := newRoute(method, pattern, opts)
	ri.reqType = reflect.TypeFor[Req]()
	ri.respType = reflect.TypeFor[Resp]()

	switch {
	case ri.status != 0:
	case ri.respType == reflect.TypeFor[Void]():
		ri.status = http.StatusNoContent
	default:
		ri.status = http.StatusOK
	}

	ri.handler = wrap(buildHandler(h, ri.status, reg.root()), reg.routeMiddleware())
	reg.addRoute(ri)
}

// wrap applies route-level middleware (from a Group).
func wrap(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// buildHandler adapts a typed Handler to http.Handler: decode, validate,
// call, encode. Any error goes to the router's error writer.
func buildHandler[Req, Resp any](h Handler[Req, Resp], defaultStatus int, rt *Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest[Req](r, rt.codecs)
		if err == nil {
			err = rt.check(req)
		}
		if err != nil {
			rt.fail(w, r, err)
			return
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			rt.fail(w, r, err)
			return
		}

		if _, ok := any(resp).(*Void); ok || resp == nil {
			w.WriteHeader(defaultStatus)
			return
		}
		encodeResponse(w, r, resp, defaultStatus, rt.codecs)
	})
}

// check runs the validation chain in order: constraint tags, the request's
// own Validate, then the router-wide Validator.
func (r *Router) check(req any) error {
	if err := validateConstraints(req); err != nil {
		return err
	}
	if sv, ok := req.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	if r.validator != nil {
		return r.validator.Validate(req)
	}
	return nil
}

func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	if r.errorHandler != nil {
		r.errorHandler(w, req, err)
		return
	}
	writeErrorResponse(w, err)
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}
