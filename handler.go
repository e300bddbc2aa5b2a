package apidoc

import (
	"context"
	"net/http"
)

// Void is used as a type parameter when a request has no parameters/body
// or a response has no body (results in 204 No Content).
type Void struct{}

// Handler is the core typed handler signature. The framework owns
// serialization and documentation; handlers never see http.ResponseWriter
// or *http.Request.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// RawHandler is an escape hatch for WebSocket upgrades or anything that
// needs direct access to the underlying http primitives.
type RawHandler func(w http.ResponseWriter, r *http.Request)

// SelfValidator is implemented by request types that validate themselves.
// It runs after constraint tags and before the router's Validator.
type SelfValidator interface {
	Validate() error
}

// Validator validates any request.
type Validator interface {
	Validate(req any) error
}
