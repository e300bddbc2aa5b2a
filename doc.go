// Package apidoc is a generics-first HTTP API framework that derives an
// OpenAPI 3.1 document from handler types.
//
// Handlers take and return Go types:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Routes are registered with package-level generic functions:
//
//	r := apidoc.New(apidoc.WithTitle("Todos"), apidoc.WithVersion("1.0.0"))
//	apidoc.Get[ListTodos, []Todo](r, "/todos", listTodos)
//	apidoc.Post[CreateTodo, Todo](r, "/todos", createTodo, apidoc.WithStatus(http.StatusCreated))
//
// Schemas come from the schema package. Every use of a type yields a
// fragment; structurally identical fragments collapse into one, and a
// fragment used in more than one place is hoisted into
// components/schemas under a unique name. Field tags such as doc, format,
// enum and minLength produce distinct fragments for the same Go type.
//
// Interfaces become discriminated unions with Polymorphic:
//
//	apidoc.New(apidoc.Polymorphic[Shape]("kind",
//	    apidoc.Derived[Circle]("circle"),
//	    apidoc.Derived[Square]("square"),
//	))
//
// The document is served with ServeSpec or ServeSpecYAML, written with
// WriteSpec, and checked against an independent OpenAPI implementation
// with ValidateSpec.
package apidoc
