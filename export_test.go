package apidoc

import (
	"reflect"

	"github.com/bjaus/apidoc/schema"
)

// Test-only exports for internal functions.
var (
	HasParamTags  = hasParamTags
	HasFormTags   = hasFormTags
	HasBodyField  = hasBodyField
	HasRawRequest = hasRawRequest
	TagOptions    = tagOptions
	JSONFieldName = jsonFieldName

	Annotations         = annotations
	ValidateConstraints = validateConstraints

	ToOpenAPIPath = toOpenAPIPath
	PathParams    = pathParams
)

// Identifier returns the logical identifier the generator gives t.
func Identifier(t reflect.Type) string {
	return newGenerator(schema.NewStore(), nil).identifier(t, schema.Descriptor{})
}

// Generate renders t with a fresh store and returns the raw fragment.
func Generate(t reflect.Type) *schema.Schema {
	return newGenerator(schema.NewStore(builtins()...), nil).schemaFor(t)
}

// OperationID derives the generated operation id for a route.
func OperationID(method, path string) string {
	return newAssembler(New()).operationID(method, path)
}

// Negotiate returns the content type picked for an Accept header.
func Negotiate(accept string) (string, bool) {
	enc, ok := newCodecRegistry(nil, nil).negotiate(accept)
	if !ok {
		return "", false
	}
	return enc.ContentType(), true
}

// SpecCache exposes the rate-limited document cache.
type SpecCache = specCache

// NewSpecCache creates a cache rebuilding at most once per interval.
var NewSpecCache = newSpecCache

// Get returns the cached document or rebuilds it.
func (c *specCache) Get(build func() ([]byte, error)) ([]byte, error) {
	spec, err := c.get(build)
	return spec.data, err
}
