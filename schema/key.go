package schema

import "reflect"

// Key identifies what schema to produce: a type plus the use-site details
// that change its rendering. Keys are comparable and equal keys always
// produce the same fragment within one document.
type Key struct {
	Type       reflect.Type
	Descriptor Descriptor
}

// Descriptor carries the use-site details of a Key. The zero Descriptor means
// the plain rendering of the type.
type Descriptor struct {
	// Annotations is the canonical form of the field tags that shape the
	// schema, such as `minLength:"5"`.
	Annotations string

	// Name is the identifier hint for types that have no name of their own.
	Name string

	// Owner is the polymorphic base when the type is rendered as one of its
	// variants.
	Owner reflect.Type

	// Form renders a struct as multipart form fields.
	Form bool
}

// KeyFor returns the plain Key for T.
func KeyFor[T any]() Key {
	return Key{Type: reflect.TypeFor[T]()}
}
