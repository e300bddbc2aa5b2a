package apidoc

import (
	"fmt"
	"reflect"
)

// DefaultDiscriminator is the property that selects a variant when
// Polymorphic is given an empty property name.
const DefaultDiscriminator = "$type"

// union describes a polymorphic base and its known variants.
type union struct {
	property string
	variants []Variant
}

// Variant is one concrete type of a polymorphic base.
type Variant struct {
	typ   reflect.Type
	value any
}

// Derived declares T as a variant whose discriminator property holds value.
// The value must be a string or an integer.
func Derived[T any](value any) Variant {
	switch value.(type) {
	case string, int, int8, int16, int32, int64:
	default:
		panic(fmt.Sprintf("apidoc: discriminator value %v for %s must be a string or an integer", value, reflect.TypeFor[T]()))
	}
	return Variant{typ: reflect.TypeFor[T](), value: value}
}

// Polymorphic documents the interface Base as a union of its variants. The
// generated schema is anyOf the variants with a discriminator on property.
// Each variant is documented with property as its first, required field,
// restricted to the variant's value. A field of the variant already tagged
// with the same JSON name is replaced by it. Polymorphic panics if two
// variants share a discriminator value.
func Polymorphic[Base any](property string, variants ...Variant) RouterOption {
	base := reflect.TypeFor[Base]()
	if base.Kind() != reflect.Interface {
		panic(fmt.Sprintf("apidoc: polymorphic base %s must be an interface", base))
	}
	if property == "" {
		property = DefaultDiscriminator
	}
	seen := make(map[string]reflect.Type, len(variants))
	for _, v := range variants {
		key := fmt.Sprint(v.value)
		if prev, ok := seen[key]; ok {
			panic(fmt.Sprintf("apidoc: discriminator value %v of %s already selects %s", v.value, v.typ, prev))
		}
		seen[key] = v.typ
	}
	return func(r *Router) {
		r.unions[base] = &union{property: property, variants: variants}
	}
}

// literal returns the discriminator value declared for t.
func (u *union) literal(t reflect.Type) any {
	for _, v := range u.variants {
		vt := v.typ
		for vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		if vt == t {
			return v.value
		}
	}
	return nil
}
