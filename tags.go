package apidoc

import (
	"reflect"
	"strings"
)

// paramTags are the struct tags used for binding request parameters, in the
// order parameters are documented.
var paramTags = []string{"path", "query", "header", "cookie"}

// structFields calls fn for every exported field of t, or of the struct t
// points to. It reports false if t is not a struct.
func structFields(t reflect.Type, fn func(reflect.StructField) bool) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() && fn(f) {
			return true
		}
	}
	return false
}

// hasParamTags reports whether the given type has any fields with
// parameter binding tags (path, query, header, cookie).
func hasParamTags(t reflect.Type) bool {
	return structFields(t, isParamField)
}

// hasRawRequest reports whether the given type embeds a RawRequest field.
func hasRawRequest(t reflect.Type) bool {
	return structFields(t, func(f reflect.StructField) bool {
		return f.Type == reflect.TypeFor[RawRequest]()
	})
}

// hasBodyField reports whether the given type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	return structFields(t, func(f reflect.StructField) bool {
		return f.Name == "Body"
	})
}

// hasFormTags reports whether the given type has any fields with
// a "form" binding tag.
func hasFormTags(t reflect.Type) bool {
	return structFields(t, func(f reflect.StructField) bool {
		return f.Tag.Get("form") != ""
	})
}

// isParamField reports whether a struct field has parameter binding tags.
func isParamField(f reflect.StructField) bool {
	for _, tag := range paramTags {
		if f.Tag.Get(tag) != "" {
			return true
		}
	}
	return false
}

// tagOptions splits a struct tag value on comma and returns
// the name and remaining options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}
