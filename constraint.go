package apidoc

import (
	"cmp"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bjaus/apidoc/schema"
)

// schemaTags are the field tags that shape a property's schema, in the order
// they appear in a canonical annotation string.
var schemaTags = []string{
	"doc", "format", "enum",
	"minLength", "maxLength", "pattern",
	"minimum", "maximum",
	"minItems", "maxItems",
	"deprecated",
}

// constraintTags are the schemaTags that describe a value rather than
// document it. Parameters carry their doc on the parameter itself.
var constraintTags = schemaTags[1:]

// annotations returns the canonical form of the schema-shaping tags on a
// field. Two fields with the same tags produce the same string, which is
// itself a valid struct tag.
func annotations(tag reflect.StructTag) string {
	return canonicalTags(tag, schemaTags)
}

func canonicalTags(tag reflect.StructTag, names []string) string {
	var b strings.Builder
	for _, name := range names {
		v := tag.Get(name)
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%q", name, v)
	}
	return b.String()
}

// constraints is the parsed form of the validation tags on a field.
type constraints struct {
	minLength, maxLength *int
	minItems, maxItems   *int
	minimum, maximum     *float64
	pattern              string
	enum                 []string
}

func parseConstraints(tag reflect.StructTag) constraints {
	c := constraints{
		minLength: intTag(tag, "minLength"),
		maxLength: intTag(tag, "maxLength"),
		minItems:  intTag(tag, "minItems"),
		maxItems:  intTag(tag, "maxItems"),
		minimum:   floatTag(tag, "minimum"),
		maximum:   floatTag(tag, "maximum"),
		pattern:   tag.Get("pattern"),
	}
	if v := tag.Get("enum"); v != "" {
		c.enum = strings.Split(v, ",")
	}
	return c
}

func intTag(tag reflect.StructTag, name string) *int {
	n, err := strconv.Atoi(tag.Get(name))
	if err != nil {
		return nil
	}
	return &n
}

func floatTag(tag reflect.StructTag, name string) *float64 {
	f, err := strconv.ParseFloat(tag.Get(name), 64)
	if err != nil {
		return nil
	}
	return &f
}

// applyAnnotations writes the schema-shaping tags onto s.
func applyAnnotations(s *schema.Schema, tag reflect.StructTag) {
	if v := tag.Get("doc"); v != "" {
		s.Description = v
	}
	if v := tag.Get("format"); v != "" {
		s.Format = v
	}
	if tag.Get("deprecated") == "true" {
		s.Deprecated = true
	}

	c := parseConstraints(tag)
	s.MinLength = cmp.Or(c.minLength, s.MinLength)
	s.MaxLength = cmp.Or(c.maxLength, s.MaxLength)
	s.MinItems = cmp.Or(c.minItems, s.MinItems)
	s.MaxItems = cmp.Or(c.maxItems, s.MaxItems)
	s.Minimum = cmp.Or(c.minimum, s.Minimum)
	s.Maximum = cmp.Or(c.maximum, s.Maximum)
	if c.pattern != "" {
		s.Pattern = c.pattern
	}
	if len(c.enum) > 0 {
		s.Enum = enumValues(s.Type, c.enum)
	}
}

// enumValues converts enum tag values to the JSON type of the schema.
func enumValues(typ string, values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		switch typ {
		case "integer":
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				out = append(out, n)
				continue
			}
		case "number":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				out = append(out, f)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// validateConstraints checks all constraint tags on the struct fields and returns
// a ProblemDetail with all violations if any are found.
func validateConstraints(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var errs []ValidationError
	collectConstraintErrors(rv, "", &errs)

	if len(errs) > 0 {
		return &ProblemDetail{
			Type:   "about:blank",
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: fmt.Sprintf("%d constraint violation(s)", len(errs)),
			Errors: errs,
		}
	}

	return nil
}

func collectConstraintErrors(rv reflect.Value, prefix string, errs *[]ValidationError) {
	t := rv.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Type == reflect.TypeFor[RawRequest]() {
			continue
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		fv := rv.Field(i)
		if f.Name == "Body" && f.Type.Kind() == reflect.Struct {
			collectConstraintErrors(fv, "body", errs)
			continue
		}

		checkField(parseConstraints(f.Tag), fv, path, errs)

		if fv.Kind() == reflect.Struct && !isParamField(f) {
			collectConstraintErrors(fv, path, errs)
		}
	}
}

func checkField(c constraints, fv reflect.Value, path string, errs *[]ValidationError) {
	fail := func(value any, format string, args ...any) {
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf(format, args...),
			Value:   value,
		})
	}

	switch {
	case fv.Kind() == reflect.String:
		val := fv.String()
		if c.minLength != nil && len(val) < *c.minLength {
			fail(val, "must be at least %d characters", *c.minLength)
		}
		if c.maxLength != nil && len(val) > *c.maxLength {
			fail(val, "must be at most %d characters", *c.maxLength)
		}
		if c.pattern != "" {
			if matched, err := regexp.MatchString(c.pattern, val); err == nil && !matched {
				fail(val, "must match pattern %s", c.pattern)
			}
		}
		if len(c.enum) > 0 && !slices.Contains(c.enum, val) {
			fail(val, "must be one of [%s]", strings.Join(c.enum, ","))
		}

	case isNumericKind(fv.Kind()):
		val := toFloat64(fv)
		if c.minimum != nil && val < *c.minimum {
			fail(val, "must be at least %s", strconv.FormatFloat(*c.minimum, 'g', -1, 64))
		}
		if c.maximum != nil && val > *c.maximum {
			fail(val, "must be at most %s", strconv.FormatFloat(*c.maximum, 'g', -1, 64))
		}

	case fv.Kind() == reflect.Slice:
		n := fv.Len()
		if c.minItems != nil && n < *c.minItems {
			fail(n, "must have at least %d items", *c.minItems)
		}
		if c.maxItems != nil && n > *c.maxItems {
			fail(n, "must have at most %d items", *c.maxItems)
		}
	}
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
