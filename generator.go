package apidoc

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bjaus/apidoc/schema"
)

// generator reflects Go types into schema fragments for one document. Every
// fragment goes through the store's memo, so a type rendered twice with the
// same descriptor yields the same fragment.
type generator struct {
	store  *schema.Store
	unions map[reflect.Type]*union
	caser  cases.Caser

	// active holds the identifiers of the structs and unions currently being
	// generated. A nested use of one of them becomes a recursive placeholder.
	active    map[reflect.Type]string
	recursive map[reflect.Type]bool

	// cycles lists fragments that recursive placeholders point at, in the
	// order their generation finished.
	cycles []*schema.Schema
}

func newGenerator(store *schema.Store, unions map[reflect.Type]*union) *generator {
	return &generator{
		store:     store,
		unions:    unions,
		caser:     cases.Title(language.English, cases.NoLower),
		active:    make(map[reflect.Type]string),
		recursive: make(map[reflect.Type]bool),
	}
}

// builtins returns the fixed fragments every document starts with.
func builtins() []schema.Option {
	upload := &schema.Schema{ID: "FileUpload", Type: "string", Format: "binary"}
	return []schema.Option{
		schema.WithBuiltin(schema.KeyFor[FileUpload](), upload),
		schema.WithBuiltin(schema.KeyFor[[]FileUpload](), &schema.Schema{
			ID:    "FileUploadCollection",
			Type:  "array",
			Items: upload,
		}),
		schema.WithBuiltin(schema.KeyFor[Stream](), &schema.Schema{ID: "Stream", Type: "string", Format: "binary"}),
		schema.WithBuiltin(schema.KeyFor[io.PipeReader](), &schema.Schema{ID: "PipeReader", Type: "string", Format: "binary"}),
	}
}

// schemaFor returns the plain fragment for t.
func (g *generator) schemaFor(t reflect.Type) *schema.Schema {
	return g.get(schema.Key{Type: t})
}

func (g *generator) get(key schema.Key) *schema.Schema {
	for key.Type.Kind() == reflect.Pointer {
		key.Type = key.Type.Elem()
	}
	if id, ok := g.active[key.Type]; ok {
		g.recursive[key.Type] = true
		return &schema.Schema{ID: id, RecursiveRef: id}
	}
	return g.store.GetOrAdd(key, g.generate)
}

func (g *generator) generate(key schema.Key) *schema.Schema {
	d := key.Descriptor
	switch {
	case d.Annotations != "":
		return g.annotated(key)
	case d.Owner != nil:
		return g.variant(key)
	case d.Form:
		return g.form(key)
	}

	t := key.Type
	id := g.identifier(t, d)

	if u, ok := g.unions[t]; ok {
		return g.union(t, id, u)
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return &schema.Schema{ID: id, Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		return &schema.Schema{ID: id, Type: "string", Format: "duration"}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return &schema.Schema{ID: id, Type: "string"}
	case reflect.Bool:
		return &schema.Schema{ID: id, Type: "boolean"}
	case reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16:
		return &schema.Schema{ID: id, Type: "integer"}
	case reflect.Int32, reflect.Uint32:
		return &schema.Schema{ID: id, Type: "integer", Format: "int32"}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return &schema.Schema{ID: id, Type: "integer", Format: "int64"}
	case reflect.Float32:
		return &schema.Schema{ID: id, Type: "number", Format: "float"}
	case reflect.Float64:
		return &schema.Schema{ID: id, Type: "number", Format: "double"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &schema.Schema{ID: id, Type: "string", ContentEncoding: "base64"}
		}
		return &schema.Schema{ID: id, Type: "array", Items: g.get(schema.Key{Type: t.Elem(), Descriptor: elemHint(t.Elem(), d)})}
	case reflect.Map:
		s := &schema.Schema{ID: id, Type: "object"}
		if isTextKey(t.Key()) {
			s.AdditionalProperties = g.get(schema.Key{Type: t.Elem(), Descriptor: elemHint(t.Elem(), d)})
		}
		return s
	case reflect.Struct:
		return g.object(t, id)
	default:
		return &schema.Schema{ID: id}
	}
}

// object renders a struct as a JSON object with its properties in field order.
func (g *generator) object(t reflect.Type, id string) *schema.Schema {
	g.active[t] = id
	defer delete(g.active, t)

	s := &schema.Schema{ID: id, Type: "object", Properties: schema.NewProperties()}
	g.fields(s, t, id)
	g.finish(t, s)
	return s
}

func (g *generator) fields(s *schema.Schema, t reflect.Type, owner string) {
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type == reflect.TypeFor[RawRequest]() || isParamField(f) {
			continue
		}

		if f.Anonymous && f.Tag.Get("json") == "" {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				g.fields(s, et, owner)
				continue
			}
		}

		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		s.Properties.Set(name, g.field(owner, f))
		if f.Tag.Get("required") == "true" {
			s.Required = append(s.Required, name)
		}
	}
}

// field renders one struct field. Schema-shaping tags make the key distinct
// from the plain rendering of the field's type.
func (g *generator) field(owner string, f reflect.StructField) *schema.Schema {
	key := schema.Key{
		Type:       f.Type,
		Descriptor: schema.Descriptor{Annotations: annotations(f.Tag)},
	}
	if anonymous(f.Type) {
		key.Descriptor.Name = owner + f.Name
	}
	return g.get(key)
}

// form renders a request type as multipart form fields.
func (g *generator) form(key schema.Key) *schema.Schema {
	t := key.Type
	s := &schema.Schema{ID: g.identifier(t, key.Descriptor), Type: "object", Properties: schema.NewProperties()}
	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get("form")
		if !f.IsExported() || name == "" {
			continue
		}
		s.Properties.Set(name, g.field(s.ID, f))
		if f.Tag.Get("required") == "true" {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

// annotated renders a use-site with schema-shaping tags as a copy of the
// plain fragment with the tags applied.
func (g *generator) annotated(key schema.Key) *schema.Schema {
	plain := key
	plain.Descriptor.Annotations = ""
	s := g.get(plain).Clone()
	applyAnnotations(s, reflect.StructTag(key.Descriptor.Annotations))
	return s
}

// union renders a polymorphic base as anyOf its variants.
func (g *generator) union(t reflect.Type, id string, u *union) *schema.Schema {
	g.active[t] = id
	defer delete(g.active, t)

	s := &schema.Schema{
		ID:       id,
		Required: []string{u.property},
		Discriminator: &schema.Discriminator{
			PropertyName: u.property,
			Mapping:      schema.NewMapping(),
		},
	}
	for _, v := range u.variants {
		m := g.get(schema.Key{Type: v.typ, Descriptor: schema.Descriptor{Owner: t}})
		s.AnyOf = append(s.AnyOf, m)
		s.Discriminator.Mapping.Set(fmt.Sprint(v.value), m.ID)
	}
	g.finish(t, s)
	return s
}

// variant renders t as a member of the union owning it: the plain object
// with the discriminator property placed first.
func (g *generator) variant(key schema.Key) *schema.Schema {
	u := g.unions[key.Descriptor.Owner]
	plain := g.get(schema.Key{Type: key.Type})

	s := plain.Clone()
	s.Type = "object"
	s.Properties = schema.NewProperties()
	s.Properties.Set(u.property, discriminatorValue(u.literal(key.Type)))
	for name, p := range plain.Properties.All() {
		if name != u.property {
			s.Properties.Set(name, p)
		}
	}
	s.Required = append([]string{u.property}, slices.DeleteFunc(slices.Clone(plain.Required), func(r string) bool {
		return r == u.property
	})...)
	return s
}

func (g *generator) finish(t reflect.Type, s *schema.Schema) {
	if g.recursive[t] {
		delete(g.recursive, t)
		g.cycles = append(g.cycles, s)
	}
}

func discriminatorValue(v any) *schema.Schema {
	if _, ok := v.(string); ok {
		return &schema.Schema{ID: "string", Type: "string", Enum: []any{v}}
	}
	return &schema.Schema{ID: "int", Type: "integer", Enum: []any{v}}
}

// identifier returns the logical identifier of t. Named types use their Go
// name; composites and anonymous structs derive one.
func (g *generator) identifier(t reflect.Type, d schema.Descriptor) string {
	if t.Name() != "" {
		return g.typeName(t.Name())
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Pointer:
		return g.identifier(t.Elem(), d)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "Bytes"
		}
		return "ArrayOf" + g.caser.String(g.identifier(t.Elem(), elemHint(t.Elem(), d)))
	case reflect.Map:
		return "MapOf" + g.caser.String(g.identifier(t.Elem(), elemHint(t.Elem(), d)))
	case reflect.Struct:
		if d.Name != "" {
			return d.Name
		}
		return "AnonymousType"
	case reflect.Interface:
		return "Any"
	default:
		return g.caser.String(t.Kind().String())
	}
}

// typeName turns a reflected type name into an identifier. Generic
// instantiations such as Page[github.com/acme/app.User] become PageOfUser.
func (g *generator) typeName(name string) string {
	name = strings.TrimLeft(name, "*")

	switch {
	case strings.HasPrefix(name, "[]"):
		return "ArrayOf" + g.caser.String(g.typeName(name[2:]))
	case strings.HasPrefix(name, "map["):
		if _, value, ok := splitMap(name); ok {
			return "MapOf" + g.caser.String(g.typeName(value))
		}
	}

	base, params := splitGeneric(name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	// Types declared inside functions carry a "·N" suffix.
	if i := strings.Index(base, "·"); i >= 0 {
		base = base[:i]
	}
	if len(params) == 0 {
		return base
	}

	args := make([]string, len(params))
	for i, p := range params {
		args[i] = g.caser.String(g.typeName(p))
	}
	return base + "Of" + strings.Join(args, "And")
}

// splitGeneric separates "Base[A,B[C]]" into "Base" and its top-level type
// arguments.
func splitGeneric(name string) (string, []string) {
	start := strings.Index(name, "[")
	if start < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}

	var (
		params []string
		depth  int
		from   = start + 1
	)
	for i := from; i < len(name)-1; i++ {
		switch name[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(name[from:i]))
				from = i + 1
			}
		}
	}
	params = append(params, strings.TrimSpace(name[from:len(name)-1]))
	return name[:start], params
}

// splitMap separates "map[K]V" into K and V.
func splitMap(name string) (string, string, bool) {
	depth := 0
	for i := len("map"); i < len(name); i++ {
		switch name[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return name[len("map["):i], name[i+1:], true
			}
		}
	}
	return "", "", false
}

// anonymous reports whether t, once pointers and containers are peeled off,
// is a struct without a name of its own.
func anonymous(t reflect.Type) bool {
	for {
		//exhaustive:ignore
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			if t.Name() != "" {
				return false
			}
			t = t.Elem()
		case reflect.Struct:
			return t.Name() == ""
		default:
			return false
		}
	}
}

// elemHint carries an identifier hint down to an anonymous element type.
func elemHint(elem reflect.Type, d schema.Descriptor) schema.Descriptor {
	if d.Name != "" && anonymous(elem) {
		return schema.Descriptor{Name: d.Name + "Item"}
	}
	return schema.Descriptor{}
}

func isTextKey(t reflect.Type) bool {
	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	name, _ := tagOptions(f.Tag.Get("json"))
	if name == "" {
		return f.Name
	}
	return name
}
