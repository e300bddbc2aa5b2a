package apidoc

import (
	"cmp"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bjaus/apidoc/schema"
)

// Document is the top-level OpenAPI 3.1 document.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
}

// Info holds API metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Components holds the hoisted schemas, keyed by reference name.
type Components struct {
	Schemas map[string]*schema.Schema `json:"schemas,omitempty"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem map[string]*Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	OperationID string              `json:"operationId,omitempty"`
	Parameters  []*Parameter        `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
	Deprecated  bool                `json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string         `json:"name"`
	In          string         `json:"in"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Schema      *schema.Schema `json:"schema"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

// MediaType is a media type object with an optional schema.
type MediaType struct {
	Schema *schema.Schema `json:"schema,omitempty"`
}

// Response describes a single response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Spec generates the OpenAPI 3.1 document for the registered routes.
//
// Every call starts a fresh schema store. Fragments used by a single
// operation site stay inline; fragments used more than once are hoisted
// into components and referenced by name.
func (r *Router) Spec() *Document {
	a := newAssembler(r)

	doc := &Document{
		OpenAPI: "3.1.0",
		Info: Info{
			Title:   cmp.Or(r.title, "API"),
			Version: cmp.Or(r.version, "0.0.0"),
		},
		Paths: make(map[string]PathItem),
	}

	for _, ri := range r.snapshot() {
		path := toOpenAPIPath(ri.pattern)
		if doc.Paths[path] == nil {
			doc.Paths[path] = make(PathItem)
		}
		doc.Paths[path][strings.ToLower(ri.method)] = a.operation(&ri, path)
	}

	a.resolve()
	a.render(doc)
	return doc
}

// assembler builds one document. Operations first hold the generated
// fragments; once every operation is known the fragments are registered and
// rewritten into references.
type assembler struct {
	router *Router
	store  *schema.Store
	gen    *generator
	caser  cases.Caser

	roots    []*schema.Schema
	rendered map[*schema.Schema]*schema.Schema
}

func newAssembler(r *Router) *assembler {
	store := schema.NewStore(append(builtins(), schema.WithLogger(r.logger))...)
	return &assembler{
		router:   r,
		store:    store,
		gen:      newGenerator(store, r.unions),
		caser:    cases.Title(language.English),
		rendered: make(map[*schema.Schema]*schema.Schema),
	}
}

// use records one operation-level use-site of a fragment.
func (a *assembler) use(f *schema.Schema) *schema.Schema {
	a.roots = append(a.roots, f)
	return f
}

// operation creates an Operation from a routeInfo.
func (a *assembler) operation(ri *routeInfo, path string) *Operation {
	op := &Operation{
		Summary:     ri.doc.summary,
		Description: ri.doc.description,
		Tags:        ri.doc.tags,
		Deprecated:  ri.doc.deprecated,
		OperationID: cmp.Or(ri.doc.operationID, a.operationID(ri.method, path)),
		Responses:   make(map[string]Response),
	}

	if ri.reqType != nil {
		op.Parameters = a.parameters(ri.reqType)
		op.RequestBody = a.requestBody(ri.reqType, ri.method)
	}
	op.Parameters = append(op.Parameters, a.undeclaredPathParams(path, op.Parameters)...)

	op.Responses[strconv.Itoa(ri.status)] = a.response(ri)

	for _, code := range ri.doc.errors {
		op.Responses[strconv.Itoa(code)] = Response{
			Description: cmp.Or(http.StatusText(code), "Error"),
			Content: map[string]MediaType{
				"application/problem+json": {Schema: a.use(a.gen.schemaFor(reflect.TypeFor[ProblemDetail]()))},
			},
		}
	}

	return op
}

// parameters builds OpenAPI parameters from param-tagged fields.
func (a *assembler) parameters(t reflect.Type) []*Parameter {
	var params []*Parameter
	structFields(t, func(f reflect.StructField) bool {
		for _, tag := range paramTags {
			name := f.Tag.Get(tag)
			if name == "" {
				continue
			}
			key := schema.Key{
				Type:       f.Type,
				Descriptor: schema.Descriptor{Annotations: canonicalTags(f.Tag, constraintTags)},
			}
			params = append(params, &Parameter{
				Name:        name,
				In:          tag,
				Description: f.Tag.Get("doc"),
				Required:    tag == "path" || f.Tag.Get("required") == "true",
				Schema:      a.use(a.gen.get(key)),
			})
		}
		return false
	})
	return params
}

// undeclaredPathParams documents path wildcards the request type does not bind.
func (a *assembler) undeclaredPathParams(path string, declared []*Parameter) []*Parameter {
	var out []*Parameter
	for _, name := range pathParams(path) {
		found := false
		for _, p := range declared {
			if p.In == "path" && p.Name == name {
				found = true
				break
			}
		}
		if !found {
			out = append(out, &Parameter{
				Name:     name,
				In:       "path",
				Required: true,
				Schema:   a.use(a.gen.schemaFor(reflect.TypeFor[string]())),
			})
		}
	}
	return out
}

// requestBody builds an OpenAPI RequestBody if the request type has a body.
func (a *assembler) requestBody(t reflect.Type, method string) *RequestBody {
	var (
		media []string
		body  *schema.Schema
	)

	switch classifyRequest(t) {
	case catStream:
		media, body = []string{"application/octet-stream"}, a.gen.schemaFor(t)
	case catForm:
		media, body = []string{"multipart/form-data"}, a.gen.get(schema.Key{Type: t, Descriptor: schema.Descriptor{Form: true}})
	case catMixed:
		f, _ := t.FieldByName("Body")
		media, body = a.router.codecs.decoderTypes(), a.gen.field(a.gen.identifier(t, schema.Descriptor{}), f)
	case catBodyOnly:
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			return nil
		}
		media, body = a.router.codecs.decoderTypes(), a.gen.schemaFor(t)
	default:
		return nil
	}

	a.use(body)
	rb := &RequestBody{Required: true, Content: make(map[string]MediaType, len(media))}
	for _, m := range media {
		rb.Content[m] = MediaType{Schema: body}
	}
	return rb
}

// response documents the success response of a route.
func (a *assembler) response(ri *routeInfo) Response {
	resp := Response{Description: cmp.Or(http.StatusText(ri.status), "Response")}

	var media []string
	switch ri.respType {
	case nil, reflect.TypeFor[Void]():
		return resp
	case reflect.TypeFor[Stream](), reflect.TypeFor[io.PipeReader]():
		media = []string{"application/octet-stream"}
	default:
		media = a.router.codecs.encoderTypes()
	}

	body := a.use(a.gen.schemaFor(ri.respType))
	resp.Content = make(map[string]MediaType, len(media))
	for _, m := range media {
		resp.Content[m] = MediaType{Schema: body}
	}
	return resp
}

// resolve registers every use-site with the store. Fragments that recursive
// placeholders point at are bound first, without counting as a use, so the
// placeholders always have a target.
func (a *assembler) resolve() {
	for _, f := range a.gen.cycles {
		a.store.Bind(f)
	}
	for _, f := range a.roots {
		a.store.Register(f)
	}
}

// render rewrites every fragment in doc into its final form and fills the
// component table.
func (a *assembler) render(doc *Document) {
	for _, item := range doc.Paths {
		for _, op := range item {
			for _, p := range op.Parameters {
				p.Schema = a.ref(p.Schema)
			}
			if op.RequestBody != nil {
				renderContent(a, op.RequestBody.Content)
			}
			for _, resp := range op.Responses {
				renderContent(a, resp.Content)
			}
		}
	}

	components := a.store.Components()
	if len(components) == 0 {
		return
	}
	doc.Components = &Components{Schemas: make(map[string]*schema.Schema, len(components))}
	for _, c := range components {
		doc.Components.Schemas[c.Name] = a.inline(c.Schema)
	}
}

func renderContent(a *assembler, content map[string]MediaType) {
	for m, mt := range content {
		mt.Schema = a.ref(mt.Schema)
		content[m] = mt
	}
}

// ref renders f at a use-site: a reference if f is hoisted, else f inline.
func (a *assembler) ref(f *schema.Schema) *schema.Schema {
	if f == nil {
		return nil
	}
	if name, ok := a.name(f); ok {
		return refTo(name)
	}
	return a.inline(f)
}

// name returns the reference name a fragment renders as.
func (a *assembler) name(f *schema.Schema) (string, bool) {
	if f.RecursiveRef != "" {
		return a.store.RecursiveName(f.RecursiveRef)
	}
	return a.store.Name(f)
}

// inline renders the body of f with its children as references or inline.
func (a *assembler) inline(f *schema.Schema) *schema.Schema {
	if out, ok := a.rendered[f]; ok {
		return out
	}

	out := f.Clone()
	a.rendered[f] = out

	out.Items = a.ref(f.Items)
	out.AdditionalProperties = a.ref(f.AdditionalProperties)
	out.AllOf = a.refs(f.AllOf)
	out.AnyOf = a.refs(f.AnyOf)
	if f.Properties != nil {
		out.Properties = schema.NewProperties()
		for name, p := range f.Properties.All() {
			out.Properties.Set(name, a.ref(p))
		}
	}
	if f.Discriminator != nil && f.Discriminator.Mapping != nil {
		out.Discriminator.Mapping = a.mapping(f)
	}
	return out
}

func (a *assembler) refs(list []*schema.Schema) []*schema.Schema {
	if list == nil {
		return nil
	}
	out := make([]*schema.Schema, len(list))
	for i, f := range list {
		out[i] = a.ref(f)
	}
	return out
}

// mapping points discriminator values at the components of the named
// members. Values are recorded in variant order, so the i-th value selects
// the i-th member even when two members share an identifier.
func (a *assembler) mapping(f *schema.Schema) *schema.Mapping {
	out := schema.NewMapping()
	i := 0
	for value, id := range f.Discriminator.Mapping.All() {
		target := id
		if i < len(f.AnyOf) {
			if name, ok := a.name(f.AnyOf[i]); ok {
				target = componentRef(name)
			}
		}
		i++
		out.Set(value, target)
	}
	return out
}

func refTo(name string) *schema.Schema {
	return &schema.Schema{Ref: componentRef(name)}
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

// operationID derives an id such as getTodosById from a method and path.
func (a *assembler) operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for seg := range strings.SplitSeq(path, "/") {
		by := strings.HasPrefix(seg, "{")
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		if by {
			b.WriteString("By")
		}
		for word := range strings.FieldsFuncSeq(seg, func(r rune) bool { return r == '-' || r == '_' || r == '.' }) {
			b.WriteString(a.caser.String(word))
		}
	}
	return b.String()
}

// toOpenAPIPath converts a ServeMux pattern like "/files/{path...}" to an
// OpenAPI path.
func toOpenAPIPath(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "{$}")
	return strings.ReplaceAll(pattern, "...}", "}")
}

// pathParams returns the wildcard names in an OpenAPI path.
func pathParams(path string) []string {
	var names []string
	for seg := range strings.SplitSeq(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, seg[1:len(seg)-1])
		}
	}
	return names
}
