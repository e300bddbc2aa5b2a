package apidoc

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// maxMultipartMemory is the maximum memory used for multipart form parsing (32 MB).
const maxMultipartMemory = 32 << 20

// requestCategory describes how a request type should be decoded.
type requestCategory int

const (
	catVoid     requestCategory = iota // Void: no params, no body
	catBodyOnly                        // entire struct is the body
	catParams                          // has param tags but no Body field
	catMixed                           // params from tagged fields, body from Body
	catForm                            // multipart/form-data binding
	catStream                          // the raw body as a Stream
)

// classifyRequest determines how a request type should be decoded.
func classifyRequest(t reflect.Type) requestCategory {
	switch {
	case t == reflect.TypeFor[Void]():
		return catVoid
	case t == reflect.TypeFor[Stream]():
		return catStream
	case hasFormTags(t):
		return catForm
	case hasBodyField(t):
		return catMixed
	case hasParamTags(t) || hasRawRequest(t):
		return catParams
	default:
		return catBodyOnly
	}
}

// decodeRequest creates a new Req value and populates it from the HTTP request.
// Errors that carry no status of their own are reported as 400.
func decodeRequest[Req any](r *http.Request, codecs *codecRegistry) (*Req, error) {
	req, err := bindRequest[Req](r, codecs)
	if err != nil {
		var sc StatusCoder
		if !errors.As(err, &sc) {
			err = &HTTPError{Status: http.StatusBadRequest, Message: err.Error()}
		}
		return nil, err
	}
	return req, nil
}

func bindRequest[Req any](r *http.Request, codecs *codecRegistry) (*Req, error) {
	req := new(Req)

	switch classifyRequest(reflect.TypeFor[Req]()) {
	case catVoid:
		return req, nil
	case catStream:
		s := any(req).(*Stream)
		s.ContentType = r.Header.Get("Content-Type")
		s.Body = r.Body
		return req, nil
	case catBodyOnly:
		if err := bindParams(req, r); err != nil {
			return nil, err
		}
		if err := decodeBody(r, req, codecs); err != nil {
			return nil, err
		}
	case catParams:
		if err := bindParams(req, r); err != nil {
			return nil, err
		}
	case catMixed:
		if err := bindParams(req, r); err != nil {
			return nil, err
		}
		body := reflect.ValueOf(req).Elem().FieldByName("Body").Addr().Interface()
		if err := decodeBody(r, body, codecs); err != nil {
			return nil, err
		}
	case catForm:
		if err := bindParams(req, r); err != nil {
			return nil, err
		}
		if err := bindFormFields(req, r); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// bindParams binds path, query, header, and cookie values to struct fields.
func bindParams(target any, r *http.Request) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "Body" {
			continue
		}
		field := v.Field(i)

		if f.Type == reflect.TypeFor[RawRequest]() {
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
			continue
		}

		for _, src := range paramSources {
			name := f.Tag.Get(src.tag)
			if name == "" {
				continue
			}
			val := src.lookup(r, name)
			if val == "" && src.tag != "path" {
				val = f.Tag.Get("default")
			}
			if val == "" {
				continue
			}
			if err := setFieldValue(field, val); err != nil {
				return fmt.Errorf("%w: %s: %w", src.err, name, err)
			}
		}
	}

	return nil
}

// paramSource reads one kind of request parameter.
type paramSource struct {
	tag    string
	err    error
	lookup func(r *http.Request, name string) string
}

var paramSources = []paramSource{
	{tag: "path", err: ErrBindPath, lookup: func(r *http.Request, name string) string {
		return r.PathValue(name)
	}},
	{tag: "query", err: ErrBindQuery, lookup: func(r *http.Request, name string) string {
		return r.URL.Query().Get(name)
	}},
	{tag: "header", err: ErrBindHeader, lookup: func(r *http.Request, name string) string {
		return r.Header.Get(name)
	}},
	{tag: "cookie", err: ErrBindCookie, lookup: func(r *http.Request, name string) string {
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}},
}

// bindFormFields binds multipart form fields and files to struct fields tagged with "form".
func bindFormFields(target any, r *http.Request) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("%w: %w", ErrBindForm, err)
	}

	v := reflect.ValueOf(target).Elem()
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get("form")
		if !f.IsExported() || name == "" {
			continue
		}
		field := v.Field(i)

		switch f.Type {
		case reflect.TypeFor[FileUpload]():
			file, header, err := r.FormFile(name)
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
			}
			field.Set(reflect.ValueOf(newFileUpload(header, file)))

		case reflect.TypeFor[[]FileUpload]():
			headers := r.MultipartForm.File[name]
			if len(headers) == 0 {
				continue
			}
			uploads := make([]FileUpload, 0, len(headers))
			for _, header := range headers {
				file, err := header.Open()
				if err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
				}
				uploads = append(uploads, newFileUpload(header, file))
			}
			field.Set(reflect.ValueOf(uploads))

		default:
			if val := r.FormValue(name); val != "" {
				if err := setFieldValue(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
				}
			}
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setFieldValue(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	if field.Type() == reflect.TypeFor[time.Time]() {
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ts))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// decodeBody decodes the request body into target with the decoder matching
// the request's Content-Type.
func decodeBody(r *http.Request, target any, codecs *codecRegistry) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec, ok := codecs.decoderFor(r.Header.Get("Content-Type"))
	if !ok {
		return &HTTPError{
			Status:  http.StatusUnsupportedMediaType,
			Message: fmt.Sprintf("unsupported content type %q", r.Header.Get("Content-Type")),
		}
	}
	if err := dec.Decode(r.Body, target); err != nil {
		return fmt.Errorf("%w: %w", ErrBindBody, err)
	}
	return nil
}
