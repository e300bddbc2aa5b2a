package schema

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"reflect"
	"slices"
)

// Equal reports whether a and b are structurally identical: same identifier,
// same annotations, and equal children in the same roles. Pointer identity is
// irrelevant; two independently generated fragments for the same type and
// annotations are equal.
func Equal(a, b *Schema) bool {
	return equal(a, b, make(map[[2]*Schema]struct{}))
}

func equal(a, b *Schema, seen map[[2]*Schema]struct{}) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	// A pair already under comparison is assumed equal; any difference
	// is reported by the outer call.
	pair := [2]*Schema{a, b}
	if _, ok := seen[pair]; ok {
		return true
	}
	seen[pair] = struct{}{}

	if !equalNode(a, b) {
		return false
	}
	if !equal(a.AdditionalProperties, b.AdditionalProperties, seen) || !equal(a.Items, b.Items, seen) {
		return false
	}
	if !equalList(a.AllOf, b.AllOf, seen) || !equalList(a.AnyOf, b.AnyOf, seen) {
		return false
	}
	return equalProperties(a.Properties, b.Properties, seen)
}

func equalNode(a, b *Schema) bool {
	return a.ID == b.ID &&
		a.RecursiveRef == b.RecursiveRef &&
		a.Ref == b.Ref &&
		a.Type == b.Type &&
		a.Format == b.Format &&
		a.ContentEncoding == b.ContentEncoding &&
		a.Description == b.Description &&
		a.Pattern == b.Pattern &&
		a.Deprecated == b.Deprecated &&
		reflect.DeepEqual(a.Enum, b.Enum) &&
		slices.Equal(a.Required, b.Required) &&
		equalPtr(a.MinLength, b.MinLength) &&
		equalPtr(a.MaxLength, b.MaxLength) &&
		equalPtr(a.Minimum, b.Minimum) &&
		equalPtr(a.Maximum, b.Maximum) &&
		equalPtr(a.MinItems, b.MinItems) &&
		equalPtr(a.MaxItems, b.MaxItems) &&
		equalDiscriminator(a.Discriminator, b.Discriminator)
}

func equalList(a, b []*Schema, seen map[[2]*Schema]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], seen) {
			return false
		}
	}
	return true
}

func equalProperties(a, b *Properties, seen map[[2]*Schema]struct{}) bool {
	if a.Len() != b.Len() {
		return false
	}
	names := b.Names()
	i := 0
	for name, pa := range a.All() {
		if names[i] != name {
			return false
		}
		pb, _ := b.Get(name)
		if !equal(pa, pb, seen) {
			return false
		}
		i++
	}
	return true
}

func equalDiscriminator(a, b *Discriminator) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.PropertyName != b.PropertyName || a.Mapping.Len() != b.Mapping.Len() {
		return false
	}
	type pair struct{ value, target string }
	var pa, pb []pair
	for v, t := range a.Mapping.All() {
		pa = append(pa, pair{v, t})
	}
	for v, t := range b.Mapping.All() {
		pb = append(pb, pair{v, t})
	}
	return slices.Equal(pa, pb)
}

// equalPtr compares two optional values.
func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Hash computes a structural hash consistent with Equal: equal fragments hash
// identically. Collisions are possible, so callers confirm with Equal.
func Hash(s *Schema) uint64 {
	h := hasher{Hash64: fnv.New64a(), visited: make(map[*Schema]struct{})}
	h.schema(s)
	return h.Sum64()
}

type hasher struct {
	hash.Hash64
	visited map[*Schema]struct{}
}

func (h *hasher) schema(s *Schema) {
	if s == nil {
		h.str("nil")
		return
	}
	if _, ok := h.visited[s]; ok {
		h.str("circular")
		return
	}
	h.visited[s] = struct{}{}
	defer delete(h.visited, s)

	h.str("id:" + s.ID)
	h.str("recursive:" + s.RecursiveRef)
	h.str("ref:" + s.Ref)
	h.str("type:" + s.Type)
	h.str("format:" + s.Format)
	h.str("encoding:" + s.ContentEncoding)
	h.str("description:" + s.Description)
	h.str("pattern:" + s.Pattern)
	if s.Deprecated {
		h.str("deprecated")
	}

	if len(s.Enum) > 0 {
		h.str("enum:")
		for _, v := range s.Enum {
			h.str(fmt.Sprintf("%T:%v", v, v))
		}
	}
	if len(s.Required) > 0 {
		h.str("required:")
		for _, r := range s.Required {
			h.str(r)
		}
	}

	h.intPtr("minLength", s.MinLength)
	h.intPtr("maxLength", s.MaxLength)
	h.floatPtr("minimum", s.Minimum)
	h.floatPtr("maximum", s.Maximum)
	h.intPtr("minItems", s.MinItems)
	h.intPtr("maxItems", s.MaxItems)

	if d := s.Discriminator; d != nil {
		h.str("discriminator:" + d.PropertyName)
		for v, t := range d.Mapping.All() {
			h.str(v)
			h.str(t)
		}
	}

	h.str("additionalProperties:")
	h.schema(s.AdditionalProperties)
	h.str("items:")
	h.schema(s.Items)

	h.str("allOf:")
	for _, m := range s.AllOf {
		h.schema(m)
	}
	h.str("anyOf:")
	for _, m := range s.AnyOf {
		h.schema(m)
	}

	h.str("properties:")
	for name, p := range s.Properties.All() {
		h.str(name)
		h.schema(p)
	}
}

// str writes a length-prefixed string so adjacent values cannot run together.
func (h *hasher) str(s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	//nolint:errcheck // hash.Hash writes never fail
	h.Write(n[:])
	//nolint:errcheck // hash.Hash writes never fail
	h.Write([]byte(s))
}

func (h *hasher) intPtr(name string, v *int) {
	if v == nil {
		return
	}
	h.str(fmt.Sprintf("%s:%d", name, *v))
}

func (h *hasher) floatPtr(name string, v *float64) {
	if v == nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(*v))
	h.str(name + ":" + string(b[:]))
}
