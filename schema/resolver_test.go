package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/apidoc/schema"
)

func str() *schema.Schema {
	return &schema.Schema{ID: "string", Type: "string"}
}

func object(id string, props ...any) *schema.Schema {
	s := &schema.Schema{ID: id, Type: "object", Properties: schema.NewProperties()}
	for i := 0; i+1 < len(props); i += 2 {
		s.Properties.Set(props[i].(string), props[i+1].(*schema.Schema))
	}
	return s
}

func TestRegister_single_use_stays_inline(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	todo := object("Todo", "name", str())

	store.Register(todo)

	_, ok := store.Name(todo)
	assert.False(t, ok)
	assert.Empty(t, store.Components())
}

func TestRegister_repeated_use_is_hoisted_once(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	todo := object("Todo", "name", str())

	for range 4 {
		// Independently generated but structurally identical fragments.
		store.Register(object("Todo", "name", str()))
	}

	name, ok := store.Name(todo)
	require.True(t, ok)
	assert.Equal(t, "Todo", name)

	var todos int
	for _, c := range store.Components() {
		if c.Schema.ID == "Todo" {
			todos++
		}
	}
	assert.Equal(t, 1, todos)
}

func TestRegister_children_count_as_use_sites(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	address := object("Address", "street", str())
	order := object("Order",
		"billing", address,
		"shipping", object("Address", "street", str()),
	)

	store.Register(order)

	name, ok := store.Name(address)
	require.True(t, ok)
	assert.Equal(t, "Address", name)

	_, ok = store.Name(order)
	assert.False(t, ok, "the root was used once")
}

func TestRegister_child_roles(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		build func(child *schema.Schema) *schema.Schema
	}{
		"items": {
			build: func(child *schema.Schema) *schema.Schema {
				return &schema.Schema{ID: "ArrayOfTag", Type: "array", Items: child}
			},
		},
		"additional properties": {
			build: func(child *schema.Schema) *schema.Schema {
				return &schema.Schema{ID: "MapOfTag", Type: "object", AdditionalProperties: child}
			},
		},
		"allOf": {
			build: func(child *schema.Schema) *schema.Schema {
				return &schema.Schema{ID: "Tagged", AllOf: []*schema.Schema{child}}
			},
		},
		"anyOf without discriminator": {
			build: func(child *schema.Schema) *schema.Schema {
				return &schema.Schema{ID: "MaybeTag", AnyOf: []*schema.Schema{child}}
			},
		},
		"properties": {
			build: func(child *schema.Schema) *schema.Schema {
				return object("Holder", "tag", child)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := schema.NewStore()
			tag := object("Tag", "label", str())

			store.Register(tc.build(tag))
			_, ok := store.Name(tag)
			assert.False(t, ok, "one use-site")

			store.Register(tag)
			got, ok := store.Name(tag)
			require.True(t, ok, "second use-site")
			assert.Equal(t, "Tag", got)
		})
	}
}

func TestRegister_name_collision_suffix(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	first := object("Widget", "name", str())
	second := object("Widget", "size", &schema.Schema{ID: "int", Type: "integer"})

	store.Register(first)
	store.Register(first)
	store.Register(second)
	store.Register(second)

	firstName, ok := store.Name(first)
	require.True(t, ok)
	secondName, ok := store.Name(second)
	require.True(t, ok)

	assert.Equal(t, "Widget", firstName)
	assert.Equal(t, "Widget1", secondName)
}

func TestRegister_annotation_makes_distinct_fragment(t *testing.T) {
	t.Parallel()

	// Todo.Name is a plain string; Project.Title carries minLength.
	five := 5
	title := &schema.Schema{ID: "string", Type: "string", MinLength: &five}

	store := schema.NewStore()
	for range 2 {
		store.Register(object("Todo", "id", &schema.Schema{ID: "int", Type: "integer"}, "name", str()))
		store.Register(object("Project", "id", &schema.Schema{ID: "int", Type: "integer"}, "title", title))
	}

	plain, ok := store.Name(str())
	require.True(t, ok)
	constrained, ok := store.Name(title)
	require.True(t, ok)

	assert.Equal(t, "string", plain)
	assert.Equal(t, "string1", constrained)
}

func shapeUnion() (*schema.Schema, *schema.Schema, *schema.Schema) {
	triangle := object("Triangle",
		"$type", &schema.Schema{ID: "string", Type: "string", Enum: []any{"triangle"}},
		"hypotenuse", &schema.Schema{ID: "float64", Type: "number"},
	)
	square := object("Square",
		"$type", &schema.Schema{ID: "string", Type: "string", Enum: []any{"square"}},
		"area", &schema.Schema{ID: "float64", Type: "number"},
	)
	mapping := schema.NewMapping()
	mapping.Set("triangle", "Triangle")
	mapping.Set("square", "Square")
	shape := &schema.Schema{
		ID:            "Shape",
		AnyOf:         []*schema.Schema{triangle, square},
		Required:      []string{"$type"},
		Discriminator: &schema.Discriminator{PropertyName: "$type", Mapping: mapping},
	}
	return shape, triangle, square
}

func TestRegister_discriminated_members_prefixed_by_parent(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	shape, triangle, square := shapeUnion()

	store.Register(shape)

	name, ok := store.Name(triangle)
	require.True(t, ok)
	assert.Equal(t, "ShapeTriangle", name)

	name, ok = store.Name(square)
	require.True(t, ok)
	assert.Equal(t, "ShapeSquare", name)

	_, ok = store.Name(shape)
	assert.False(t, ok, "the union itself was used once")
}

func TestRegister_undiscriminated_members_not_prefixed(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	_, triangle, square := shapeUnion()
	union := &schema.Schema{ID: "Figure", AnyOf: []*schema.Schema{triangle, square}}

	store.Register(union)
	_, ok := store.Name(triangle)
	assert.False(t, ok)

	store.Register(union)
	name, ok := store.Name(triangle)
	require.True(t, ok)
	assert.Equal(t, "Triangle", name)
}

func TestRegister_idempotent_when_fully_named(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	shape, _, _ := shapeUnion()
	root := object("Drawing", "shape", shape, "label", str())

	store.Register(root)
	store.Register(root)

	table := store.Table()
	counters := store.Counters()
	components := store.Components()

	store.Register(root)

	assert.ElementsMatch(t, table, store.Table())
	assert.Equal(t, counters, store.Counters())
	assert.Equal(t, components, store.Components())
}

func TestRegister_missing_id_panics(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		root   *schema.Schema
		expect string
	}{
		"root": {
			root:   &schema.Schema{Type: "string"},
			expect: `schema: logical identifier must be set: primitive schema of type "string"`,
		},
		"child": {
			root:   object("Holder", "tags", &schema.Schema{Type: "array", Items: str()}),
			expect: `schema: logical identifier must be set: array schema of type "array"`,
		},
		"union member": {
			root:   &schema.Schema{ID: "Either", AnyOf: []*schema.Schema{{}}},
			expect: "schema: logical identifier must be set: any schema",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := schema.NewStore()
			assert.PanicsWithError(t, tc.expect, func() {
				store.Register(tc.root)
			})
		})
	}
}

func TestRegister_cycle_is_not_reentered(t *testing.T) {
	t.Parallel()

	node := object("Node")
	node.Properties.Set("next", node)

	store := schema.NewStore()
	assert.NotPanics(t, func() {
		store.Register(node)
	})

	_, ok := store.Name(node)
	assert.False(t, ok)
}

func TestRegister_recursive_placeholder_hoists_ancestor(t *testing.T) {
	t.Parallel()

	category := object("Category",
		"name", str(),
		"children", &schema.Schema{
			ID:    "ArrayOfCategory",
			Type:  "array",
			Items: &schema.Schema{ID: "Category", RecursiveRef: "Category"},
		},
	)

	store := schema.NewStore()
	store.Register(category)

	name, ok := store.Name(category)
	require.True(t, ok)
	assert.Equal(t, "Category", name)

	target, ok := store.RecursiveName("Category")
	require.True(t, ok)
	assert.Equal(t, "Category", target)
}

func TestRegister_dangling_recursive_placeholder_panics(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	orphan := &schema.Schema{ID: "Category", RecursiveRef: "Category"}

	assert.Panics(t, func() {
		store.Register(object("Holder", "child", orphan))
	})
}

func TestRegister_placeholder_outside_ancestor_uses_earlier_binding(t *testing.T) {
	t.Parallel()

	children := &schema.Schema{
		ID:    "ArrayOfCategory",
		Type:  "array",
		Items: &schema.Schema{ID: "Category", RecursiveRef: "Category"},
	}
	category := object("Category", "children", children)

	store := schema.NewStore()
	store.Register(category)

	assert.NotPanics(t, func() {
		store.Register(children)
	})

	target, ok := store.RecursiveName("Category")
	require.True(t, ok)
	assert.Equal(t, "Category", target)
}

func TestBind_names_target_without_counting_children(t *testing.T) {
	t.Parallel()

	label := str()
	children := &schema.Schema{
		ID:    "ArrayOfNode",
		Type:  "array",
		Items: &schema.Schema{ID: "Node", RecursiveRef: "Node"},
	}
	node := object("Node", "label", label, "children", children)
	tree := object("Tree", "root", node)

	store := schema.NewStore()
	store.Bind(node)
	store.Register(tree)

	name, ok := store.Name(node)
	require.True(t, ok)
	assert.Equal(t, "Node", name)

	target, ok := store.RecursiveName("Node")
	require.True(t, ok)
	assert.Equal(t, "Node", target)

	for _, f := range []*schema.Schema{tree, label, children} {
		_, ok := store.Name(f)
		assert.False(t, ok, f.ID)
	}
	require.Len(t, store.Components(), 1)
}

func TestBind_resolves_placeholder_before_its_ancestor_is_walked(t *testing.T) {
	t.Parallel()

	children := &schema.Schema{
		ID:    "ArrayOfCategory",
		Type:  "array",
		Items: &schema.Schema{ID: "Category", RecursiveRef: "Category"},
	}
	category := object("Category", "children", children)

	store := schema.NewStore()
	store.Bind(category)

	assert.NotPanics(t, func() {
		store.Register(children)
	})
	target, ok := store.RecursiveName("Category")
	require.True(t, ok)
	assert.Equal(t, "Category", target)
}

func TestBind_missing_id_panics(t *testing.T) {
	t.Parallel()

	store := schema.NewStore()
	assert.PanicsWithError(t, `schema: logical identifier must be set: object schema of type "object"`, func() {
		store.Bind(&schema.Schema{Type: "object"})
	})
}
