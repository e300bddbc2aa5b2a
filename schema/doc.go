// Package schema deduplicates and names the schema fragments of an OpenAPI
// document.
//
// A Store is created per document. Generators obtain fragments through
// GetOrAdd, which memoizes them by Key so each type and use-site rendering is
// produced once. Every root fragment an operation uses is then passed to
// Register, which walks its substructure and counts use-sites by structural
// identity:
//
//	store := schema.NewStore()
//	user := store.GetOrAdd(schema.KeyFor[User](), generate)
//	store.Register(user) // first use-site: stays inline
//	store.Register(user) // second use-site: hoisted as "User"
//
// Once every operation is registered, Components lists the hoisted fragments
// and Name reports the reference name of any fragment that has one. The
// document assembler writes named fragments into components.schemas and
// replaces their occurrences with references.
//
// Names derive from the fragment's logical identifier (Schema.ID). Distinct
// fragments that share an identifier are told apart with a numeric suffix:
// "Widget", "Widget1", "Widget2". Members of a discriminated union are named
// after their parent, so the "Triangle" variant of "Shape" becomes
// "ShapeTriangle".
package schema
