package schema

import "fmt"

// Register records root and every fragment reachable from it in the
// reference table. A fragment seen for the first time stays inline; the
// second sighting hoists it under a freshly minted name. Members of a union
// that carries a discriminator are named on first sight, prefixed with the
// union's identifier.
//
// Register panics with an error wrapping ErrMissingID if a fragment has no
// identifier, and with ErrUnresolvedRecursion if a recursive placeholder has
// no enclosing schema with its identifier.
func (s *Store) Register(root *Schema) {
	w := &walker{store: s, onPath: make(map[*Schema]struct{})}
	w.visit(root, "")
}

// Bind names f as the target of recursive placeholders for f's identifier.
// Unlike Register it does not count a use-site and does not walk f's
// children, so fragments reachable only through f are still hoisted by
// their own sightings alone. Register binds placeholders to their nearest
// enclosing schema; Bind covers placeholders that reach the table outside
// of one.
func (s *Store) Bind(f *Schema) {
	base := baseName(f)
	e := s.lookup(f)
	if e == nil {
		e = s.insert(f)
	}
	if !e.named {
		s.assign(e, base, "")
	}
	if _, ok := s.recursive[f.ID]; !ok {
		s.recursive[f.ID] = e
	}
}

// walker holds the state of a single Register traversal.
type walker struct {
	store  *Store
	path   []*entry
	onPath map[*Schema]struct{}
}

func (w *walker) visit(f *Schema, parent string) {
	if f == nil {
		return
	}
	if f.RecursiveRef != "" {
		w.recursive(f)
		return
	}

	base := baseName(f)

	if _, ok := w.onPath[f]; ok {
		w.store.logger.Debug("schema cycle skipped", "id", f.ID)
		return
	}

	s := w.store
	e := s.lookup(f)
	switch {
	case e == nil:
		e = s.insert(f)
		if parent != "" {
			s.assign(e, base, parent)
		}
	case !e.named:
		s.assign(e, base, parent)
	}

	w.onPath[f] = struct{}{}
	w.path = append(w.path, e)
	defer func() {
		delete(w.onPath, f)
		w.path = w.path[:len(w.path)-1]
	}()

	w.visit(f.AdditionalProperties, "")
	w.visit(f.Items, "")
	for _, m := range f.AllOf {
		w.visit(m, "")
	}

	var owner string
	if f.Discriminator != nil {
		owner = base
	}
	for _, m := range f.AnyOf {
		w.visit(m, owner)
	}

	for _, p := range f.Properties.All() {
		w.visit(p, "")
	}
}

// recursive hoists the nearest enclosing schema a placeholder points at.
// Outside of such a schema the placeholder resolves to whatever an earlier
// walk bound its identifier to.
func (w *walker) recursive(f *Schema) {
	for i := len(w.path) - 1; i >= 0; i-- {
		e := w.path[i]
		if e.schema.ID != f.RecursiveRef {
			continue
		}
		if !e.named {
			w.store.assign(e, e.schema.ID, "")
		}
		if _, ok := w.store.recursive[f.RecursiveRef]; !ok {
			w.store.recursive[f.RecursiveRef] = e
		}
		return
	}
	if _, ok := w.store.recursive[f.RecursiveRef]; ok {
		return
	}
	panic(fmt.Errorf("%w: %q", ErrUnresolvedRecursion, f.RecursiveRef))
}

func baseName(f *Schema) string {
	if f.ID == "" {
		panic(fmt.Errorf("%w: %s", ErrMissingID, describe(f)))
	}
	return f.ID
}
