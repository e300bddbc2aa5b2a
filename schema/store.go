package schema

import "log/slog"

// Store holds the schema state of one document: the fragment memo, the
// reference table and the name counters. A Store is built per document and
// discarded afterwards. It is not safe for concurrent use.
type Store struct {
	schemas map[Key]*Schema

	entries   map[uint64][]*entry
	hashes    map[*Schema]uint64
	named     []*entry
	recursive map[string]*entry

	counters map[string]int
	taken    map[string]struct{}
	builtins map[string]*Schema

	logger *slog.Logger
}

// entry is one row of the reference table.
type entry struct {
	schema  *Schema
	name    string
	named   bool
	builtin bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output about hoisting.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithBuiltin pre-populates the memo with a fixed fragment for key. The
// generator is never invoked for key, and the fragment's identifier is
// reserved as its reference name.
func WithBuiltin(key Key, fragment *Schema) Option {
	return func(s *Store) {
		s.schemas[key] = fragment
		s.builtins[fragment.ID] = fragment
		s.counters[fragment.ID] = 0
		s.taken[fragment.ID] = struct{}{}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		schemas:   make(map[Key]*Schema),
		entries:   make(map[uint64][]*entry),
		hashes:    make(map[*Schema]uint64),
		recursive: make(map[string]*entry),
		counters:  make(map[string]int),
		taken:     make(map[string]struct{}),
		builtins:  make(map[string]*Schema),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrAdd returns the fragment stored for key. On a miss it calls generate
// exactly once and stores the result. Generators may call GetOrAdd for other
// keys while producing a fragment. If generate stored key itself through a
// nested call, the first stored fragment wins.
func (s *Store) GetOrAdd(key Key, generate func(Key) *Schema) *Schema {
	if f, ok := s.schemas[key]; ok {
		return f
	}
	f := generate(key)
	if first, ok := s.schemas[key]; ok {
		return first
	}
	s.schemas[key] = f
	return f
}

// Component is a hoisted fragment and its reference name.
type Component struct {
	Name   string
	Schema *Schema
}

// Components returns every named fragment in the order the names were minted.
func (s *Store) Components() []Component {
	out := make([]Component, len(s.named))
	for i, e := range s.named {
		out[i] = Component{Name: e.name, Schema: e.schema}
	}
	return out
}

// Name returns the reference name of f, if f has been hoisted.
func (s *Store) Name(f *Schema) (string, bool) {
	if f == nil {
		return "", false
	}
	e := s.lookup(f)
	if e == nil || !e.named {
		return "", false
	}
	return e.name, true
}

// RecursiveName returns the reference name that recursive placeholders for
// id resolve to.
func (s *Store) RecursiveName(id string) (string, bool) {
	e, ok := s.recursive[id]
	if !ok || !e.named {
		return "", false
	}
	return e.name, true
}

func (s *Store) hash(f *Schema) uint64 {
	if h, ok := s.hashes[f]; ok {
		return h
	}
	h := Hash(f)
	s.hashes[f] = h
	return h
}

func (s *Store) lookup(f *Schema) *entry {
	for _, e := range s.entries[s.hash(f)] {
		if e.schema == f || Equal(e.schema, f) {
			return e
		}
	}
	return nil
}

func (s *Store) insert(f *Schema) *entry {
	e := &entry{schema: f}
	if b, ok := s.builtins[f.ID]; ok && Equal(b, f) {
		e.builtin = true
	}
	h := s.hash(f)
	s.entries[h] = append(s.entries[h], e)
	return e
}
