package schema

import "maps"

// Test-only views of the store's internal tables.

// TableEntry is a snapshot of one reference table row.
type TableEntry struct {
	ID    string
	Name  string
	Named bool
}

// Table returns the reference table rows in hash bucket order.
func (s *Store) Table() []TableEntry {
	var out []TableEntry
	for _, bucket := range s.entries {
		for _, e := range bucket {
			out = append(out, TableEntry{ID: e.schema.ID, Name: e.name, Named: e.named})
		}
	}
	return out
}

// Counters returns a copy of the name counter table.
func (s *Store) Counters() map[string]int {
	return maps.Clone(s.counters)
}

// Mint exposes the name minter.
func (s *Store) Mint(base, parent string) string {
	return s.mint(base, parent)
}
