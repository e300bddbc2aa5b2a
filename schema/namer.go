package schema

import "strconv"

// assign gives e its reference name. Built-in fragments keep their reserved
// identifier; everything else goes through mint.
func (s *Store) assign(e *entry, base, parent string) {
	name := e.schema.ID
	if !e.builtin {
		name = s.mint(base, parent)
	}
	e.name = name
	e.named = true
	s.named = append(s.named, e)
	s.logger.Debug("schema hoisted", "id", e.schema.ID, "name", name, "parent", parent)
}

// mint produces a document-unique name for base. The first claimant of a base
// keeps it unchanged; later claimants get an increasing numeric suffix
// starting at 1. A parent, when present, prefixes the base.
func (s *Store) mint(base, parent string) string {
	if parent != "" {
		base = parent + base
	}

	n, seen := s.counters[base]
	if !seen {
		s.counters[base] = 0
		if _, taken := s.taken[base]; !taken {
			s.taken[base] = struct{}{}
			return base
		}
	}

	for {
		n++
		name := base + strconv.Itoa(n)
		if _, taken := s.taken[name]; taken {
			continue
		}
		s.counters[base] = n
		s.taken[name] = struct{}{}
		return name
	}
}
