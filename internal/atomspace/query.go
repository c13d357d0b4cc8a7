package atomspace

import "strings"

// Pattern describes a query against the AtomStore. A leading '?' on a name
// string (in Name or an Outgoing element) denotes a variable; matching
// binds the variable to the matched name. Truth/attention thresholds are
// inclusive lower bounds.
type Pattern struct {
	Type          string
	Name          string
	Outgoing      []string
	MinStrength   float64
	MinConfidence float64
	MinAttention  float64
}

// Bindings maps variable names (without the leading '?') to the string
// they matched.
type Bindings map[string]string

// Match pairs an atom with the bindings produced by matching it.
type Match struct {
	Atom     *Atom
	Bindings Bindings
}

func isVariable(s string) bool       { return strings.HasPrefix(s, "?") }
func variableName(s string) string   { return strings.TrimPrefix(s, "?") }

// Query returns every atom matching pattern, with variable bindings.
// Result ordering is unspecified.
func (s *Store) Query(pattern Pattern) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Match
	for _, atom := range s.atoms {
		if bindings, ok := s.matchAtomLocked(atom, pattern); ok {
			results = append(results, Match{Atom: atom.clone(), Bindings: bindings})
		}
	}
	return results
}

// matchAtomLocked evaluates pattern against atom. Caller must hold s.mu
// for reading (outgoing-element resolution looks up sibling atoms).
func (s *Store) matchAtomLocked(atom *Atom, pattern Pattern) (Bindings, bool) {
	bindings := Bindings{}

	if pattern.Type != "" && pattern.Type != atom.Type {
		return nil, false
	}

	if pattern.Name != "" {
		if isVariable(pattern.Name) {
			if atom.Name == "" {
				return nil, false
			}
			bindings[variableName(pattern.Name)] = atom.Name
		} else if pattern.Name != atom.Name {
			return nil, false
		}
	}

	if pattern.Outgoing != nil {
		if atom.Kind != LinkKind || len(pattern.Outgoing) != len(atom.Outgoing) {
			return nil, false
		}
		for i, elem := range pattern.Outgoing {
			ref := s.atoms[atom.Outgoing[i]]
			var name string
			if ref != nil {
				name = ref.Name
			}
			if isVariable(elem) {
				bindings[variableName(elem)] = name
			} else if elem != name {
				return nil, false
			}
		}
	}

	if atom.Truth.Strength < pattern.MinStrength {
		return nil, false
	}
	if atom.Truth.Confidence < pattern.MinConfidence {
		return nil, false
	}
	if atom.Attention < pattern.MinAttention {
		return nil, false
	}

	return bindings, true
}
