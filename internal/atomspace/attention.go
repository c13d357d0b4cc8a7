package atomspace

import "github.com/google/uuid"

// SpreadAttention raises the attention of every Link whose outgoing
// contains source by factor * source.attention (clamped to 1.0), then
// recurses with halved factor into every other atom in that link's
// outgoing, up to depth levels. depth <= 0 terminates. Cycles are bounded
// purely by depth; no visited-set is required. Returns every atom whose
// attention changed as a result (across the full recursion), for callers
// that need to propagate the mutation (e.g. the replicator's version
// vectors).
func (s *Store) SpreadAttention(source uuid.UUID, factor float64, depth int) []*Atom {
	if depth <= 0 {
		return nil
	}

	s.mu.Lock()
	srcAtom, ok := s.atoms[source]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	sourceAttention := srcAtom.Attention

	var touched []*Atom
	for _, atom := range s.atoms {
		if atom.Kind != LinkKind {
			continue
		}
		for _, member := range atom.Outgoing {
			if member == source {
				atom.Attention = clamp01(atom.Attention + factor*sourceAttention)
				touched = append(touched, atom)
				break
			}
		}
	}
	s.mu.Unlock()

	for _, o := range s.observers {
		for _, t := range touched {
			o.OnAtomMutated(t.clone())
		}
	}

	all := make([]*Atom, 0, len(touched))
	for _, t := range touched {
		all = append(all, t.clone())
	}

	for _, link := range touched {
		for _, member := range link.Outgoing {
			if member == source {
				continue
			}
			all = append(all, s.SpreadAttention(member, factor/2, depth-1)...)
		}
	}
	return all
}

// DecayAttention multiplies every atom's attention by the store's decay
// rate, returning every mutated atom.
func (s *Store) DecayAttention() []*Atom {
	s.mu.Lock()
	touched := make([]*Atom, 0, len(s.atoms))
	for _, atom := range s.atoms {
		atom.Attention = clamp01(atom.Attention * s.decayRate)
		touched = append(touched, atom)
	}
	s.mu.Unlock()

	all := make([]*Atom, 0, len(touched))
	for _, o := range s.observers {
		for _, t := range touched {
			o.OnAtomMutated(t.clone())
		}
	}
	for _, t := range touched {
		all = append(all, t.clone())
	}
	return all
}
