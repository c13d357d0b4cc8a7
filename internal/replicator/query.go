package replicator

import "github.com/nidhogg/cogkernel/internal/atomspace"

// DistributedQuery returns the local match set immediately. Remote results
// are folded in as they arrive via ApplyRemoteOps and subsequent syncs —
// there is no synchronous remote round-trip in the eventual-consistency
// model. Duplicates across nodes cannot occur on the return set because
// matches are deduplicated by atom UUID.
func (r *Replicator) DistributedQuery(pattern atomspace.Pattern) []atomspace.Match {
	local := r.store.Query(pattern)

	seen := make(map[string]bool, len(local))
	out := make([]atomspace.Match, 0, len(local))
	for _, m := range local {
		id := m.Atom.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, m)
	}
	return out
}
