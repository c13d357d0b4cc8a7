// Package atomspace implements the kernel's hypergraph knowledge store:
// atoms (nodes and links), truth values, attention, and pattern queries.
// It is the sole owner of every atom; external callers hold only UUIDs.
package atomspace

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes a Node (named, no outgoing set) from a Link
// (unnamed, outgoing set of length >= 1).
type Kind int

const (
	NodeKind Kind = iota
	LinkKind
)

func (k Kind) String() string {
	if k == NodeKind {
		return "node"
	}
	return "link"
}

// TruthValue is the (strength, confidence) pair attached to every atom.
type TruthValue struct {
	Strength   float64
	Confidence float64
}

// Atom is the unit of storage in the hypergraph.
type Atom struct {
	ID         uuid.UUID
	Kind       Kind
	Type       string
	Name       string      // Nodes only
	Outgoing   []uuid.UUID // Links only, length >= 1
	Truth      TruthValue
	Attention  float64
	Metadata   map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// clone returns a shallow copy safe to hand to a caller without risking
// concurrent mutation of the store's own record.
func (a *Atom) clone() *Atom {
	cp := *a
	if a.Outgoing != nil {
		cp.Outgoing = append([]uuid.UUID(nil), a.Outgoing...)
	}
	if a.Metadata != nil {
		cp.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// nodeKey indexes Nodes by (type, name) — no two Nodes with the same pair
// coexist.
type nodeKey struct {
	typ  string
	name string
}

// linkKey indexes Links by (type, hash-of-outgoing-UUIDs) so duplicate
// links with identical outgoing resolve to the existing atom.
type linkKey struct {
	typ  string
	hash string
}
