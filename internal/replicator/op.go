package replicator

import (
	"time"

	"github.com/google/uuid"
	"github.com/nidhogg/cogkernel/internal/atomspace"
)

// OpType distinguishes the kinds of mutation that are replicated.
type OpType int

const (
	AddNodeOp OpType = iota
	AddLinkOp
	AttentionSetOp
)

// PendingOp is one entry in the pending-op log: a mutation tagged with the
// version vector observed at mutation time, the originating node, and a
// timestamp. The outgoing UUID list is carried in full so link replication
// is actually exercised rather than merely counted.
type PendingOp struct {
	Type      OpType
	AtomID    uuid.UUID
	AtomType  string
	Name      string
	Outgoing  []uuid.UUID
	Truth     atomspace.TruthValue
	Attention float64
	Metadata  map[string]any
	Version   VersionVector
	Origin    string
	Timestamp time.Time
}

func opFromAtom(typ OpType, atom *atomspace.Atom, version VersionVector, origin string, now time.Time) PendingOp {
	outgoing := append([]uuid.UUID(nil), atom.Outgoing...)
	return PendingOp{
		Type:      typ,
		AtomID:    atom.ID,
		AtomType:  atom.Type,
		Name:      atom.Name,
		Outgoing:  outgoing,
		Truth:     atom.Truth,
		Attention: atom.Attention,
		Metadata:  atom.Metadata,
		Version:   version.Clone(),
		Origin:    origin,
		Timestamp: now,
	}
}

// toRemoteAtom reconstructs the Atom this op describes, for application via
// atomspace.Store.ApplyRemote.
func (op PendingOp) toRemoteAtom() *atomspace.Atom {
	kind := atomspace.NodeKind
	if op.Type == AddLinkOp {
		kind = atomspace.LinkKind
	}
	return &atomspace.Atom{
		ID:        op.AtomID,
		Kind:      kind,
		Type:      op.AtomType,
		Name:      op.Name,
		Outgoing:  op.Outgoing,
		Truth:     op.Truth,
		Attention: op.Attention,
		Metadata:  op.Metadata,
	}
}
