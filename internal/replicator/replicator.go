package replicator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/collab"
)

// PeerInfo tracks a known cluster member.
type PeerInfo struct {
	NodeID   string
	LastSync time.Time
	IsLeader bool
}

// Stats summarizes replication activity.
type Stats struct {
	PendingOps int
	Conflicts  int
	Peers      int
}

// Replicator wraps an AtomStore with version-vector bookkeeping, a
// pending-op log, and transport-mediated sync against peers. Every mutation
// routed through it bumps the local node's slot in the mutated atom's
// version vector.
type Replicator struct {
	mu         sync.Mutex
	nodeID     string
	store      *atomspace.Store
	transport  collab.Transport
	clock      collab.Clock
	syncEvery  float64 // seconds
	lastSyncAt float64
	lastRecvID string

	versions map[uuid.UUID]VersionVector
	pending  []PendingOp
	peers    map[string]*PeerInfo
	conflict int

	logger *zap.Logger
}

// New constructs a Replicator. syncInterval is the minimum spacing between
// successful syncs.
func New(nodeID string, store *atomspace.Store, transport collab.Transport, clock collab.Clock, syncInterval time.Duration, logger *zap.Logger) *Replicator {
	return &Replicator{
		nodeID:    nodeID,
		store:     store,
		transport: transport,
		clock:     clock,
		syncEvery: syncInterval.Seconds(),
		versions:  make(map[uuid.UUID]VersionVector),
		peers:     make(map[string]*PeerInfo),
		logger:    logger,
	}
}

// bumpVersion increments nodeID's slot for atomID and returns the new
// vector (a copy).
func (r *Replicator) bumpVersion(atomID uuid.UUID) VersionVector {
	vv := r.versions[atomID]
	if vv == nil {
		vv = VersionVector{}
	} else {
		vv = vv.Clone()
	}
	vv[r.nodeID]++
	r.versions[atomID] = vv
	return vv.Clone()
}

// AddNode routes a local node creation/upsert through the replicator.
func (r *Replicator) AddNode(typ, name string, truth atomspace.TruthValue, attention float64, metadata map[string]any) *atomspace.Atom {
	atom := r.store.AddNode(typ, name, truth, attention, metadata)

	r.mu.Lock()
	vv := r.bumpVersion(atom.ID)
	r.pending = append(r.pending, opFromAtom(AddNodeOp, atom, vv, r.nodeID, r.now()))
	r.mu.Unlock()

	return atom
}

// AddLink routes a local link creation/upsert through the replicator.
func (r *Replicator) AddLink(typ string, outgoing []string, truth atomspace.TruthValue, attention float64, metadata map[string]any) (*atomspace.Atom, error) {
	atom, err := r.store.AddLink(typ, outgoing, truth, attention, metadata)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	vv := r.bumpVersion(atom.ID)
	r.pending = append(r.pending, opFromAtom(AddLinkOp, atom, vv, r.nodeID, r.now()))
	r.mu.Unlock()

	return atom, nil
}

// SetAttention routes a local attention write through the replicator.
// Callers that mutate attention outside AddNode/AddLink (attend, forget,
// decay) use this to keep the pending-op log and version vector current.
func (r *Replicator) SetAttention(atom *atomspace.Atom) {
	r.mu.Lock()
	vv := r.bumpVersion(atom.ID)
	r.pending = append(r.pending, opFromAtom(AttentionSetOp, atom, vv, r.nodeID, r.now()))
	r.mu.Unlock()
}

// SetAttentionByID overwrites a single atom's attention via the wrapped
// store and logs the mutation. Returns false if id is unknown.
func (r *Replicator) SetAttentionByID(id uuid.UUID, attention float64) (*atomspace.Atom, bool) {
	atom, ok := r.store.SetAttention(id, attention)
	if !ok {
		return nil, false
	}
	r.SetAttention(atom)
	return atom, true
}

// SpreadAttention spreads attention via the wrapped store, then routes
// every touched atom's new attention value through the pending-op log.
func (r *Replicator) SpreadAttention(source uuid.UUID, factor float64, depth int) []*atomspace.Atom {
	touched := r.store.SpreadAttention(source, factor, depth)
	for _, atom := range touched {
		r.SetAttention(atom)
	}
	return touched
}

// DecayAttention decays the wrapped store's attention values, then routes
// every touched atom through the pending-op log.
func (r *Replicator) DecayAttention() []*atomspace.Atom {
	touched := r.store.DecayAttention()
	for _, atom := range touched {
		r.SetAttention(atom)
	}
	return touched
}

func (r *Replicator) now() time.Time {
	return time.Unix(0, int64(r.clock.Now()*float64(time.Second)))
}

// Stats reports current replication counters.
func (r *Replicator) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		PendingOps: len(r.pending),
		Conflicts:  r.conflict,
		Peers:      len(r.peers),
	}
}

// Store returns the wrapped AtomStore, for read-only introspection
// (namespace /atomspace lookups).
func (r *Replicator) Store() *atomspace.Store {
	return r.store
}
