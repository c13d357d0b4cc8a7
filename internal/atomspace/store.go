package atomspace

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is notified after every successful mutation. Observers are
// read-only sinks (mirror, semantic index, audit) — they never feed back
// into the store's own contract.
type Observer interface {
	OnAtomMutated(atom *Atom)
}

// Stats summarizes the current contents of a Store.
type Stats struct {
	NodeCount int
	LinkCount int
}

// Store owns every atom in the hypergraph: the type/name indices, attention
// bookkeeping, and pattern query. It is exclusively owned by the kernel.
type Store struct {
	mu        sync.RWMutex
	atoms     map[uuid.UUID]*Atom
	nodeIndex map[nodeKey]uuid.UUID
	linkIndex map[linkKey]uuid.UUID
	decayRate float64
	observers []Observer
	logger    *zap.Logger
}

// NewStore creates an empty AtomStore with the given attention decay rate
// (applied by DecayAttention) and logger.
func NewStore(decayRate float64, logger *zap.Logger) *Store {
	if decayRate <= 0 || decayRate >= 1 {
		decayRate = 0.995
	}
	return &Store{
		atoms:     make(map[uuid.UUID]*Atom),
		nodeIndex: make(map[nodeKey]uuid.UUID),
		linkIndex: make(map[linkKey]uuid.UUID),
		decayRate: decayRate,
		logger:    logger,
	}
}

// AddObserver registers a mutation observer.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) notify(atom *Atom) {
	cp := atom.clone()
	for _, o := range s.observers {
		o.OnAtomMutated(cp)
	}
}

// AddNode is idempotent by (type, name): an existing match has its truth
// and attention overwritten with the new arguments and is returned;
// otherwise a new Node is created, indexed, and appended to the attention
// view.
func (s *Store) AddNode(typ, name string, truth TruthValue, attention float64, metadata map[string]any) *Atom {
	s.mu.Lock()
	key := nodeKey{typ: typ, name: name}
	now := time.Now()

	if id, ok := s.nodeIndex[key]; ok {
		atom := s.atoms[id]
		atom.Truth = truth
		atom.Attention = clamp01(attention)
		if metadata != nil {
			atom.Metadata = metadata
		}
		atom.UpdatedAt = now
		cp := atom.clone()
		s.mu.Unlock()
		s.logger.Debug("atom upserted", zap.String("type", typ), zap.String("name", name))
		s.notify(cp)
		return cp
	}

	atom := &Atom{
		ID:        uuid.New(),
		Kind:      NodeKind,
		Type:      typ,
		Name:      name,
		Truth:     truth,
		Attention: clamp01(attention),
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.atoms[atom.ID] = atom
	s.nodeIndex[key] = atom.ID
	cp := atom.clone()
	s.mu.Unlock()

	s.logger.Debug("atom created", zap.String("type", typ), zap.String("name", name))
	s.notify(cp)
	return cp
}

// AddLink resolves each outgoing entry (a bare name is looked up — or
// created — as a ConceptNode) and creates or upserts a Link indexed by
// (type, hash-of-outgoing-UUIDs). It is an error for outgoing to reference
// a UUID this store does not own.
func (s *Store) AddLink(typ string, outgoing []string, truth TruthValue, attention float64, metadata map[string]any) (*Atom, error) {
	if len(outgoing) == 0 {
		return nil, ErrEmptyOutgoing
	}

	resolved := make([]uuid.UUID, 0, len(outgoing))
	for _, ref := range outgoing {
		id, err := s.resolveOutgoingRef(ref)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, id)
	}

	s.mu.Lock()
	key := linkKey{typ: typ, hash: hashOutgoing(resolved)}
	now := time.Now()

	if id, ok := s.linkIndex[key]; ok {
		atom := s.atoms[id]
		atom.Truth = truth
		atom.Attention = clamp01(attention)
		if metadata != nil {
			atom.Metadata = metadata
		}
		atom.UpdatedAt = now
		cp := atom.clone()
		s.mu.Unlock()
		s.notify(cp)
		return cp, nil
	}

	atom := &Atom{
		ID:        uuid.New(),
		Kind:      LinkKind,
		Type:      typ,
		Outgoing:  resolved,
		Truth:     truth,
		Attention: clamp01(attention),
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.atoms[atom.ID] = atom
	s.linkIndex[key] = atom.ID
	cp := atom.clone()
	s.mu.Unlock()

	s.logger.Debug("link created", zap.String("type", typ), zap.Int("arity", len(resolved)))
	s.notify(cp)
	return cp, nil
}

// resolveOutgoingRef resolves a bare name to (or creates) a ConceptNode, or
// validates that a UUID string is owned by this store.
func (s *Store) resolveOutgoingRef(ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		s.mu.RLock()
		_, ok := s.atoms[id]
		s.mu.RUnlock()
		if !ok {
			return uuid.Nil, ErrInvalidReference
		}
		return id, nil
	}
	if existing, ok := s.GetNode("ConceptNode", ref); ok {
		return existing.ID, nil
	}
	atom := s.AddNode("ConceptNode", ref, TruthValue{Strength: 1.0, Confidence: 0.9}, 0.5, nil)
	return atom.ID, nil
}

// GetNode returns the Node indexed by (type, name), if any.
func (s *Store) GetNode(typ, name string) (*Atom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nodeIndex[nodeKey{typ: typ, name: name}]
	if !ok {
		return nil, false
	}
	return s.atoms[id].clone(), true
}

// GetAtom returns the atom with the given id, if it exists.
func (s *Store) GetAtom(id uuid.UUID) (*Atom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atom, ok := s.atoms[id]
	if !ok {
		return nil, false
	}
	return atom.clone(), true
}

// Stats reports the current atom counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Stats
	for _, a := range s.atoms {
		if a.Kind == NodeKind {
			st.NodeCount++
		} else {
			st.LinkCount++
		}
	}
	return st
}

// GetTopAttention returns the k atoms of highest current attention. Ties
// are broken arbitrarily (map iteration order), per contract.
func (s *Store) GetTopAttention(k int) []*Atom {
	s.mu.RLock()
	all := make([]*Atom, 0, len(s.atoms))
	for _, a := range s.atoms {
		all = append(all, a.clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Attention > all[j].Attention })
	if k < len(all) {
		all = all[:k]
	}
	return all
}

// SetAttention overwrites a single atom's attention value in place,
// leaving truth and metadata untouched. Returns false if id is unknown.
func (s *Store) SetAttention(id uuid.UUID, attention float64) (*Atom, bool) {
	s.mu.Lock()
	atom, ok := s.atoms[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	atom.Attention = clamp01(attention)
	atom.UpdatedAt = time.Now()
	cp := atom.clone()
	s.mu.Unlock()
	s.notify(cp)
	return cp, true
}

// ApplyRemote inserts or overwrites an atom with the exact identity given
// (preserving its UUID, kind, and outgoing set), reindexing by (type, name)
// or (type, outgoing-hash) as appropriate. It exists for the replication
// layer, which must preserve atom identity across nodes; syscall handlers
// must never call it directly.
func (s *Store) ApplyRemote(remote *Atom) *Atom {
	s.mu.Lock()
	now := time.Now()

	existing, ok := s.atoms[remote.ID]
	if ok {
		existing.Truth = remote.Truth
		existing.Attention = clamp01(remote.Attention)
		if remote.Metadata != nil {
			existing.Metadata = remote.Metadata
		}
		existing.UpdatedAt = now
		cp := existing.clone()
		s.mu.Unlock()
		s.notify(cp)
		return cp
	}

	atom := remote.clone()
	atom.Attention = clamp01(atom.Attention)
	if atom.CreatedAt.IsZero() {
		atom.CreatedAt = now
	}
	atom.UpdatedAt = now
	s.atoms[atom.ID] = atom
	if atom.Kind == NodeKind {
		s.nodeIndex[nodeKey{typ: atom.Type, name: atom.Name}] = atom.ID
	} else {
		s.linkIndex[linkKey{typ: atom.Type, hash: hashOutgoing(atom.Outgoing)}] = atom.ID
	}
	cp := atom.clone()
	s.mu.Unlock()
	s.logger.Debug("remote atom applied", zap.String("type", atom.Type), zap.Stringer("kind", atom.Kind))
	s.notify(cp)
	return cp
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func hashOutgoing(ids []uuid.UUID) string {
	h := sha256.New()
	for _, id := range ids {
		b := id
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
