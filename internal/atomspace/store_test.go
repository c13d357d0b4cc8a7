package atomspace

import (
	"testing"

	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore(0.995, zap.NewNop())
}

func TestAddNodeIdempotent(t *testing.T) {
	s := newTestStore()
	a1 := s.AddNode("ConceptNode", "dog", TruthValue{Strength: 0.8, Confidence: 0.9}, 0.5, nil)
	a2 := s.AddNode("ConceptNode", "dog", TruthValue{Strength: 0.6, Confidence: 0.7}, 0.3, nil)

	if a1.ID != a2.ID {
		t.Fatalf("expected same atom ID on re-add, got %s and %s", a1.ID, a2.ID)
	}
	if st := s.Stats(); st.NodeCount != 1 {
		t.Fatalf("expected 1 node after idempotent add, got %d", st.NodeCount)
	}
	if a2.Truth.Strength != 0.6 {
		t.Errorf("expected overwritten strength 0.6, got %v", a2.Truth.Strength)
	}
}

func TestAddLinkEmptyOutgoing(t *testing.T) {
	s := newTestStore()
	_, err := s.AddLink("EvaluationLink", nil, TruthValue{Strength: 1, Confidence: 1}, 1, nil)
	if err != ErrEmptyOutgoing {
		t.Fatalf("expected ErrEmptyOutgoing, got %v", err)
	}
}

func TestAddLinkInvalidReference(t *testing.T) {
	s := newTestStore()
	foreign := "550e8400-e29b-41d4-a716-446655440000"
	_, err := s.AddLink("EvaluationLink", []string{foreign}, TruthValue{Strength: 1, Confidence: 1}, 1, nil)
	if err != ErrInvalidReference {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestAddLinkResolvesBareNames(t *testing.T) {
	s := newTestStore()
	link, err := s.AddLink("EvaluationLink", []string{"cat", "mammal"},
		TruthValue{Strength: 0.9, Confidence: 0.8}, 0.5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(link.Outgoing) != 2 {
		t.Fatalf("expected arity 2, got %d", len(link.Outgoing))
	}
	if st := s.Stats(); st.NodeCount != 2 || st.LinkCount != 1 {
		t.Fatalf("expected 2 nodes + 1 link, got %+v", st)
	}
}

func TestAddLinkIdempotentByOutgoingHash(t *testing.T) {
	s := newTestStore()
	l1, _ := s.AddLink("EvaluationLink", []string{"cat", "mammal"}, TruthValue{Strength: 0.9, Confidence: 0.8}, 0.5, nil)
	l2, _ := s.AddLink("EvaluationLink", []string{"cat", "mammal"}, TruthValue{Strength: 0.4, Confidence: 0.4}, 0.1, nil)
	if l1.ID != l2.ID {
		t.Fatalf("expected same link on re-add with identical outgoing, got %s and %s", l1.ID, l2.ID)
	}
}

func TestGetTopAttention(t *testing.T) {
	s := newTestStore()
	s.AddNode("ConceptNode", "low", TruthValue{Strength: 1, Confidence: 1}, 0.1, nil)
	s.AddNode("ConceptNode", "high", TruthValue{Strength: 1, Confidence: 1}, 0.9, nil)
	s.AddNode("ConceptNode", "mid", TruthValue{Strength: 1, Confidence: 1}, 0.5, nil)

	top := s.GetTopAttention(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	if top[0].Name != "high" {
		t.Errorf("expected highest attention first, got %q", top[0].Name)
	}
}

func TestAttentionClampedToUnitRange(t *testing.T) {
	s := newTestStore()
	a := s.AddNode("ConceptNode", "over", TruthValue{Strength: 1, Confidence: 1}, 5.0, nil)
	if a.Attention != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", a.Attention)
	}
	b := s.AddNode("ConceptNode", "under", TruthValue{Strength: 1, Confidence: 1}, -5.0, nil)
	if b.Attention != 0.0 {
		t.Errorf("expected clamp to 0.0, got %v", b.Attention)
	}
}

type recordingObserver struct {
	mutated []*Atom
}

func (r *recordingObserver) OnAtomMutated(a *Atom) {
	r.mutated = append(r.mutated, a)
}

func TestObserverNotifiedOnMutation(t *testing.T) {
	s := newTestStore()
	obs := &recordingObserver{}
	s.AddObserver(obs)

	s.AddNode("ConceptNode", "dog", TruthValue{Strength: 0.8, Confidence: 0.9}, 0.5, nil)
	if len(obs.mutated) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(obs.mutated))
	}
	if obs.mutated[0].Name != "dog" {
		t.Errorf("expected notified atom named dog, got %q", obs.mutated[0].Name)
	}
}
