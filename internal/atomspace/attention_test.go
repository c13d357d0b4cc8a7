package atomspace

import (
	"testing"

	"go.uber.org/zap"
)

func TestSpreadAttentionDepthZeroIsNoOp(t *testing.T) {
	s := newTestStore()
	cat := s.AddNode("ConceptNode", "cat", TruthValue{Strength: 0.9, Confidence: 0.8}, 0.9, nil)
	link, _ := s.AddLink("EvaluationLink", []string{"cat", "mammal"}, TruthValue{Strength: 0.9, Confidence: 0.8}, 0.1, nil)

	s.SpreadAttention(cat.ID, 0.5, 0)

	after, _ := s.GetAtom(link.ID)
	if after.Attention != link.Attention {
		t.Errorf("expected no change at depth 0, got %v want %v", after.Attention, link.Attention)
	}
}

func TestSpreadAttentionRaisesContainingLinks(t *testing.T) {
	s := newTestStore()
	cat := s.AddNode("ConceptNode", "cat", TruthValue{Strength: 0.9, Confidence: 0.8}, 0.8, nil)
	link, _ := s.AddLink("EvaluationLink", []string{"cat", "mammal"}, TruthValue{Strength: 0.9, Confidence: 0.8}, 0.1, nil)

	s.SpreadAttention(cat.ID, 0.5, 1)

	after, _ := s.GetAtom(link.ID)
	if after.Attention <= link.Attention {
		t.Errorf("expected attention to rise above %v, got %v", link.Attention, after.Attention)
	}
}

func TestDecayAttentionMultipliesByRate(t *testing.T) {
	s := NewStore(0.5, zap.NewNop())
	a := s.AddNode("ConceptNode", "dog", TruthValue{Strength: 0.9, Confidence: 0.8}, 0.8, nil)

	s.DecayAttention()

	after, _ := s.GetAtom(a.ID)
	if after.Attention != 0.4 {
		t.Errorf("expected 0.8 * 0.5 = 0.4, got %v", after.Attention)
	}
}
