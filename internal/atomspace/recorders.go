package atomspace

import "fmt"

// entelechyStrength, entelechyConfidence and entelechyAttention are the
// literal constants shared by both recorders; they feed downstream
// attention-based queries so must match exactly.
var (
	entelechyStrength   = 0.99
	entelechyConfidence = 0.95
	entelechyAttention  = 0.95
)

// RecordEntelechyFailure constructs a ConceptNode describing a failure (its
// severity kept in the node's metadata) plus an EvaluationLink from the
// entelechy_failure PredicateNode to it, using preset truth/attention.
func (s *Store) RecordEntelechyFailure(desc string, severity float64) *Atom {
	concept := s.AddNode("ConceptNode", desc,
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, map[string]any{"severity": severity})

	predicate := s.AddNode("PredicateNode", "entelechy_failure",
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, nil)

	link, err := s.AddLink("EvaluationLink",
		[]string{predicate.ID.String(), concept.ID.String()},
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, nil)
	if err != nil {
		// predicate and concept were just created by this store, so
		// outgoing resolution cannot fail.
		panic(fmt.Sprintf("atomspace: unreachable AddLink error: %v", err))
	}
	return link
}

// RecordTranscend constructs a ConceptNode plus an InheritanceLink from
// source to target, using preset truth/attention.
func (s *Store) RecordTranscend(desc, target string) *Atom {
	concept := s.AddNode("ConceptNode", desc,
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, nil)
	targetNode := s.AddNode("ConceptNode", target,
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, nil)

	link, err := s.AddLink("InheritanceLink",
		[]string{concept.ID.String(), targetNode.ID.String()},
		TruthValue{Strength: entelechyStrength, Confidence: entelechyConfidence},
		entelechyAttention, nil)
	if err != nil {
		panic(fmt.Sprintf("atomspace: unreachable AddLink error: %v", err))
	}
	return link
}
