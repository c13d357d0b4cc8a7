// Package mirror persists every atom mutation into Neo4j for durability and
// graph introspection. The AtomStore stays the sole authority for kernel
// behavior; the mirror is a write-behind shadow that can be rebuilt or lost
// without affecting a running kernel, and can rehydrate a fresh AtomStore
// on startup.
package mirror

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
)

// Store wraps a Neo4j driver dedicated to mirroring AtomStore contents.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore dials Neo4j and verifies connectivity.
func NewStore(ctx context.Context, uri, user, password string, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("mirror: create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("mirror: ping neo4j: %w", err)
	}
	return &Store{driver: driver, logger: logger}, nil
}

// Close shuts down the Neo4j driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// OnAtomMutated implements atomspace.Observer. Writes happen on a background
// goroutine; a Neo4j outage only ever produces a warn log, never a blocked
// syscall.
func (s *Store) OnAtomMutated(atom *atomspace.Atom) {
	go func() {
		ctx := context.Background()
		var err error
		if atom.Kind == atomspace.NodeKind {
			err = s.writeNode(ctx, atom)
		} else {
			err = s.writeLink(ctx, atom)
		}
		if err != nil {
			s.logger.Warn("mirror: write failed", zap.String("atom", atom.ID.String()), zap.Error(err))
		}
	}()
}

func (s *Store) writeNode(ctx context.Context, atom *atomspace.Atom) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MERGE (a:Atom {id: $id})
		 SET a.type = $type, a.name = $name,
		     a.strength = $strength, a.confidence = $confidence,
		     a.attention = $attention, a.updated_at = datetime()`,
		map[string]any{
			"id": atom.ID.String(), "type": atom.Type, "name": atom.Name,
			"strength": atom.Truth.Strength, "confidence": atom.Truth.Confidence,
			"attention": atom.Attention,
		})
	return err
}

func (s *Store) writeLink(ctx context.Context, atom *atomspace.Atom) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MERGE (l:Atom {id: $id})
		 SET l.type = $type, l.strength = $strength, l.confidence = $confidence,
		     l.attention = $attention, l.updated_at = datetime()`,
		map[string]any{
			"id": atom.ID.String(), "type": atom.Type,
			"strength": atom.Truth.Strength, "confidence": atom.Truth.Confidence,
			"attention": atom.Attention,
		})
	if err != nil {
		return err
	}

	for position, target := range atom.Outgoing {
		_, err := session.Run(ctx,
			`MATCH (l:Atom {id: $linkID}), (t:Atom {id: $targetID})
			 MERGE (l)-[r:OUTGOING {position: $position}]->(t)`,
			map[string]any{
				"linkID": atom.ID.String(), "targetID": target.String(), "position": position,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// MirroredAtom is the row shape returned by RestoreFromMirror, enough to
// reconstruct a Node or a Link (with its outgoing IDs) via
// AtomStore.ApplyRemote in a single pass over the restored rows.
type MirroredAtom struct {
	ID         uuid.UUID
	Type       string
	Name       string
	IsNode     bool
	Strength   float64
	Confidence float64
	Attention  float64
	Outgoing   []uuid.UUID
}

// ToAtom reconstructs the atomspace.Atom this row mirrors, suitable for
// Store.ApplyRemote. CreatedAt/UpdatedAt are left zero since the mirror
// schema does not currently round-trip timestamps.
func (m MirroredAtom) ToAtom() *atomspace.Atom {
	kind := atomspace.LinkKind
	if m.IsNode {
		kind = atomspace.NodeKind
	}
	return &atomspace.Atom{
		ID:        m.ID,
		Kind:      kind,
		Type:      m.Type,
		Name:      m.Name,
		Outgoing:  m.Outgoing,
		Truth:     atomspace.TruthValue{Strength: m.Strength, Confidence: m.Confidence},
		Attention: m.Attention,
	}
}

// RestoreFromMirror reads every mirrored atom back out of Neo4j, ordered so
// that a node always precedes any link referencing it.
func (s *Store) RestoreFromMirror(ctx context.Context) ([]MirroredAtom, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:Atom)
		 OPTIONAL MATCH (a)-[r:OUTGOING]->(t:Atom)
		 WITH a, r, t ORDER BY r.position
		 RETURN a.id, a.type, a.name, a.strength, a.confidence, a.attention,
		        collect(t.id) AS outgoing`, nil)
	if err != nil {
		return nil, fmt.Errorf("mirror: restore query: %w", err)
	}

	var atoms []MirroredAtom
	for result.Next(ctx) {
		rec := result.Record()
		idStr, _ := rec.Get("a.id")
		typ, _ := rec.Get("a.type")
		name, _ := rec.Get("a.name")
		strength, _ := rec.Get("a.strength")
		confidence, _ := rec.Get("a.confidence")
		attention, _ := rec.Get("a.attention")
		outgoingRaw, _ := rec.Get("outgoing")

		id, parseErr := uuid.Parse(idStr.(string))
		if parseErr != nil {
			continue
		}

		var outgoing []uuid.UUID
		nameStr, _ := name.(string)
		for _, raw := range outgoingRaw.([]any) {
			if s, isStr := raw.(string); isStr && s != "" {
				if out, err := uuid.Parse(s); err == nil {
					outgoing = append(outgoing, out)
				}
			}
		}

		atoms = append(atoms, MirroredAtom{
			ID:         id,
			Type:       typ.(string),
			Name:       nameStr,
			IsNode:     nameStr != "",
			Strength:   strength.(float64),
			Confidence: confidence.(float64),
			Attention:  attention.(float64),
			Outgoing:   outgoing,
		})
	}
	sort.SliceStable(atoms, func(i, j int) bool { return atoms[i].IsNode && !atoms[j].IsNode })
	return atoms, nil
}
