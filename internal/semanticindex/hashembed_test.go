package semanticindex

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDimension(t *testing.T) {
	e := NewHashEmbedder(32)
	if e.Dimension() != 32 {
		t.Fatalf("expected dimension 32, got %d", e.Dimension())
	}
}

func TestHashEmbedderDefaultsWhenNonPositive(t *testing.T) {
	e := NewHashEmbedder(0)
	if e.Dimension() != 64 {
		t.Fatalf("expected default dimension 64, got %d", e.Dimension())
	}
}

func TestHashEmbedderIsDeterministic(t *testing.T) {
	e := NewHashEmbedder(16)
	a, err := e.Embed(context.Background(), []string{"spawn a cognitive agent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Embed(context.Background(), []string{"spawn a cognitive agent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("expected identical embeddings, differ at %d: %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestHashEmbedderIsUnitNormalized(t *testing.T) {
	e := NewHashEmbedder(16)
	vecs, err := e.Embed(context.Background(), []string{"attention spreads through the hypergraph"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-6 {
		t.Fatalf("expected unit-normalized vector, got norm %v", norm)
	}
}

func TestHashEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder(8)
	vecs, err := e.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatalf("expected zero vector for empty text, got %v", vecs[0])
		}
	}
}

func TestHashEmbedderDistinctTextsUsuallyDiffer(t *testing.T) {
	e := NewHashEmbedder(16)
	a, _ := e.Embed(context.Background(), []string{"think about memory"})
	b, _ := e.Embed(context.Background(), []string{"forget the schema entirely"})

	identical := true
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatal("expected distinct inputs to embed differently")
	}
}
