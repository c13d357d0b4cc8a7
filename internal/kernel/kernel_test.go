package kernel

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	syscallpkg "github.com/nidhogg/cogkernel/internal/syscall"
)

func newTestKernel(t *testing.T) *Kernel {
	k, err := New(Config{NodeID: "node-a"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error constructing kernel: %v", err)
	}
	return k
}

func TestSpawnAndThink(t *testing.T) {
	k := newTestKernel(t)

	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "A"})
	if !res.OK {
		t.Fatalf("expected spawn success, got %+v", res)
	}
	pid := res.Data.(map[string]any)["pid"].(int)
	if pid != 1 {
		t.Fatalf("expected first spawned pid to be 1, got %d", pid)
	}

	res = k.Syscall(pid, syscallpkg.Think, map[string]any{"input": "Q", "context": map[string]any{}})
	if !res.OK {
		t.Fatalf("expected think success, got %+v", res)
	}

	res = k.Syscall(pid, syscallpkg.QueryKnowledge, map[string]any{"pattern": atomspace.Pattern{Type: "ConceptNode"}})
	if !res.OK {
		t.Fatalf("expected query success, got %+v", res)
	}
	matches := res.Data.([]atomspace.Match)
	found := false
	for _, m := range matches {
		if strings.HasPrefix(m.Atom.Name, "thought_") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one atom named thought_*")
	}
}

func TestOpenAtomspaceReturnsStore(t *testing.T) {
	k := newTestKernel(t)
	h := k.Open("/atomspace")
	if !h.Found {
		t.Fatal("expected /atomspace to resolve")
	}
	if _, ok := h.Value.(*atomspace.Store); !ok {
		t.Fatalf("expected *atomspace.Store, got %T", h.Value)
	}
}

func TestOpenMissingPathReturnsReason(t *testing.T) {
	k := newTestKernel(t)
	h := k.Open("/proc/999")
	if h.Found {
		t.Fatal("expected missing path")
	}
	if h.Reason == "" {
		t.Fatal("expected a human-readable reason")
	}
}

func TestKillRemovesNamespaceEntries(t *testing.T) {
	k := newTestKernel(t)
	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "A"})
	pid := res.Data.(map[string]any)["pid"].(int)

	if h := k.Open("/proc/1"); !h.Found {
		t.Fatal("expected /proc/1 present after spawn")
	}

	if !k.Kill(pid) {
		t.Fatal("expected kill to succeed")
	}
	if h := k.Open("/proc/1"); h.Found {
		t.Fatal("expected /proc/1 removed after kill")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.SyncInterval.Seconds() != 5 {
		t.Errorf("expected default sync interval 5s, got %v", cfg.SyncInterval)
	}
	if cfg.AttentionDecay != 0.995 {
		t.Errorf("expected default decay 0.995, got %v", cfg.AttentionDecay)
	}
	if cfg.AtomCapacity != 1_000_000 {
		t.Errorf("expected default capacity 1e6, got %v", cfg.AtomCapacity)
	}
}
