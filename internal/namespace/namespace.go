// Package namespace implements the kernel's read-only hierarchical path
// lookup over process, atom, agent, emotion, and consciousness state.
// Mutations are made only by syscall handlers via Set/Unset; external
// callers see only Open through the kernel's own exported surface.
package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Guaranteed root segments.
const (
	RootProc          = "proc"
	RootCognitive      = "cognitive"
	RootAtomspace      = "atomspace"
	RootAgents         = "agents"
	RootMemory         = "memory"
	RootConsciousness  = "consciousness"
	RootEmotion        = "emotion"
	RootReservoir      = "reservoir"
)

var guaranteedRoots = []string{
	RootProc, RootCognitive, RootAtomspace, RootAgents,
	RootMemory, RootConsciousness, RootEmotion, RootReservoir,
}

// Handle is the result of a path lookup.
type Handle struct {
	Path  string
	Value any
	Found bool
	Reason string
}

// Namespace is a tree of nested mappings keyed by '/'-separated path
// segments. Every guaranteed root always exists, even if empty.
type Namespace struct {
	mu   sync.RWMutex
	tree map[string]any
}

// New constructs a Namespace with every guaranteed root pre-populated as an
// empty mapping.
func New() *Namespace {
	n := &Namespace{tree: make(map[string]any)}
	for _, root := range guaranteedRoots {
		n.tree[root] = make(map[string]any)
	}
	return n
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Open resolves path against the tree. A missing path returns a null
// handle carrying a human-readable reason.
func (n *Namespace) Open(path string) Handle {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Handle{Path: path, Found: false, Reason: "empty path"}
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	var cur any = n.tree
	for i, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return Handle{Path: path, Found: false, Reason: fmt.Sprintf("%s is not a directory", strings.Join(segments[:i], "/"))}
		}
		next, ok := m[seg]
		if !ok {
			return Handle{Path: path, Found: false, Reason: fmt.Sprintf("no entry %q under /%s", seg, strings.Join(segments[:i], "/"))}
		}
		cur = next
	}
	return Handle{Path: path, Value: cur, Found: true}
}

// Set writes value at path, creating intermediate directories as needed.
// Only syscall handlers should call this.
func (n *Namespace) Set(path string, value any) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	cur := n.tree
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
}

// Unset removes the entry at path, if present.
func (n *Namespace) Unset(path string) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	cur := n.tree
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, segments[len(segments)-1])
}

// List returns the sorted entry names directly under path.
func (n *Namespace) List(path string) []string {
	h := n.Open(path)
	m, ok := h.Value.(map[string]any)
	if !ok {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
