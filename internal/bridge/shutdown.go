package bridge

import "github.com/nidhogg/cogkernel/internal/kernel"

// DeprecateOldest kills exactly the oldest-created live subordinate of pid
// and reports its pid. It returns (0, false) if pid has no live children.
// ProcessTable.Children already orders oldest-first, so this is a kill of
// index 0 — not a re-selection of a fixed index regardless of actual
// creation order, which is the bug this is deliberately not reproducing.
func DeprecateOldest(k *kernel.Kernel, pid int) (int, bool) {
	children := k.ProcessTable().Children(pid)
	if len(children) == 0 {
		return 0, false
	}
	oldest := children[0]
	if !k.Kill(oldest) {
		return 0, false
	}
	return oldest, true
}

// Shutdown kills pid and every descendant beneath it, oldest child first,
// and returns every pid actually killed. internal/kernel.Kernel.Kill never
// cascades on its own — a driver has to walk the tree, which is what this
// does for the bridge's spawn_agent-rooted conversations.
func Shutdown(k *kernel.Kernel, pid int) []int {
	var killed []int
	var walk func(pid int)
	walk = func(pid int) {
		children := k.ProcessTable().Children(pid)
		for _, child := range children {
			walk(child)
		}
		if k.Kill(pid) {
			killed = append(killed, pid)
		}
	}
	walk(pid)
	return killed
}
