package bridge

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/kernel"
	"github.com/nidhogg/cogkernel/internal/process"
	syscallpkg "github.com/nidhogg/cogkernel/internal/syscall"
)

func TestShutdownKillsParentAndAllDescendants(t *testing.T) {
	k, err := kernel.New(kernel.Config{NodeID: "node-a"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "parent"})
	parent := res.Data.(map[string]any)["pid"].(int)

	res = k.Syscall(parent, syscallpkg.SpawnAgent, map[string]any{"name": "child-a"})
	childA := res.Data.(map[string]any)["pid"].(int)
	res = k.Syscall(parent, syscallpkg.SpawnAgent, map[string]any{"name": "child-b"})
	childB := res.Data.(map[string]any)["pid"].(int)

	killed := Shutdown(k, parent)
	if len(killed) != 3 {
		t.Fatalf("expected 3 pids killed, got %d (%v)", len(killed), killed)
	}

	for _, pid := range []int{parent, childA, childB} {
		handle := k.Open("/proc/" + itoaShutdownTest(pid))
		if handle.Found {
			t.Fatalf("expected /proc/%d to be gone after shutdown", pid)
		}
	}
	for _, summary := range k.Ps() {
		if summary.State != process.Terminated {
			t.Fatalf("expected every spawned process terminated, got %+v", summary)
		}
	}
}

func TestDeprecateOldestKillsOnlyTheFirstCreatedChild(t *testing.T) {
	k, err := kernel.New(kernel.Config{NodeID: "node-a"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "parent"})
	parent := res.Data.(map[string]any)["pid"].(int)
	res = k.Syscall(parent, syscallpkg.SpawnAgent, map[string]any{"name": "child-a"})
	childA := res.Data.(map[string]any)["pid"].(int)
	res = k.Syscall(parent, syscallpkg.SpawnAgent, map[string]any{"name": "child-b"})
	childB := res.Data.(map[string]any)["pid"].(int)

	killed, ok := DeprecateOldest(k, parent)
	if !ok || killed != childA {
		t.Fatalf("expected to kill the oldest child %d, got %d (ok=%v)", childA, killed, ok)
	}

	for _, summary := range k.Ps() {
		switch summary.PID {
		case childA:
			if summary.State != process.Terminated {
				t.Fatalf("expected oldest child terminated, got %v", summary.State)
			}
		case childB:
			if summary.State == process.Terminated {
				t.Fatal("expected younger child to survive DeprecateOldest")
			}
		}
	}
}

func TestDeprecateOldestWithNoChildrenReturnsFalse(t *testing.T) {
	k, err := kernel.New(kernel.Config{NodeID: "node-a"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{"name": "lonely"})
	pid := res.Data.(map[string]any)["pid"].(int)

	if _, ok := DeprecateOldest(k, pid); ok {
		t.Fatal("expected false when pid has no children")
	}
}

func itoaShutdownTest(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
