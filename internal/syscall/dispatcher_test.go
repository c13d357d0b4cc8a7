package syscall

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/collab"
	"github.com/nidhogg/cogkernel/internal/namespace"
	"github.com/nidhogg/cogkernel/internal/process"
	"github.com/nidhogg/cogkernel/internal/replicator"
	"github.com/nidhogg/cogkernel/internal/scheduler"
)

type testClock struct{ t float64 }

func (c *testClock) Now() float64 { return c.t }

type testRandom struct{}

func (testRandom) Float64() float64 { return 0.5 }
func (testRandom) IntN(n int) int   { return 0 }

func newTestDispatcher() (*Dispatcher, *process.Table, *scheduler.Scheduler) {
	logger := zap.NewNop()
	store := atomspace.NewStore(0.995, logger)
	clock := &testClock{}
	repl := replicator.New("node-a", store, fakeTransport{}, clock, 5*time.Second, logger)
	table := process.New(logger)
	sched := scheduler.New(table, clock, testRandom{}, scheduler.ConsciousnessAware, 100*time.Millisecond, logger)
	ns := namespace.New()
	d := New(table, sched, repl, ns, clock, logger)
	return d, table, sched
}

type fakeTransport struct{}

func (fakeTransport) Send(ctx context.Context, nodeID string, payload []byte) (collab.Ack, error) {
	return collab.Ack{Accepted: true}, nil
}

func TestDispatchESRCHForUnknownPID(t *testing.T) {
	d, _, _ := newTestDispatcher()
	res := d.Dispatch(999, Think, map[string]any{"input": "hi"})
	if res.OK || res.Errno != ESRCH {
		t.Fatalf("expected ESRCH, got %+v", res)
	}
}

func TestThinkCreatesThoughtAtom(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	res := d.Dispatch(pid, Think, map[string]any{"input": "Q", "context": map[string]any{}})
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	matches := d.Store().Query(atomspace.Pattern{Type: "ConceptNode"})
	if len(matches) != 1 {
		t.Fatalf("expected 1 thought atom, got %d", len(matches))
	}
}

func TestSpawnAgentThenThinkThenQuery(t *testing.T) {
	d, table, _ := newTestDispatcher()
	root := table.Allocate(0, process.Config{Name: "root"})

	res := d.Dispatch(root, SpawnAgent, map[string]any{"name": "A"})
	if !res.OK {
		t.Fatalf("expected spawn success, got %+v", res)
	}
	data := res.Data.(map[string]any)
	pid := data["pid"].(int)

	res = d.Dispatch(pid, Think, map[string]any{"input": "Q"})
	if !res.OK {
		t.Fatalf("expected think success, got %+v", res)
	}

	res = d.Dispatch(pid, QueryKnowledge, map[string]any{"pattern": atomspace.Pattern{Type: "ConceptNode"}})
	if !res.OK {
		t.Fatalf("expected query success, got %+v", res)
	}
	matches := res.Data.([]atomspace.Match)
	if len(matches) < 1 {
		t.Fatal("expected at least one ConceptNode match")
	}
}

func TestIPCOrderingFIFO(t *testing.T) {
	d, table, _ := newTestDispatcher()
	a := table.Allocate(0, process.Config{Name: "A"})
	b := table.Allocate(0, process.Config{Name: "B"})

	d.Dispatch(a, SendThought, map[string]any{"target_pid": b, "thought": "m1"})
	d.Dispatch(a, SendThought, map[string]any{"target_pid": b, "thought": "m2"})

	res := d.Dispatch(b, ReceiveThought, map[string]any{"blocking": false})
	first := res.Data.(map[string]any)
	if first["payload"] != "m1" {
		t.Fatalf("expected m1 first, got %v", first["payload"])
	}

	res = d.Dispatch(b, ReceiveThought, map[string]any{"blocking": false})
	second := res.Data.(map[string]any)
	if second["payload"] != "m2" {
		t.Fatalf("expected m2 second, got %v", second["payload"])
	}

	res = d.Dispatch(b, ReceiveThought, map[string]any{"blocking": false})
	if res.Data != nil {
		t.Fatalf("expected null on third receive, got %v", res.Data)
	}
}

func TestReceiveThoughtBlockingIsRejected(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	res := d.Dispatch(pid, ReceiveThought, map[string]any{"blocking": true})
	if res.OK || res.Errno != EINVAL {
		t.Fatalf("expected EINVAL for blocking receive, got %+v", res)
	}
}

func TestSendThoughtToUnknownTargetIsESRCH(t *testing.T) {
	d, table, _ := newTestDispatcher()
	a := table.Allocate(0, process.Config{Name: "A"})

	res := d.Dispatch(a, SendThought, map[string]any{"target_pid": 999, "thought": "hi"})
	if res.OK || res.Errno != ESRCH {
		t.Fatalf("expected ESRCH, got %+v", res)
	}
}

func TestForgetBoundaryExactThresholdDoesNotForget(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	d.Dispatch(pid, Remember, map[string]any{"key": "k", "value": "v", "importance": 0.5})
	res := d.Dispatch(pid, Forget, map[string]any{"key": "k", "threshold": 0.5})
	data := res.Data.(map[string]any)
	if data["forgotten"] != false {
		t.Fatalf("expected forgotten=false at exact threshold, got %v", data["forgotten"])
	}
	if data["attention"] != 0.25 {
		t.Fatalf("expected halved attention 0.25, got %v", data["attention"])
	}
}

func TestForgetBelowThresholdZeroesAttention(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	d.Dispatch(pid, Remember, map[string]any{"key": "k", "value": "v", "importance": 0.2})
	res := d.Dispatch(pid, Forget, map[string]any{"key": "k", "threshold": 0.5})
	data := res.Data.(map[string]any)
	if data["forgotten"] != true {
		t.Fatalf("expected forgotten=true, got %v", data["forgotten"])
	}
}

func TestFailedSyscallIncrementsCounterButLeavesKernelUnchanged(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	before := d.Store().Stats()
	res := d.Dispatch(pid, Forget, map[string]any{"key": "missing", "threshold": 0.5})
	if res.OK || res.Errno != ENOENT {
		t.Fatalf("expected ENOENT, got %+v", res)
	}
	after := d.Store().Stats()
	if before != after {
		t.Fatalf("expected no atom mutation on failure, got %+v -> %+v", before, after)
	}

	p, _ := table.Get(pid)
	if p.Summary().Stats.SyscallsMade != 1 {
		t.Fatalf("expected syscall counter to increment even on failure, got %d", p.Summary().Stats.SyscallsMade)
	}
	if d.TotalCalls() != 1 {
		t.Fatalf("expected kernel-wide counter to increment, got %d", d.TotalCalls())
	}
}

func TestDispatchByNameUnknownSyscallIsENOSYS(t *testing.T) {
	d, table, _ := newTestDispatcher()
	pid := table.Allocate(0, process.Config{Name: "A"})

	res := d.DispatchByName(pid, "not_a_real_syscall", nil)
	if res.OK || res.Errno != ENOSYS {
		t.Fatalf("expected ENOSYS, got %+v", res)
	}
}
