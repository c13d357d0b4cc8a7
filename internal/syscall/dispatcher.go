package syscall

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/collab"
	"github.com/nidhogg/cogkernel/internal/namespace"
	"github.com/nidhogg/cogkernel/internal/process"
	"github.com/nidhogg/cogkernel/internal/replicator"
	"github.com/nidhogg/cogkernel/internal/scheduler"
)

// Dispatcher is the sole entry point by which a process performs cognitive
// work. It validates the caller's PID, updates statistics, and delegates
// to the process table, scheduler, replicator, and namespace.
type Dispatcher struct {
	mu sync.Mutex

	table      *process.Table
	sched      *scheduler.Scheduler
	repl       *replicator.Replicator
	ns         *namespace.Namespace
	clock      collab.Clock
	totalCalls int

	logger *zap.Logger
}

// New constructs a Dispatcher over the kernel's core owners.
func New(table *process.Table, sched *scheduler.Scheduler, repl *replicator.Replicator, ns *namespace.Namespace, clock collab.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{table: table, sched: sched, repl: repl, ns: ns, clock: clock, logger: logger}
}

// TotalCalls returns the kernel-wide syscall counter.
func (d *Dispatcher) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalCalls
}

// Dispatch is the exhaustive match over the closed 14-syscall alphabet.
// ENOSYS is unreachable here — every Name value handled is a compile-time
// constant of this package.
func (d *Dispatcher) Dispatch(pid int, name Name, args map[string]any) Result {
	d.mu.Lock()
	d.totalCalls++
	d.mu.Unlock()

	// pid 0 is the root caller: it has no table entry and may only spawn.
	if pid == 0 && name == SpawnAgent {
		return d.spawnAgent(pid, nil, args)
	}

	proc, ok := d.table.Get(pid)
	if !ok {
		return fail(ESRCH)
	}
	proc.IncrementSyscalls()

	switch name {
	case Think:
		return d.think(pid, proc, args)
	case Reason:
		return d.reason(pid, proc, args)
	case Feel:
		return d.feel(pid, proc, args)
	case Remember:
		return d.remember(pid, proc, args)
	case Forget:
		return d.forget(pid, proc, args)
	case Attend:
		return d.attend(pid, proc, args)
	case SpawnAgent:
		return d.spawnAgent(pid, proc, args)
	case QueryKnowledge:
		return d.queryKnowledge(pid, proc, args)
	case SpreadActivation:
		return d.spreadActivation(pid, proc, args)
	case ShiftConsciousness:
		return d.shiftConsciousness(pid, proc, args)
	case AllocateCognitive:
		return d.allocateCognitive(pid, proc, args)
	case FreeCognitive:
		return d.freeCognitive(pid, proc, args)
	case SendThought:
		return d.sendThought(pid, proc, args)
	case ReceiveThought:
		return d.receiveThought(pid, proc, args)
	default:
		// unreachable: Name is a closed alphabet and every value above is
		// handled.
		return fail(ENOSYS)
	}
}

// DispatchByName is the one loose entry point where an unrecognized
// syscall name is reachable as ENOSYS — intended for a guarded debug API
// surface, never for the agent layer.
func (d *Dispatcher) DispatchByName(pid int, name string, args map[string]any) Result {
	switch Name(name) {
	case Think, Reason, Feel, Remember, Forget, Attend, SpawnAgent, QueryKnowledge,
		SpreadActivation, ShiftConsciousness, AllocateCognitive, FreeCognitive,
		SendThought, ReceiveThought:
		return d.Dispatch(pid, Name(name), args)
	default:
		d.mu.Lock()
		d.totalCalls++
		d.mu.Unlock()
		return fail(ENOSYS)
	}
}

func clampUnit(v float64) bool { return v >= 0 && v <= 1 }

func (d *Dispatcher) thoughtName(pid int) string {
	return fmt.Sprintf("thought_%d_%d", int64(d.clock.Now()*1000), pid)
}

// Store gives read-only introspection access to the wrapped AtomStore, for
// the /atomspace namespace root.
func (d *Dispatcher) Store() *atomspace.Store {
	return d.repl.Store()
}
