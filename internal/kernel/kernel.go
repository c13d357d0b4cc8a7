// Package kernel wires the AtomStore, Replicator, ProcessTable, Scheduler,
// SyscallDispatcher, and Namespace into a single handle. The handle is the
// only thing passed to any subsystem that needs kernel access — no ambient
// global state.
package kernel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/audit"
	"github.com/nidhogg/cogkernel/internal/collab"
	"github.com/nidhogg/cogkernel/internal/namespace"
	"github.com/nidhogg/cogkernel/internal/process"
	"github.com/nidhogg/cogkernel/internal/replicator"
	"github.com/nidhogg/cogkernel/internal/scheduler"
	syscallpkg "github.com/nidhogg/cogkernel/internal/syscall"
)

// Config seeds kernel construction. Zero-valued fields fall back to the
// documented defaults.
type Config struct {
	NodeID         string
	Peers          []string
	SyncInterval   time.Duration // default 5s
	Policy         scheduler.Policy
	TimeQuantum    time.Duration // default 100ms
	AtomCapacity   int           // default 1_000_000; advisory only, not enforced
	AttentionDecay float64       // default 0.995

	Transport collab.Transport
	Clock     collab.Clock
	Random    collab.Random

	// Audit is optional. When set, every dispatched syscall and every
	// spawn/kill is recorded asynchronously; a nil Audit means the kernel
	// runs with no durability trail at all.
	Audit *audit.Recorder

	// Observers are registered against the AtomStore at construction time
	// (the Neo4j mirror, the Qdrant semantic index, or any test double).
	// None are required; the kernel behaves identically with zero.
	Observers []atomspace.Observer
}

func (c Config) withDefaults() Config {
	if c.SyncInterval <= 0 {
		c.SyncInterval = 5 * time.Second
	}
	if c.Policy == "" {
		c.Policy = scheduler.ConsciousnessAware
	}
	if c.TimeQuantum <= 0 {
		c.TimeQuantum = 100 * time.Millisecond
	}
	if c.AtomCapacity <= 0 {
		c.AtomCapacity = 1_000_000
	}
	if c.AttentionDecay <= 0 || c.AttentionDecay >= 1 {
		c.AttentionDecay = 0.995
	}
	if c.Clock == nil {
		c.Clock = collab.NewRealClock()
	}
	if c.Random == nil {
		c.Random = collab.NewSystemRandom()
	}
	return c
}

// Kernel exposes the syscall surface and Open, plus accessors to its owners
// (Store, Replicator, ProcessTable, Dispatcher) and driver operations (Kill,
// Ps, Schedule, Sync, PullRemoteOps, DecayAttention, RestoreAtoms) used by
// cmd/kerneld, internal/api and internal/bridge.
type Kernel struct {
	cfg Config

	store *atomspace.Store
	repl  *replicator.Replicator
	table *process.Table
	sched *scheduler.Scheduler
	disp  *syscallpkg.Dispatcher
	ns    *namespace.Namespace
	audit *audit.Recorder

	logger *zap.Logger
}

// New constructs a Kernel. transport may be nil if the kernel will never
// sync with peers (a single-node deployment).
func New(cfg Config, logger *zap.Logger) (*Kernel, error) {
	cfg = cfg.withDefaults()

	store := atomspace.NewStore(cfg.AttentionDecay, logger)
	for _, observer := range cfg.Observers {
		store.AddObserver(observer)
	}
	repl := replicator.New(cfg.NodeID, store, cfg.Transport, cfg.Clock, cfg.SyncInterval, logger)
	table := process.New(logger)
	sched := scheduler.New(table, cfg.Clock, cfg.Random, cfg.Policy, cfg.TimeQuantum, logger)
	ns := namespace.New()
	disp := syscallpkg.New(table, sched, repl, ns, cfg.Clock, logger)

	for _, peer := range cfg.Peers {
		repl.JoinCluster(peer, false)
	}

	return &Kernel{cfg: cfg, store: store, repl: repl, table: table, sched: sched, disp: disp, ns: ns, audit: cfg.Audit, logger: logger}, nil
}

// Syscall dispatches a cognitive syscall on behalf of pid.
func (k *Kernel) Syscall(pid int, name syscallpkg.Name, args map[string]any) syscallpkg.Result {
	res := k.disp.Dispatch(pid, name, args)
	if k.audit != nil {
		k.audit.Syscall(pid, string(name), res.OK, string(res.Errno))
		if name == syscallpkg.SpawnAgent && res.OK {
			if data, isMap := res.Data.(map[string]any); isMap {
				if childPID, isInt := data["pid"].(int); isInt {
					k.audit.ProcessEvent(childPID, pid, "spawned")
				}
			}
		}
	}
	return res
}

// Open resolves path against the kernel's namespace.
func (k *Kernel) Open(path string) namespace.Handle {
	if path == namespace.RootAtomspace || path == "/"+namespace.RootAtomspace {
		return namespace.Handle{Path: path, Value: k.store, Found: true}
	}
	return k.ns.Open(path)
}

// Schedule runs one scheduling step and cycles the resulting process.
func (k *Kernel) Schedule() (int, bool) {
	pid, ok := k.sched.Schedule()
	if !ok {
		return 0, false
	}
	if p, found := k.table.Get(pid); found {
		p.Cycle()
	}
	return pid, true
}

// Sync drains the replicator's pending-op log to peers, if eligible.
func (k *Kernel) Sync(ctx context.Context) (replicator.SyncResult, error) {
	return k.repl.Sync(ctx)
}

// PullRemoteOps drains and applies whatever peers have pushed onto this
// node's inbound stream since the last pull. Against a Transport that can't
// receive (anything but RedisTransport), it returns 0, 0, nil.
func (k *Kernel) PullRemoteOps(ctx context.Context, block time.Duration) (applied, conflicts int, err error) {
	return k.repl.PullRemoteOps(ctx, block)
}

// DecayAttention applies one attention-decay sweep across the AtomStore.
func (k *Kernel) DecayAttention() {
	k.repl.DecayAttention()
}

// Replicator exposes the replication layer for the kernel's own driver
// loop (sync scheduling) and for mirrors/audits that observe via the
// AtomStore's Observer interface.
func (k *Kernel) Replicator() *replicator.Replicator { return k.repl }

// Kill terminates pid via the process table and removes every namespace
// entry keyed by it. It does not cascade to children — the driver (the
// KernelAgent collaborator) decides whether to.
func (k *Kernel) Kill(pid int) bool {
	proc, found := k.table.Get(pid)
	if !found {
		return false
	}
	parentPID := proc.ParentPID
	if !k.table.Kill(pid) {
		return false
	}
	k.ns.Unset(fmt.Sprintf("%s/%d", namespace.RootProc, pid))
	k.ns.Unset(fmt.Sprintf("%s/%d", namespace.RootAgents, pid))
	k.ns.Unset(fmt.Sprintf("%s/%d", namespace.RootConsciousness, pid))
	k.ns.Unset(fmt.Sprintf("%s/%d", namespace.RootEmotion, pid))
	if k.audit != nil {
		k.audit.ProcessEvent(pid, parentPID, "killed")
	}
	return true
}

// Ps lists every process summary known to the process table.
func (k *Kernel) Ps() []process.Summary {
	return k.table.List()
}

// ProcessTable exposes the process table for drivers that need ps()/kill().
func (k *Kernel) ProcessTable() *process.Table { return k.table }

// Dispatcher exposes the syscall dispatcher for drivers needing
// TotalCalls() or a guarded debug entry point.
func (k *Kernel) Dispatcher() *syscallpkg.Dispatcher { return k.disp }

// Store exposes the AtomStore directly, for collaborators (internal/api,
// internal/semanticindex queries) that need read access without going
// through Open("/atomspace").
func (k *Kernel) Store() *atomspace.Store { return k.store }

// RestoreAtoms replays a batch of previously mirrored atoms directly into
// the AtomStore via ApplyRemote, preserving their original identity. Used
// once at startup, before any syscall has been dispatched.
func (k *Kernel) RestoreAtoms(atoms []*atomspace.Atom) {
	for _, atom := range atoms {
		k.store.ApplyRemote(atom)
	}
}
