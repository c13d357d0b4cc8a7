package process

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Table owns every CognitiveProcess. PIDs are assigned from a monotonic
// counter starting at 1 and are never reused within the table's lifetime.
type Table struct {
	mu      sync.RWMutex
	next    int
	procs   map[int]*CognitiveProcess
	logger  *zap.Logger
}

// New creates an empty process table.
func New(logger *zap.Logger) *Table {
	return &Table{
		next:   1,
		procs:  make(map[int]*CognitiveProcess),
		logger: logger,
	}
}

// Allocate creates a new process owned by parentPID (0 if none), seeded
// from cfg, and returns its PID.
func (t *Table) Allocate(parentPID int, cfg Config) int {
	priority := cfg.Priority
	if priority <= 0 {
		priority = 5
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pid := t.next
	t.next++

	t.procs[pid] = &CognitiveProcess{
		PID:           pid,
		ParentPID:     parentPID,
		Name:          cfg.Name,
		Role:          cfg.Role,
		State:         Ready,
		Priority:      priority,
		Consciousness: 1,
		Emotion:       DefaultEmotion(),
		CreatedAt:     time.Now(),
	}

	t.logger.Debug("process allocated", zap.Int("pid", pid), zap.Int("parent", parentPID), zap.String("name", cfg.Name))
	return pid
}

// Get returns the process with the given PID, if it exists.
func (t *Table) Get(pid int) (*CognitiveProcess, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.procs[pid]
	return p, ok
}

// Kill moves pid to terminated, clears its mailbox and working memory, and
// reports whether the process existed. It does not cascade to children —
// the driver decides.
func (t *Table) Kill(pid int) bool {
	t.mu.Lock()
	p, ok := t.procs[pid]
	t.mu.Unlock()
	if !ok {
		return false
	}

	p.mu.Lock()
	p.State = Terminated
	p.Mailbox = nil
	p.WorkingMemory = nil
	p.mu.Unlock()

	t.logger.Debug("process killed", zap.Int("pid", pid))
	return true
}

// List returns a summary of every process, live or terminated, currently in
// the table.
func (t *Table) List() []Summary {
	t.mu.RLock()
	procs := make([]*CognitiveProcess, 0, len(t.procs))
	for _, p := range t.procs {
		procs = append(procs, p)
	}
	t.mu.RUnlock()

	out := make([]Summary, 0, len(procs))
	for _, p := range procs {
		out = append(out, p.Summary())
	}
	return out
}

// Children returns the PIDs of every live process whose ParentPID is pid,
// ordered oldest-created first.
func (t *Table) Children(pid int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var children []*CognitiveProcess
	for _, p := range t.procs {
		p.mu.Lock()
		if p.ParentPID == pid && p.State != Terminated {
			children = append(children, p)
		}
		p.mu.Unlock()
	}

	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if children[j].CreatedAt.Before(children[i].CreatedAt) {
				children[i], children[j] = children[j], children[i]
			}
		}
	}

	pids := make([]int, len(children))
	for i, c := range children {
		pids[i] = c.PID
	}
	return pids
}
