// Package scheduler implements the kernel's cooperative, consciousness-aware
// scheduler: ready/blocked queues, three selection policies, and the
// block/unblock/yield/setPriority transitions.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/collab"
	"github.com/nidhogg/cogkernel/internal/process"
)

// Policy selects how the ready queue is ordered for dequeue.
type Policy string

const (
	RoundRobin        Policy = "round_robin"
	Priority          Policy = "priority"
	ConsciousnessAware Policy = "consciousness_aware"
)

var consciousnessWeight = map[int]float64{0: 1.0, 1: 1.5, 2: 2.0, 3: 3.0}

// entry tracks a process's position in the ready or blocked queue plus the
// bookkeeping the scoring function needs (wait start, block reason).
type entry struct {
	pid        int
	enqueuedAt time.Time
	reason     string
}

// Scheduler multiplexes the process table's ready processes onto a single
// "running" slot, cooperative and single-threaded: schedule() is only ever
// called by the driver between syscalls.
type Scheduler struct {
	mu sync.Mutex

	policy      Policy
	timeQuantum time.Duration

	table *process.Table
	clock collab.Clock
	rng   collab.Random

	ready   []entry
	blocked []entry

	current       int // pid, 0 if none
	lastScheduled time.Time

	logger *zap.Logger
}

// New constructs a Scheduler. policy defaults to ConsciousnessAware, and
// timeQuantum to 100ms, if zero-valued.
func New(table *process.Table, clock collab.Clock, rng collab.Random, policy Policy, timeQuantum time.Duration, logger *zap.Logger) *Scheduler {
	if policy == "" {
		policy = ConsciousnessAware
	}
	if timeQuantum <= 0 {
		timeQuantum = 100 * time.Millisecond
	}
	return &Scheduler{
		policy:      policy,
		timeQuantum: timeQuantum,
		table:       table,
		clock:       clock,
		rng:         rng,
		logger:      logger,
	}
}

// Enqueue adds pid to the ready queue. Terminated processes are ignored.
func (s *Scheduler) Enqueue(pid int) {
	p, ok := s.table.Get(pid)
	if !ok || p.Summary().State == process.Terminated {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFromLocked(&s.ready, pid)
	s.ready = append(s.ready, entry{pid: pid, enqueuedAt: time.Now()})
}

func (s *Scheduler) removeFromLocked(queue *[]entry, pid int) {
	out := (*queue)[:0]
	for _, e := range *queue {
		if e.pid != pid {
			out = append(out, e)
		}
	}
	*queue = out
}

// Dequeue pops the next process per policy, or reports false if the ready
// queue is empty.
func (s *Scheduler) Dequeue() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked()
}

func (s *Scheduler) dequeueLocked() (int, bool) {
	if len(s.ready) == 0 {
		return 0, false
	}

	var idx int
	switch s.policy {
	case RoundRobin:
		idx = 0
	case Priority:
		idx = s.pickLowestPriorityLocked()
	default:
		idx = s.pickHighestScoreLocked()
	}

	e := s.ready[idx]
	s.ready = append(s.ready[:idx], s.ready[idx+1:]...)
	return e.pid, true
}

func (s *Scheduler) pickLowestPriorityLocked() int {
	best := 0
	bestPriority := s.priorityOf(s.ready[0].pid)
	for i := 1; i < len(s.ready); i++ {
		pr := s.priorityOf(s.ready[i].pid)
		if pr < bestPriority {
			best, bestPriority = i, pr
		}
	}
	return best
}

func (s *Scheduler) priorityOf(pid int) int {
	p, ok := s.table.Get(pid)
	if !ok {
		return 10
	}
	return p.Summary().Priority
}

func (s *Scheduler) pickHighestScoreLocked() int {
	best := 0
	bestScore := s.scoreLocked(s.ready[0])
	for i := 1; i < len(s.ready); i++ {
		score := s.scoreLocked(s.ready[i])
		if score > bestScore || (score == bestScore && s.ready[i].enqueuedAt.Before(s.ready[best].enqueuedAt)) {
			best, bestScore = i, score
		}
	}
	return best
}

// scoreLocked implements the consciousness_aware scoring function.
func (s *Scheduler) scoreLocked(e entry) float64 {
	p, ok := s.table.Get(e.pid)
	if !ok {
		return 0
	}
	sum := p.Summary()

	score := float64(10-sum.Priority) * 10
	score *= consciousnessWeight[sum.Consciousness]
	score *= 1 + 0.5*sum.Emotion.Arousal
	if sum.AttentionFocus != nil {
		score *= 1.3
	}
	waitSeconds := time.Since(e.enqueuedAt).Seconds()
	if waitSeconds > 10 {
		score *= 1 + waitSeconds/100
	}
	return score
}

// Schedule runs one scheduling step per the contract: a still-running
// process within its time quantum is returned unchanged; otherwise the
// current process (if any) is re-enqueued and the next ready process is
// selected.
func (s *Scheduler) Schedule() (int, bool) {
	s.mu.Lock()

	if s.current != 0 {
		if p, ok := s.table.Get(s.current); ok && p.Summary().State == process.Running {
			if time.Since(s.lastScheduled) < s.timeQuantum {
				pid := s.current
				s.mu.Unlock()
				return pid, true
			}
			s.ready = append(s.ready, entry{pid: s.current, enqueuedAt: time.Now()})
			if q, ok := s.table.Get(s.current); ok {
				q.SetState(process.Ready)
			}
		}
		s.current = 0
	}

	pid, ok := s.dequeueLocked()
	if !ok {
		s.mu.Unlock()
		return 0, false
	}

	s.current = pid
	s.lastScheduled = time.Now()
	s.mu.Unlock()

	if p, ok := s.table.Get(pid); ok {
		p.SetState(process.Running)
		p.SetLastScheduled(s.lastScheduled)
	}
	return pid, true
}

// Block moves pid from running/ready to blocked, recording reason.
func (s *Scheduler) Block(pid int, reason string) {
	s.mu.Lock()
	s.removeFromLocked(&s.ready, pid)
	s.removeFromLocked(&s.blocked, pid)
	s.blocked = append(s.blocked, entry{pid: pid, enqueuedAt: time.Now(), reason: reason})
	if s.current == pid {
		s.current = 0
	}
	s.mu.Unlock()

	if p, ok := s.table.Get(pid); ok {
		p.SetState(process.Blocked)
	}
}

// Unblock removes pid from blocked and re-enqueues it as ready.
func (s *Scheduler) Unblock(pid int) {
	s.mu.Lock()
	s.removeFromLocked(&s.blocked, pid)
	s.mu.Unlock()

	if p, ok := s.table.Get(pid); ok {
		p.SetState(process.Ready)
	}
	s.Enqueue(pid)
}

// Yield preempts the running process to the tail of ready.
func (s *Scheduler) Yield(pid int) {
	s.mu.Lock()
	if s.current == pid {
		s.current = 0
	}
	s.mu.Unlock()

	if p, ok := s.table.Get(pid); ok {
		p.SetState(process.Ready)
	}
	s.Enqueue(pid)
}

// SetPriority updates pid's scheduling priority.
func (s *Scheduler) SetPriority(pid int, priority int) {
	if p, ok := s.table.Get(pid); ok {
		p.SetPriority(priority)
	}
}

// Current returns the currently running PID, or 0 if idle.
func (s *Scheduler) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
