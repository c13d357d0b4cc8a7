package scheduler

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/process"
)

type fixedClock struct{ t float64 }

func (c *fixedClock) Now() float64 { return c.t }

type fixedRandom struct{}

func (fixedRandom) Float64() float64 { return 0.5 }
func (fixedRandom) IntN(n int) int   { return 0 }

func newTestScheduler(policy Policy) (*Scheduler, *process.Table) {
	tbl := process.New(zap.NewNop())
	s := New(tbl, &fixedClock{}, fixedRandom{}, policy, 100*time.Millisecond, zap.NewNop())
	return s, tbl
}

func TestScheduleWithOnlyTerminatedProcessesReturnsNothing(t *testing.T) {
	s, tbl := newTestScheduler(ConsciousnessAware)
	pid := tbl.Allocate(0, process.Config{Name: "A"})
	tbl.Kill(pid)
	s.Enqueue(pid)

	_, ok := s.Schedule()
	if ok {
		t.Fatal("expected no process to be scheduled")
	}
}

func TestConsciousnessPrioritizationPicksHigherLevel(t *testing.T) {
	s, tbl := newTestScheduler(ConsciousnessAware)
	p1 := tbl.Allocate(0, process.Config{Name: "P1", Priority: 5})
	p2 := tbl.Allocate(0, process.Config{Name: "P2", Priority: 5})

	proc2, _ := tbl.Get(p2)
	proc2.SetConsciousness(3)

	s.Enqueue(p1)
	s.Enqueue(p2)

	pid, ok := s.Schedule()
	if !ok || pid != p2 {
		t.Fatalf("expected P2 (level 3) to win, got pid=%d ok=%v", pid, ok)
	}
}

func TestArousalTieBreak(t *testing.T) {
	s, tbl := newTestScheduler(ConsciousnessAware)
	p1 := tbl.Allocate(0, process.Config{Name: "P1", Priority: 5})
	p2 := tbl.Allocate(0, process.Config{Name: "P2", Priority: 5})

	proc1, _ := tbl.Get(p1)
	proc1.SetEmotion(process.Emotion{Arousal: 0.9})
	proc2, _ := tbl.Get(p2)
	proc2.SetEmotion(process.Emotion{Arousal: 0.1})

	s.Enqueue(p1)
	s.Enqueue(p2)

	pid, ok := s.Schedule()
	if !ok || pid != p1 {
		t.Fatalf("expected P1 (higher arousal) to win, got pid=%d ok=%v", pid, ok)
	}
}

func TestRoundRobinIsFIFO(t *testing.T) {
	s, tbl := newTestScheduler(RoundRobin)
	p1 := tbl.Allocate(0, process.Config{Name: "P1"})
	p2 := tbl.Allocate(0, process.Config{Name: "P2"})
	s.Enqueue(p1)
	s.Enqueue(p2)

	pid, _ := s.Dequeue()
	if pid != p1 {
		t.Fatalf("expected FIFO to return P1 first, got %d", pid)
	}
}

func TestPriorityPolicyPicksLowestNumber(t *testing.T) {
	s, tbl := newTestScheduler(Priority)
	p1 := tbl.Allocate(0, process.Config{Name: "P1", Priority: 8})
	p2 := tbl.Allocate(0, process.Config{Name: "P2", Priority: 2})
	s.Enqueue(p1)
	s.Enqueue(p2)

	pid, _ := s.Dequeue()
	if pid != p2 {
		t.Fatalf("expected P2 (priority 2) to win, got %d", pid)
	}
}

func TestBlockAndUnblock(t *testing.T) {
	s, tbl := newTestScheduler(ConsciousnessAware)
	pid := tbl.Allocate(0, process.Config{Name: "A"})
	s.Enqueue(pid)
	s.Schedule()

	s.Block(pid, "waiting on io")
	p, _ := tbl.Get(pid)
	if p.Summary().State != process.Blocked {
		t.Fatalf("expected blocked state, got %v", p.Summary().State)
	}

	s.Unblock(pid)
	if p.Summary().State != process.Ready {
		t.Fatalf("expected ready state after unblock, got %v", p.Summary().State)
	}

	pid2, ok := s.Schedule()
	if !ok || pid2 != pid {
		t.Fatalf("expected unblocked process schedulable, got %d ok=%v", pid2, ok)
	}
}

func TestYieldMovesRunningProcessToTail(t *testing.T) {
	s, tbl := newTestScheduler(RoundRobin)
	p1 := tbl.Allocate(0, process.Config{Name: "P1"})
	p2 := tbl.Allocate(0, process.Config{Name: "P2"})
	s.Enqueue(p1)
	s.Enqueue(p2)

	s.Schedule() // runs p1
	s.Yield(p1)

	pid, _ := s.Dequeue()
	if pid != p2 {
		t.Fatalf("expected p2 next after p1 yields, got %d", pid)
	}
}
