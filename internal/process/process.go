// Package process implements the kernel's process table: PID allocation,
// CognitiveProcess lifecycle, per-process emotion/working-memory state, and
// the mailbox used for inter-process thought delivery.
package process

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a CognitiveProcess's lifecycle stage.
type State int

const (
	Ready State = iota
	Running
	Blocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Emotion is a process's affective state.
type Emotion struct {
	Type      string
	Intensity float64 // [0,1]
	Valence   float64 // [-1,1]
	Arousal   float64 // [0,1]
}

// DefaultEmotion is the neutral baseline every process spawns with.
func DefaultEmotion() Emotion {
	return Emotion{Type: "neutral", Intensity: 0.5, Valence: 0.0, Arousal: 0.5}
}

// WorkingMemoryItem is a time-stamped entry in a process's bounded working
// memory.
type WorkingMemoryItem struct {
	Value     any
	Timestamp time.Time
}

// Thought is an inter-process IPC message.
type Thought struct {
	FromPID   int
	Payload   any
	Timestamp time.Time
}

// Stats accumulates per-process counters.
type Stats struct {
	SyscallsMade     int
	ThoughtsProcessed int
	MessagesSent     int
	MessagesReceived int
}

// Config seeds an allocated process's initial state.
type Config struct {
	Name     string
	Role     string
	Priority int // [0,10], lower = more urgent; 0 means "use default 5"
}

// CognitiveProcess is the kernel's record for one cognitive process. Only
// the kernel mutates it; external collaborators hold only the PID.
type CognitiveProcess struct {
	mu sync.Mutex

	PID       int
	ParentPID int
	Name      string
	Role      string
	State     State
	Priority  int
	Consciousness int // {0,1,2,3}

	Emotion       Emotion
	AttentionFocus *uuid.UUID

	WorkingMemory []WorkingMemoryItem
	Mailbox       []Thought

	Stats Stats

	LastScheduled time.Time
	CPUTime       time.Duration
	CreatedAt     time.Time
}

// Summary is a read-only snapshot safe to hand to callers outside the
// process table.
type Summary struct {
	PID            int
	ParentPID      int
	Name           string
	Role           string
	State          State
	Priority       int
	Consciousness  int
	Emotion        Emotion
	AttentionFocus *uuid.UUID
	Stats          Stats
	LastScheduled  time.Time
	CreatedAt      time.Time
}

func (p *CognitiveProcess) summaryLocked() Summary {
	var focus *uuid.UUID
	if p.AttentionFocus != nil {
		id := *p.AttentionFocus
		focus = &id
	}
	return Summary{
		PID:            p.PID,
		ParentPID:      p.ParentPID,
		Name:           p.Name,
		Role:           p.Role,
		State:          p.State,
		Priority:       p.Priority,
		Consciousness:  p.Consciousness,
		Emotion:        p.Emotion,
		AttentionFocus: focus,
		Stats:          p.Stats,
		LastScheduled:  p.LastScheduled,
		CreatedAt:      p.CreatedAt,
	}
}

// Summary returns a read-only snapshot of the process.
func (p *CognitiveProcess) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summaryLocked()
}
