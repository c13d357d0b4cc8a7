package process

import (
	"time"

	"github.com/google/uuid"
)

// SetState transitions the process's lifecycle state. Callers outside this
// package (the scheduler, syscall dispatcher) use this rather than
// reaching into the struct directly, since the mutex guarding it is
// unexported.
func (p *CognitiveProcess) SetState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.State = s
}

// SetPriority updates the scheduling priority.
func (p *CognitiveProcess) SetPriority(priority int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Priority = priority
}

// SetConsciousness updates the consciousness level.
func (p *CognitiveProcess) SetConsciousness(level int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Consciousness = level
}

// SetEmotion overwrites the emotion record.
func (p *CognitiveProcess) SetEmotion(e Emotion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Emotion = e
}

// SetAttentionFocus points the process's attention at an atom, or clears it
// if id is nil.
func (p *CognitiveProcess) SetAttentionFocus(id *uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AttentionFocus = id
}

// SetLastScheduled records when the scheduler last selected this process.
func (p *CognitiveProcess) SetLastScheduled(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastScheduled = t
}

// IncrementSyscalls bumps the per-process syscall counter.
func (p *CognitiveProcess) IncrementSyscalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stats.SyscallsMade++
}

// IncrementMessagesSent bumps the per-process sent-message counter.
func (p *CognitiveProcess) IncrementMessagesSent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stats.MessagesSent++
}
