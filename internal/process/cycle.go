package process

import "time"

const workingMemoryCutoff = 5 * time.Minute

// Cycle drains the mailbox into working memory, applies emotional decay,
// and prunes stale working-memory entries. Cycling a non-running process is
// a no-op.
func (p *CognitiveProcess) Cycle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State != Running {
		return
	}

	now := time.Now()

	for _, t := range p.Mailbox {
		p.WorkingMemory = append(p.WorkingMemory, WorkingMemoryItem{Value: t, Timestamp: now})
		p.Stats.ThoughtsProcessed++
	}
	p.Mailbox = nil

	if p.Emotion.Intensity > 0.3 {
		p.Emotion.Intensity *= 0.98
	}
	if p.Emotion.Valence > 0.1 || p.Emotion.Valence < -0.1 {
		p.Emotion.Valence *= 0.95
	}

	cutoff := now.Add(-workingMemoryCutoff)
	pruned := p.WorkingMemory[:0]
	for _, item := range p.WorkingMemory {
		if item.Timestamp.After(cutoff) {
			pruned = append(pruned, item)
		}
	}
	p.WorkingMemory = pruned
}

// Enqueue appends a thought to the mailbox (FIFO).
func (p *CognitiveProcess) Enqueue(from int, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Mailbox = append(p.Mailbox, Thought{FromPID: from, Payload: payload, Timestamp: time.Now()})
	p.Stats.MessagesReceived++
}

// Dequeue pops the front mailbox entry, or reports false if empty.
func (p *CognitiveProcess) Dequeue() (Thought, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Mailbox) == 0 {
		return Thought{}, false
	}
	t := p.Mailbox[0]
	p.Mailbox = p.Mailbox[1:]
	return t, true
}
