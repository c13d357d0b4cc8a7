package syscall

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nidhogg/cogkernel/internal/atomspace"
	"github.com/nidhogg/cogkernel/internal/namespace"
	"github.com/nidhogg/cogkernel/internal/process"
)

// think(input, context) -> creates a ConceptNode named thought_<ts>_<pid>,
// truth (0.8, 0.9), attention 0.7.
func (d *Dispatcher) think(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	name := d.thoughtName(pid)
	atom := d.repl.AddNode("ConceptNode", name,
		atomspace.TruthValue{Strength: 0.8, Confidence: 0.9}, 0.7,
		map[string]any{"input": args["input"], "context": args["context"]})

	return ok(map[string]any{"thought_id": atom.ID, "timestamp": atom.CreatedAt})
}

// reason(premise, query) -> queries InheritanceLink patterns with outgoing
// (premise, query).
func (d *Dispatcher) reason(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	premise, ok1 := args["premise"].(string)
	query, ok2 := args["query"].(string)
	if !ok1 || !ok2 || premise == "" || query == "" {
		return fail(EINVAL)
	}

	matches := d.Store().Query(atomspace.Pattern{
		Type:     "InheritanceLink",
		Outgoing: []string{premise, query},
	})
	return ok(matches)
}

// feel(emotion, intensity) -> updates the process's emotion record; writes
// /emotion/<pid>.
func (d *Dispatcher) feel(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	emotionType, ok1 := args["emotion"].(string)
	intensity, ok2 := args["intensity"].(float64)
	if !ok1 || emotionType == "" || !ok2 || !clampUnit(intensity) {
		return fail(EINVAL)
	}

	current := proc.Summary().Emotion
	updated := process.Emotion{Type: emotionType, Intensity: intensity, Valence: current.Valence, Arousal: current.Arousal}
	if v, isSet := args["valence"].(float64); isSet {
		updated.Valence = v
	}
	if a, isSet := args["arousal"].(float64); isSet {
		updated.Arousal = a
	}
	proc.SetEmotion(updated)
	d.ns.Set(fmt.Sprintf("%s/%d", namespace.RootEmotion, pid), updated)

	return ok(nil)
}

// remember(key, value, importance) -> creates/updates a ConceptNode named
// key, truth (importance, 0.9), attention = importance.
func (d *Dispatcher) remember(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	key, ok1 := args["key"].(string)
	importance, ok2 := args["importance"].(float64)
	if !ok1 || key == "" || !ok2 || !clampUnit(importance) {
		return fail(EINVAL)
	}

	atom := d.repl.AddNode("ConceptNode", key,
		atomspace.TruthValue{Strength: importance, Confidence: 0.9}, importance,
		map[string]any{"value": args["value"]})

	return ok(map[string]any{"memory_id": atom.ID})
}

// forget(key, threshold) -> if attention(key) < threshold, zero it and
// report forgotten; else halve attention.
func (d *Dispatcher) forget(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	key, ok1 := args["key"].(string)
	threshold, ok2 := args["threshold"].(float64)
	if !ok1 || key == "" || !ok2 || !clampUnit(threshold) {
		return fail(EINVAL)
	}

	atom, found := d.Store().GetNode("ConceptNode", key)
	if !found {
		return fail(ENOENT)
	}

	if atom.Attention < threshold {
		d.repl.SetAttentionByID(atom.ID, 0)
		return ok(map[string]any{"forgotten": true, "attention": 0.0})
	}
	newAttention := atom.Attention / 2
	d.repl.SetAttentionByID(atom.ID, newAttention)
	return ok(map[string]any{"forgotten": false, "attention": newAttention})
}

// attend(target, spreadFactor) -> sets target's attention to 1.0, spreads
// with depth 2.
func (d *Dispatcher) attend(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	target, ok1 := args["target"].(string)
	factor, ok2 := args["spread_factor"].(float64)
	if !ok1 || target == "" || !ok2 || !clampUnit(factor) {
		return fail(EINVAL)
	}

	atom, found := d.Store().GetNode("ConceptNode", target)
	if !found {
		return fail(ENOENT)
	}

	d.repl.SetAttentionByID(atom.ID, 1.0)
	d.repl.SpreadAttention(atom.ID, factor, 2)
	proc.SetAttentionFocus(&atom.ID)
	return ok(nil)
}

// spawn_agent(config) -> allocates a process; registers /proc/<pid> and
// /agents/<pid>.
func (d *Dispatcher) spawnAgent(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	name, _ := args["name"].(string)
	role, _ := args["role"].(string)
	priority, _ := args["priority"].(int)

	childPID := d.table.Allocate(pid, process.Config{Name: name, Role: role, Priority: priority})
	child, _ := d.table.Get(childPID)
	summary := child.Summary()

	d.ns.Set(fmt.Sprintf("%s/%d", namespace.RootProc, childPID), summary)
	d.ns.Set(fmt.Sprintf("%s/%d", namespace.RootAgents, childPID), summary)
	d.sched.Enqueue(childPID)

	return ok(map[string]any{"pid": childPID, "summary": summary})
}

// query_knowledge(pattern) -> delegates to AtomStore.query.
func (d *Dispatcher) queryKnowledge(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	pattern, isPattern := args["pattern"].(atomspace.Pattern)
	if !isPattern {
		return fail(EINVAL)
	}
	return ok(d.repl.DistributedQuery(pattern))
}

// spread_activation(source, strength) -> depth-3 spread from the named
// atom.
func (d *Dispatcher) spreadActivation(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	source, ok1 := args["source"].(string)
	strength, ok2 := args["strength"].(float64)
	if !ok1 || source == "" || !ok2 || !clampUnit(strength) {
		return fail(EINVAL)
	}

	atom, found := d.Store().GetNode("ConceptNode", source)
	if !found {
		return fail(ENOENT)
	}

	d.repl.SpreadAttention(atom.ID, strength, 3)
	return ok(nil)
}

// shift_consciousness(level) -> updates process level; writes
// /consciousness/<pid>.
func (d *Dispatcher) shiftConsciousness(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	level, ok1 := args["level"].(int)
	if !ok1 || level < 0 || level > 3 {
		return fail(EINVAL)
	}

	proc.SetConsciousness(level)
	d.ns.Set(fmt.Sprintf("%s/%d", namespace.RootConsciousness, pid), level)
	return ok(nil)
}

// allocate_cognitive(size, type) -> creates a /memory/<id> record owned by
// the caller.
func (d *Dispatcher) allocateCognitive(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	size, ok1 := args["size"].(int)
	resourceType, ok2 := args["type"].(string)
	if !ok1 || size <= 0 || !ok2 || resourceType == "" {
		return fail(EINVAL)
	}

	id := uuid.New()
	d.ns.Set(fmt.Sprintf("%s/%s", namespace.RootMemory, id), map[string]any{
		"owner": pid, "size": size, "type": resourceType,
	})
	return ok(map[string]any{"resource_id": id})
}

// free_cognitive(resource_id) -> removes the /memory/<id> entry.
func (d *Dispatcher) freeCognitive(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	resourceID, ok1 := args["resource_id"].(uuid.UUID)
	if !ok1 {
		return fail(EINVAL)
	}

	path := fmt.Sprintf("%s/%s", namespace.RootMemory, resourceID)
	if h := d.ns.Open(path); !h.Found {
		return fail(ENOENT)
	}
	d.ns.Unset(path)
	return ok(nil)
}

// send_thought(target_pid, thought) -> appends {from, thought, ts} to the
// target's mailbox.
func (d *Dispatcher) sendThought(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	targetPID, ok1 := args["target_pid"].(int)
	if !ok1 {
		return fail(EINVAL)
	}

	target, found := d.table.Get(targetPID)
	if !found {
		return fail(ESRCH)
	}

	target.Enqueue(pid, args["thought"])
	proc.IncrementMessagesSent()
	return ok(map[string]any{"delivered": true})
}

// receive_thought(blocking) -> pops the front mailbox entry; non-blocking
// returns null when empty. blocking=true is rejected with EINVAL — no
// suspension mechanism exists under the single-threaded cooperative model.
func (d *Dispatcher) receiveThought(pid int, proc *process.CognitiveProcess, args map[string]any) Result {
	blocking, _ := args["blocking"].(bool)
	if blocking {
		return fail(EINVAL)
	}

	thought, found := proc.Dequeue()
	if !found {
		return ok(nil)
	}
	return ok(map[string]any{"from": thought.FromPID, "payload": thought.Payload, "timestamp": thought.Timestamp})
}
