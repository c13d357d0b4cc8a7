package replicator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// receiveTransport is satisfied by transports that can also pull inbound
// sync payloads (RedisTransport). Plain collab.Transport implementations —
// including every test double in this package's own tests — don't need it;
// PullRemoteOps is a no-op against them.
type receiveTransport interface {
	Receive(ctx context.Context, selfNodeID, lastID string, block time.Duration) ([][]byte, string, error)
}

// SyncPayload is the wire-level unit forwarded to peers on sync. The core
// specifies its structure only; encoding is the Transport's concern.
type SyncPayload struct {
	NodeID string      `json:"node_id"`
	Ops    []PendingOp `json:"ops"`
}

// SyncResult reports the outcome of a Sync call.
type SyncResult struct {
	Synced bool
	Reason string
	OpsSent int
	PeerAcks map[string]bool
}

// Sync drains the pending-op log to every known peer, provided syncInterval
// has elapsed since the last successful sync. It returns immediately with
// Synced=false if called too soon.
func (r *Replicator) Sync(ctx context.Context) (SyncResult, error) {
	r.mu.Lock()
	now := r.clock.Now()
	if now-r.lastSyncAt < r.syncEvery {
		r.mu.Unlock()
		return SyncResult{Synced: false, Reason: "too soon"}, nil
	}

	ops := r.pending
	r.pending = nil
	r.lastSyncAt = now

	peerIDs := make([]string, 0, len(r.peers))
	for id := range r.peers {
		peerIDs = append(peerIDs, id)
	}
	r.mu.Unlock()

	payload := SyncPayload{NodeID: r.nodeID, Ops: ops}
	data, err := json.Marshal(payload)
	if err != nil {
		return SyncResult{}, fmt.Errorf("replicator: marshal sync payload: %w", err)
	}

	acks := make(map[string]bool, len(peerIDs))
	for _, peerID := range peerIDs {
		ack, err := r.transport.Send(ctx, peerID, data)
		if err != nil {
			r.logger.Warn("sync send failed", zap.String("peer", peerID), zap.Error(err))
			acks[peerID] = false
			continue
		}
		acks[peerID] = ack.Accepted

		r.mu.Lock()
		if p, ok := r.peers[peerID]; ok {
			p.LastSync = r.now()
		}
		r.mu.Unlock()
	}

	return SyncResult{Synced: true, OpsSent: len(ops), PeerAcks: acks}, nil
}

// ApplyRemoteOps replays a batch of mutations originating at sourceNodeID.
// Returns the number applied and the number rejected as conflicts.
func (r *Replicator) ApplyRemoteOps(sourceNodeID string, ops []PendingOp) (applied, conflicts int) {
	for _, op := range ops {
		r.mu.Lock()
		local := r.versions[op.AtomID]

		if local == nil {
			r.store.ApplyRemote(op.toRemoteAtom())
			r.versions[op.AtomID] = op.Version.Clone()
			applied++
			r.mu.Unlock()
			continue
		}

		if shouldApply(local, sourceNodeID, op.Version) {
			r.store.ApplyRemote(op.toRemoteAtom())
			r.versions[op.AtomID] = local.MergeMax(op.Version)
			applied++
		} else {
			r.conflict++
			conflicts++
		}
		r.mu.Unlock()
	}
	return applied, conflicts
}

// PullRemoteOps drains this node's inbound stream (if the transport supports
// receiving) and applies every peer's batch through ApplyRemoteOps. It is a
// no-op, not an error, against a transport that only implements Send — the
// in-process unit tests never need a receive side.
func (r *Replicator) PullRemoteOps(ctx context.Context, block time.Duration) (applied, conflicts int, err error) {
	rx, ok := r.transport.(receiveTransport)
	if !ok {
		return 0, 0, nil
	}

	r.mu.Lock()
	lastID := r.lastRecvID
	if lastID == "" {
		lastID = "$"
	}
	r.mu.Unlock()

	payloads, nextID, recvErr := rx.Receive(ctx, r.nodeID, lastID, block)
	if recvErr != nil {
		return 0, 0, fmt.Errorf("replicator: receive: %w", recvErr)
	}

	r.mu.Lock()
	r.lastRecvID = nextID
	r.mu.Unlock()

	for _, raw := range payloads {
		var payload SyncPayload
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr != nil {
			r.logger.Warn("sync: malformed inbound payload", zap.Error(jsonErr))
			continue
		}
		a, c := r.ApplyRemoteOps(payload.NodeID, payload.Ops)
		applied += a
		conflicts += c
	}
	return applied, conflicts, nil
}

// shouldApply reports whether a remote op should be applied: strictly iff
// the remote's counter for sourceNodeID exceeds the locally recorded
// counter for that same slot.
func shouldApply(local VersionVector, sourceNodeID string, remote VersionVector) bool {
	return remote.Get(sourceNodeID) > local.Get(sourceNodeID)
}
