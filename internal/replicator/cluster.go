package replicator

// JoinCluster adds or updates a peer. No atom rebalancing occurs — it is
// carried entirely by subsequent syncs.
func (r *Replicator) JoinCluster(leaderID string, isLeader bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[leaderID] = &PeerInfo{NodeID: leaderID, IsLeader: isLeader, LastSync: r.now()}
}

// LeaveCluster removes nodeID from the peer map.
func (r *Replicator) LeaveCluster(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, nodeID)
}

// Peers returns a snapshot of known cluster members.
func (r *Replicator) Peers() []PeerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PeerInfo, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, *p)
	}
	return out
}
