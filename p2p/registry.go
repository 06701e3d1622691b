// Copyright 2024 The go-ethereum-core Authors
// This file is part of the go-ethereum-core library.
//
// The go-ethereum-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum-core library. If not, see <http://www.gnu.org/licenses/>.

package p2p

import "sync"

// PeerRegistry is the concurrency-safe map of connected peers, keyed by
// hex peer id. Insert overwrites any existing record for the same id;
// remove is idempotent (spec 8 invariant 8). Iteration order is
// unspecified.
type PeerRegistry struct {
	mu    sync.RWMutex
	peers map[string]PeerRecord
}

// NewPeerRegistry returns an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{peers: make(map[string]PeerRecord)}
}

// Insert adds or overwrites the record for record.ID.
func (r *PeerRegistry) Insert(record PeerRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[record.ID] = record
}

// Remove deletes the record for id. Removing an id that is not present
// is a no-op; it reports whether a record was actually removed.
func (r *PeerRegistry) Remove(id string) (PeerRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.peers[id]
	if !ok {
		return PeerRecord{}, false
	}
	delete(r.peers, id)
	return record, true
}

// Get returns the record for id, if present.
func (r *PeerRegistry) Get(id string) (PeerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.peers[id]
	return record, ok
}

// Len returns the number of registered peers.
func (r *PeerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Each calls fn once per registered peer. fn must not mutate the
// registry; the snapshot is taken under the read lock and fn runs
// after it is released.
func (r *PeerRegistry) Each(fn func(PeerRecord)) {
	r.mu.RLock()
	snapshot := make([]PeerRecord, 0, len(r.peers))
	for _, p := range r.peers {
		snapshot = append(snapshot, p)
	}
	r.mu.RUnlock()
	for _, p := range snapshot {
		fn(p)
	}
}
