// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "sync"

// Registry tracks every currently active Peer session so other
// components (RPC, netsync) can enumerate and look them up by address.
type Registry struct {
	mtx   sync.RWMutex
	peers map[string]*Peer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*Peer)}
}

// Add registers p under its remote address.
func (r *Registry) Add(p *Peer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.peers[p.Addr()] = p
}

// Remove drops the peer at addr.
func (r *Registry) Remove(addr string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.peers, addr)
}

// All returns a snapshot slice of every registered peer.
func (r *Registry) All() []*Peer {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p)
	}
	return out
}

// Get returns the peer at addr, if registered.
func (r *Registry) Get(addr string) (*Peer, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	p, ok := r.peers[addr]
	return p, ok
}

// Len reports how many peers are currently registered.
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.peers)
}
