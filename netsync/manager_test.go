// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"
	"time"

	"github.com/icsicoin/node/chainhash"
)

type fakePeer struct {
	id        string
	height    int64
	requested int
}

func (f *fakePeer) ID() string                            { return f.id }
func (f *fakePeer) Height() int64                          { return f.height }
func (f *fakePeer) SendGetBlocks(locator []chainhash.Hash) { f.requested++ }
func (f *fakePeer) SendGetData(hashes []chainhash.Hash)    {}
func (f *fakePeer) Disconnect()                             {}

func TestElectionAppliesHysteresis(t *testing.T) {
	m := &Manager{peers: make(map[string]SyncPeer), lastRequest: make(map[chainhash.Hash]time.Time)}

	a := &fakePeer{id: "a", height: 100}
	b := &fakePeer{id: "b", height: 105}

	m.peers[a.id] = a
	m.electLocked()
	if m.syncPeer.ID() != "a" {
		t.Fatalf("expected a to be sync peer, got %s", m.syncPeer.ID())
	}

	m.peers[b.id] = b
	m.electLocked()
	if m.syncPeer.ID() != "a" {
		t.Fatalf("expected a to remain sync peer under hysteresis, got %s", m.syncPeer.ID())
	}

	b.height = 111
	m.electLocked()
	if m.syncPeer.ID() != "b" {
		t.Fatalf("expected b to win election after exceeding hysteresis, got %s", m.syncPeer.ID())
	}
}
