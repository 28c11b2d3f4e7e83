// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync implements the block-download side of C11: sync-peer
// election with hysteresis, locator-driven getblocks pacing, the stall
// watchdog, and orphan root-chasing.
package netsync

import (
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chainhash"
)

// log is the package-level logger, a no-op sink until UseLogger installs
// a real backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by the sync manager.
func UseLogger(logger slog.Logger) {
	log = logger
}

// syncHysteresis is how many blocks a candidate must exceed the
// incumbent sync peer by before it is re-elected.
const syncHysteresis = 10

// ibdLagBlocks is how far behind the best known peer height the local
// tip must be for initial block download mode (only the sync peer's
// inventory is acted upon).
const ibdLagBlocks = 100

// rebroadcastInterval controls how often pooled transactions are
// re-announced to every peer.
const rebroadcastInterval = 60 * time.Second

// getBlocksBatchSize re-requests after this many blocks connect since
// the last locator request, per "~350 blocks" pacing.
const getBlocksBatchSize = 350

// stallWindow is how long without a connected block, while a peer
// reports a higher height, before the watchdog re-issues getblocks.
const stallWindow = 20 * time.Second

// stallDisconnect is how long of total silence forces a sync-peer
// disconnect.
const stallDisconnect = 45 * time.Second

// debounceWindow bounds how often a root orphan's parent is re-requested.
const debounceWindow = 5 * time.Second

// SyncPeer is the subset of a peer session the sync manager needs:
// identity, reported height, and the ability to send a getblocks.
type SyncPeer interface {
	ID() string
	Height() int64
	SendGetBlocks(locator []chainhash.Hash)
	SendGetData(hashes []chainhash.Hash)
	Disconnect()
}

// Manager tracks peer heights, elects and re-elects a sync peer, and
// runs the stall watchdog. The chain itself is mutated only through
// blockchain.BlockChain's serialized entry points.
type Manager struct {
	chain *blockchain.BlockChain

	mtx sync.Mutex
	peers map[string]SyncPeer
	syncPeer SyncPeer
	lastConnect time.Time
	lastLocatorAt time.Time
	connectedRun int
	lastRequest map[chainhash.Hash]time.Time
}

// New creates a Manager driving chain's ingestion pipeline.
func New(chain *blockchain.BlockChain) *Manager {
	return &Manager{
		chain: chain,
		peers: make(map[string]SyncPeer),
		lastConnect: time.Now(),
		lastRequest: make(map[chainhash.Hash]time.Time),
	}
}

// AddPeer registers p as a candidate for sync-peer election.
func (m *Manager) AddPeer(p SyncPeer) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.peers[p.ID()] = p
	m.electLocked()
}

// RemovePeer drops p; if it was the sync peer, a new one is elected.
func (m *Manager) RemovePeer(id string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.peers, id)
	if m.syncPeer != nil && m.syncPeer.ID() == id {
		m.syncPeer = nil
		m.electLocked()
	}
}

// electLocked picks the active peer with the highest height, applying
// hysteresis against the current incumbent. Caller must hold mtx.
func (m *Manager) electLocked() {
	var best SyncPeer
	for _, p := range m.peers {
		if best == nil || p.Height() > best.Height() {
			best = p
		}
	}
	if best == nil {
		return
	}
	if m.syncPeer == nil {
		m.syncPeer = best
		m.requestLocked(best)
		return
	}
	if best.ID() != m.syncPeer.ID() && best.Height() >= m.syncPeer.Height()+syncHysteresis {
		m.syncPeer = best
		m.requestLocked(best)
	}
}

func (m *Manager) requestLocked(p SyncPeer) {
	p.SendGetBlocks(m.chain.Locator())
	m.lastLocatorAt = time.Now()
	m.connectedRun = 0
}

// SyncPeerID returns the current sync peer's identity, or "" if none.
func (m *Manager) SyncPeerID() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.syncPeer == nil {
		return ""
	}
	return m.syncPeer.ID()
}

// InIBD reports whether the local tip lags the sync peer by more than
// ibdLagBlocks, meaning other peers' invs should be ignored.
func (m *Manager) InIBD() bool {
	m.mtx.Lock()
	peer := m.syncPeer
	m.mtx.Unlock()
	if peer == nil {
		return false
	}
	return peer.Height()-m.chain.BestHeight() > ibdLagBlocks
}

// ShouldActOn reports whether an inv/getdata from peerID should be
// acted upon: always outside IBD, only the sync peer's during IBD.
func (m *Manager) ShouldActOn(peerID string) bool {
	if !m.InIBD() {
		return true
	}
	return peerID == m.SyncPeerID()
}

// NotifyConnected records that a block just connected, re-requesting a
// fresh locator from the sync peer once getBlocksBatchSize blocks have
// connected since the last request.
func (m *Manager) NotifyConnected(lastInBatch bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.lastConnect = time.Now()
	m.connectedRun++
	if m.syncPeer == nil {
		return
	}
	if lastInBatch || m.connectedRun >= getBlocksBatchSize {
		m.requestLocked(m.syncPeer)
	}
}

// RootOrphanRequest identifies the unresolvable root ancestor of an
// orphan and returns its hash for a getdata request, debounced so the
// same parent is not re-requested within debounceWindow. The second
// return value is false if the request was suppressed by the debounce.
func (m *Manager) RootOrphanRequest(orphanHash chainhash.Hash) (chainhash.Hash, bool) {
	missing := m.chain.MissingAncestor(orphanHash)

	m.mtx.Lock()
	defer m.mtx.Unlock()
	if last, ok := m.lastRequest[missing]; ok && time.Since(last) < debounceWindow {
		return missing, false
	}
	m.lastRequest[missing] = time.Now()
	return missing, true
}

// Watchdog should be run as a background task; it re-issues getblocks
// to the sync peer after stallWindow of silence while a higher peer
// height is known, and force-disconnects the sync peer after
// stallDisconnect of total silence.
func (m *Manager) Watchdog(quit <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.checkStall()
		case <-quit:
			return
		}
	}
}

func (m *Manager) checkStall() {
	m.mtx.Lock()
	peer := m.syncPeer
	sinceConnect := time.Since(m.lastConnect)
	m.mtx.Unlock()

	if peer == nil {
		return
	}
	if sinceConnect > stallDisconnect {
		log.Warnf("netsync: sync peer %s silent for %s, disconnecting", peer.ID(), sinceConnect)
		peer.Disconnect()
		return
	}
	if sinceConnect > stallWindow && peer.Height() > m.chain.BestHeight() {
		log.Debugf("netsync: re-issuing getblocks to stalled sync peer %s", peer.ID())
		m.mtx.Lock()
		m.requestLocked(peer)
		m.mtx.Unlock()
	}
}

// RebroadcastLoop should be run as a background task; broadcast is the
// caller-supplied hook that re-announces every mempool transaction.
func RebroadcastLoop(quit <-chan struct{}, broadcast func()) {
	ticker := time.NewTicker(rebroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			broadcast()
		case <-quit:
			return
		}
	}
}
