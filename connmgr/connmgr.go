// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr manages the lifecycle of peer connections (part of
// C11): outbound dialing with a pre-probe and timeout, inbound accept,
// and address-keyed ban tracking.
package connmgr

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// Tunables governing dial cancellation, timeouts, and the ban policy.
const (
	// DialTimeout bounds a full outbound TCP dial.
	DialTimeout = 10 * time.Second
	// PreProbeTimeout bounds the initial reachability probe that
	// precedes a full dial.
	PreProbeTimeout = 1500 * time.Millisecond

	// banWindow is the sliding window disconnects are counted within.
	banWindow = 10 * time.Second
	// banThreshold disconnects within banWindow trigger a ban.
	banThreshold = 3
	// banDuration is how long a banned address is refused.
	banDuration = 60 * time.Second
)

// Dialer opens an outbound connection, overridable in tests.
type Dialer func(network, address string, timeout time.Duration) (net.Conn, error)

// ConnState describes where a connection request sits in its lifecycle.
type ConnState int

const (
	ConnPending ConnState = iota
	ConnEstablished
	ConnFailed
	ConnDisconnected
)

// ConnReq tracks one outbound connection attempt.
type ConnReq struct {
	Addr string
	Conn net.Conn
	State ConnState
}

// ConnManager tracks live connections and enforces the ban policy; it
// does not itself own the peer read/write loops, which live in peer.
type ConnManager struct {
	dial Dialer

	mtx sync.Mutex
	disconnects map[string][]time.Time
	banned map[string]time.Time
	conns map[string]*ConnReq
}

// New creates a ConnManager using dial for outbound attempts; dial may
// be nil to use net.DialTimeout.
func New(dial Dialer) *ConnManager {
	if dial == nil {
		dial = func(network, address string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout(network, address, timeout)
		}
	}
	return &ConnManager{
		dial: dial,
		disconnects: make(map[string][]time.Time),
		banned: make(map[string]time.Time),
		conns: make(map[string]*ConnReq),
	}
}

// IsBanned reports whether addr is currently within its ban window.
func (cm *ConnManager) IsBanned(addr string) bool {
	cm.mtx.Lock()
	defer cm.mtx.Unlock()
	until, ok := cm.banned[addr]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(cm.banned, addr)
		return false
	}
	return true
}

// Connect dials addr, pre-probing reachability before committing to the
// full dial timeout, and refuses banned addresses outright.
func (cm *ConnManager) Connect(addr string) (*ConnReq, error) {
	if cm.IsBanned(addr) {
		return nil, fmt.Errorf("connmgr: %s is banned", addr)
	}

	probe, err := cm.dial("tcp", addr, PreProbeTimeout)
	if err != nil {
		cm.recordFailure(addr)
		return nil, fmt.Errorf("connmgr: pre-probe to %s failed: %w", addr, err)
	}
	probe.Close()

	conn, err := cm.dial("tcp", addr, DialTimeout)
	if err != nil {
		cm.recordFailure(addr)
		return nil, fmt.Errorf("connmgr: dial to %s failed: %w", addr, err)
	}

	req := &ConnReq{Addr: addr, Conn: conn, State: ConnEstablished}
	cm.mtx.Lock()
	cm.conns[addr] = req
	cm.mtx.Unlock()
	return req, nil
}

func (cm *ConnManager) recordFailure(addr string) {
	cm.mtx.Lock()
	defer cm.mtx.Unlock()
	delete(cm.conns, addr)
}

// Disconnect closes addr's connection, if any, and records the
// disconnect for ban-window accounting; if banThreshold disconnects
// have occurred within banWindow, addr is banned for banDuration.
func (cm *ConnManager) Disconnect(addr string) {
	cm.mtx.Lock()
	defer cm.mtx.Unlock()

	if req, ok := cm.conns[addr]; ok {
		if req.Conn != nil {
			req.Conn.Close()
		}
		delete(cm.conns, addr)
	}

	now := time.Now()
	cutoff := now.Add(-banWindow)
	events := cm.disconnects[addr]
	kept := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	cm.disconnects[addr] = kept

	if len(kept) >= banThreshold {
		cm.banned[addr] = now.Add(banDuration)
		delete(cm.disconnects, addr)
	}
}

// Accept registers an inbound connection, refusing it if the remote
// address is currently banned.
func (cm *ConnManager) Accept(addr string, conn net.Conn) (*ConnReq, error) {
	if cm.IsBanned(addr) {
		conn.Close()
		return nil, fmt.Errorf("connmgr: refusing banned address %s", addr)
	}
	req := &ConnReq{Addr: addr, Conn: conn, State: ConnEstablished}
	cm.mtx.Lock()
	cm.conns[addr] = req
	cm.mtx.Unlock()
	return req, nil
}

// ConnectedCount returns the number of currently tracked connections.
func (cm *ConnManager) ConnectedCount() int {
	cm.mtx.Lock()
	defer cm.mtx.Unlock()
	return len(cm.conns)
}
