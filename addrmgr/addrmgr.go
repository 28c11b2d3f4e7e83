// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr tracks the set of peer addresses a network manager has
// learned about, gossiped through addr/getaddr, and filters out any that
// name a locally-bound listener.
package addrmgr

import (
	"net"
	"sync"

	"github.com/icsicoin/node/wire"
)

// AddrManager is a concurrency-safe registry of known peer addresses.
type AddrManager struct {
	mtx sync.RWMutex

	addrs map[string]*wire.NetAddress
	localAddr map[string]struct{}
}

// New creates an empty address manager.
func New() *AddrManager {
	return &AddrManager{
		addrs: make(map[string]*wire.NetAddress),
		localAddr: make(map[string]struct{}),
	}
}

func key(na *wire.NetAddress) string {
	return net.JoinHostPort(na.IP.String(), portString(na.Port))
}

func portString(port uint16) string {
	return (net.TCPAddr{Port: int(port)}).String()[1:]
}

// AddLocalAddress records addr (host:port) as one of the node's own listen
// addresses, so future AddAddress calls naming it are suppressed.
func (m *AddrManager) AddLocalAddress(hostPort string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.localAddr[hostPort] = struct{}{}
}

// isLocal reports whether na names one of this node's own listeners.
func (m *AddrManager) isLocal(na *wire.NetAddress) bool {
	_, ok := m.localAddr[net.JoinHostPort(na.IP.String(), portString(na.Port))]
	return ok
}

// AddAddress records na unless it names a local listener.
func (m *AddrManager) AddAddress(na *wire.NetAddress) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.isLocal(na) {
		return
	}
	m.addrs[key(na)] = na
}

// AddAddresses records every address in list, applying the same
// self-filter as AddAddress.
func (m *AddrManager) AddAddresses(list []*wire.NetAddress) {
	for _, na := range list {
		m.AddAddress(na)
	}
}

// Addresses returns every known address, up to limit (0 means unlimited),
// for building an addr reply.
func (m *AddrManager) Addresses(limit int) []*wire.NetAddress {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	out := make([]*wire.NetAddress, 0, len(m.addrs))
	for _, na := range m.addrs {
		out = append(out, na)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// NumAddresses reports how many addresses are currently known.
func (m *AddrManager) NumAddresses() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.addrs)
}
