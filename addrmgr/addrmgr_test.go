// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"testing"

	"github.com/icsicoin/node/wire"
)

func TestAddAddressFiltersLocal(t *testing.T) {
	m := New()
	m.AddLocalAddress(net.JoinHostPort("203.0.113.1", "9333"))

	m.AddAddress(&wire.NetAddress{IP: net.ParseIP("203.0.113.1"), Port: 9333})
	m.AddAddress(&wire.NetAddress{IP: net.ParseIP("203.0.113.2"), Port: 9333})

	if got := m.NumAddresses(); got != 1 {
		t.Fatalf("NumAddresses = %d, want 1", got)
	}
}

func TestAddressesRespectsLimit(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.AddAddress(&wire.NetAddress{IP: net.IPv4(127, 0, 0, byte(i)), Port: 9333})
	}
	if got := len(m.Addresses(3)); got != 3 {
		t.Fatalf("len(Addresses(3)) = %d, want 3", got)
	}
	if got := len(m.Addresses(0)); got != 5 {
		t.Fatalf("len(Addresses(0)) = %d, want 5", got)
	}
}
