// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"net"
	"testing"
)

func TestDisconnectTriggersBanAfterThreshold(t *testing.T) {
	cm := New(nil)
	addr := "198.51.100.1:9333"

	for i := 0; i < banThreshold; i++ {
		cm.Disconnect(addr)
	}

	if !cm.IsBanned(addr) {
		t.Fatal("expected address to be banned after threshold disconnects")
	}
}

func TestAcceptRefusesBannedAddress(t *testing.T) {
	cm := New(nil)
	addr := "198.51.100.2:9333"
	for i := 0; i < banThreshold; i++ {
		cm.Disconnect(addr)
	}

	c1, c2 := net.Pipe()
	defer c2.Close()

	if _, err := cm.Accept(addr, c1); err == nil {
		t.Fatal("expected Accept to refuse banned address")
	}
}
