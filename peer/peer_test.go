// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"testing"
	"time"

	"github.com/icsicoin/node/wire"
)

func testConfig(height uint32) *Config {
	return &Config{
		Net:             wire.SimNet,
		ProtocolVersion: 1,
		UserAgent:       "/icsicoin:test/",
		Services:        0,
		NewestBlock:     func() uint32 { return height },
	}
}

func TestHandshakeReachesAcked(t *testing.T) {
	c1, c2 := net.Pipe()

	outCfg := testConfig(10)
	inCfg := testConfig(20)

	var gotVersionOut, gotVersionIn *wire.MsgVersion
	outCfg.Listeners.OnVersion = func(p *Peer, msg *wire.MsgVersion) { gotVersionOut = msg }
	inCfg.Listeners.OnVersion = func(p *Peer, msg *wire.MsgVersion) { gotVersionIn = msg }

	outPeer := NewOutboundPeer(outCfg, c1)
	inPeer := NewInboundPeer(inCfg, c2)

	done := make(chan error, 2)
	go func() { done <- outPeer.handshake() }()
	go func() { done <- inPeer.handshake() }()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("handshake error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("handshake timed out")
		}
	}

	if outPeer.State() != StateAcked {
		t.Fatalf("outbound state = %v, want acked", outPeer.State())
	}
	if inPeer.State() != StateAcked {
		t.Fatalf("inbound state = %v, want acked", inPeer.State())
	}
	if gotVersionOut == nil || gotVersionOut.StartHeight != 20 {
		t.Fatalf("outbound did not observe inbound's height 20: %+v", gotVersionOut)
	}
	if gotVersionIn == nil || gotVersionIn.StartHeight != 10 {
		t.Fatalf("inbound did not observe outbound's height 10: %+v", gotVersionIn)
	}
}
