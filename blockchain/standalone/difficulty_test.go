// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import "testing"

func TestCompactRoundTrip(t *testing.T) {
	tests := []uint32{
		0x1d00ffff, // common genesis-style target
		0x1b0404cb,
		0x207fffff,
		0x03123456,
		0x04123456,
		0x05009234,
	}
	for _, bits := range tests {
		big := CompactToBig(bits)
		got := BigToCompact(big)
		if got != bits {
			t.Errorf("round trip mismatch for %#08x: got %#08x (target %s)", bits, got, big.String())
		}
	}
}
