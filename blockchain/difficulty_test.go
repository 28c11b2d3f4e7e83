// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/icsicoin/node/chaincfg"
)

func TestRetargetNonBoundaryInherits(t *testing.T) {
	params := chaincfg.MainNetParams
	genesis := &blockNode{height: 0, bits: params.PowLimitBits, timestamp: 1000}
	next := newBlockNodeForTest(genesis, 1030, params.PowLimitBits)

	got := calcNextRequiredBits(&params, next)
	if got != next.bits {
		t.Fatalf("non-boundary height must inherit prior bits: got %#x want %#x", got, next.bits)
	}
}

func newBlockNodeForTest(parent *blockNode, timestamp uint32, bits uint32) *blockNode {
	return &blockNode{
		parent:    parent,
		height:    parent.height + 1,
		bits:      bits,
		timestamp: timestamp,
	}
}
