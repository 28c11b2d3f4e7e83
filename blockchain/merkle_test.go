// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/icsicoin/node/wire"
)

func TestMerkleRootSingleTx(t *testing.T) {
	tx := &wire.MsgTx{Version: 1, TxOut: []*wire.TxOut{{Value: 1}}}
	root := CalcMerkleRoot([]*wire.MsgTx{tx})
	if root != tx.TxHash() {
		t.Fatalf("single-tx merkle root must equal the tx hash")
	}
}

func TestMerkleRootOddCount(t *testing.T) {
	tx1 := &wire.MsgTx{Version: 1, TxOut: []*wire.TxOut{{Value: 1}}}
	tx2 := &wire.MsgTx{Version: 1, TxOut: []*wire.TxOut{{Value: 2}}}
	tx3 := &wire.MsgTx{Version: 1, TxOut: []*wire.TxOut{{Value: 3}}}

	root3 := CalcMerkleRoot([]*wire.MsgTx{tx1, tx2, tx3})
	root4 := CalcMerkleRoot([]*wire.MsgTx{tx1, tx2, tx3, tx3})
	if root3 != root4 {
		t.Fatalf("odd-count merkle root must duplicate the last hash")
	}
}
