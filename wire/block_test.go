// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/icsicoin/node/chainhash"
)

func TestBlockHeaderRoundTrip(t *testing.T) {
	hdr := &BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.HashH([]byte("prev")),
		MerkleRoot: chainhash.HashH([]byte("merkle")),
		Timestamp:  1700000000,
		Bits:       0x1d00ffff,
		Nonce:      12345,
	}
	if len(hdr.Bytes()) != BlockHeaderLen {
		t.Fatalf("serialized header length = %d, want %d", len(hdr.Bytes()), BlockHeaderLen)
	}

	var got BlockHeader
	if err := got.Deserialize(bytes.NewReader(hdr.Bytes())); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got != *hdr {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, *hdr)
	}
	if got.BlockHash() != hdr.BlockHash() {
		t.Fatal("hash mismatch after round trip")
	}
}

func TestTxCoinbaseDetection(t *testing.T) {
	cb := &MsgTx{
		Version: 1,
		TxIn: []*TxIn{{
			PreviousOutPoint: OutPoint{Index: 0xFFFFFFFF},
			SignatureScript:  []byte{0x01, 0x02},
			Sequence:         0xFFFFFFFF,
		}},
		TxOut:    []*TxOut{{Value: 5000000000, ScriptPubKey: []byte{0x76, 0xa9}}},
		LockTime: 0,
	}
	if !cb.IsCoinBase() {
		t.Fatal("expected coinbase transaction to be detected")
	}

	var got MsgTx
	if err := got.Deserialize(bytes.NewReader(cb.Bytes())); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.TxHash() != cb.TxHash() {
		t.Fatal("hash mismatch after round trip")
	}

	notCB := &MsgTx{
		Version: 1,
		TxIn: []*TxIn{{
			PreviousOutPoint: OutPoint{Hash: chainhash.HashH([]byte("x")), Index: 0},
		}},
		TxOut: []*TxOut{{Value: 1}},
	}
	if notCB.IsCoinBase() {
		t.Fatal("non-coinbase transaction misdetected as coinbase")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	tx := &MsgTx{
		Version: 1,
		TxIn:    []*TxIn{{PreviousOutPoint: OutPoint{Index: 0xFFFFFFFF}, SignatureScript: []byte{0}}},
		TxOut:   []*TxOut{{Value: 100, ScriptPubKey: []byte{1, 2, 3}}},
	}
	blk := &MsgBlock{
		Header:       BlockHeader{Version: 1, Bits: 0x1d00ffff},
		Transactions: []*MsgTx{tx},
	}

	var got MsgBlock
	if err := got.Deserialize(bytes.NewReader(blk.Bytes())); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got.Transactions))
	}
	if got.Transactions[0].TxHash() != tx.TxHash() {
		t.Fatal("transaction hash mismatch after round trip")
	}
	if got.BlockHash() != blk.BlockHash() {
		t.Fatal("block hash mismatch after round trip")
	}
}
