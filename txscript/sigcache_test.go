// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

func TestSigCacheAddExists(t *testing.T) {
	cache, err := NewSigCache(10)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}

	sigHash := chainhash.HashH([]byte("sighash"))
	sig := []byte{0x01, 0x02, 0x03}
	pubKey := []byte{0x04, 0x05, 0x06}
	tx := &wire.MsgTx{TxIn: []*wire.TxIn{{}}, TxOut: []*wire.TxOut{{}}}

	if cache.Exists(sigHash, sig, pubKey) {
		t.Fatal("cache reports a hit before any entry was added")
	}

	cache.Add(sigHash, sig, pubKey, tx)

	if !cache.Exists(sigHash, sig, pubKey) {
		t.Fatal("cache reports a miss for an entry it was just given")
	}
	if cache.Exists(sigHash, []byte{0x99}, pubKey) {
		t.Fatal("cache matched on sigHash alone, ignoring a different signature")
	}
}

func TestSigCacheEvictionAtCapacity(t *testing.T) {
	cache, err := NewSigCache(1)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}

	tx := &wire.MsgTx{TxIn: []*wire.TxIn{{}}, TxOut: []*wire.TxOut{{}}}
	first := chainhash.HashH([]byte("first"))
	second := chainhash.HashH([]byte("second"))

	cache.Add(first, []byte{0x01}, []byte{0x02}, tx)
	cache.Add(second, []byte{0x03}, []byte{0x04}, tx)

	if len(cache.valid) != 1 {
		t.Fatalf("expected cache capped at 1 entry, got %d", len(cache.valid))
	}
}

func TestSigCacheEvictEntries(t *testing.T) {
	cache, err := NewSigCache(10)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}

	tx := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 1}}},
		TxOut:   []*wire.TxOut{{Value: 1}},
	}
	other := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 2}}},
		TxOut:   []*wire.TxOut{{Value: 2}},
	}

	sigHash := chainhash.HashH([]byte("tx-sighash"))
	otherSigHash := chainhash.HashH([]byte("other-sighash"))
	cache.Add(sigHash, []byte{0x01}, []byte{0x02}, tx)
	cache.Add(otherSigHash, []byte{0x03}, []byte{0x04}, other)

	block := &wire.MsgBlock{Transactions: []*wire.MsgTx{tx}}
	cache.EvictEntries(block)

	if cache.Exists(sigHash, []byte{0x01}, []byte{0x02}) {
		t.Fatal("entry belonging to a transaction in the evicted block survived")
	}
	if !cache.Exists(otherSigHash, []byte{0x03}, []byte{0x04}) {
		t.Fatal("entry belonging to a transaction outside the evicted block was wrongly evicted")
	}
}
