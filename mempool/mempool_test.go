// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"path/filepath"
	"testing"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/wire"
)

type fakeUTXOViewer map[wire.OutPoint]*blockchain.UTXOEntry

func (f fakeUTXOViewer) FetchUTXO(op wire.OutPoint) (*blockchain.UTXOEntry, error) {
	return f[op], nil
}

func TestAdmitRejectsConflict(t *testing.T) {
	op := wire.OutPoint{Index: 0}
	utxo := fakeUTXOViewer{op: {Amount: 100, ScriptPubKey: []byte{0x6a}}}

	pool := New(filepath.Join(t.TempDir(), "mempool.dat"), utxo, 100, 0)

	tx1 := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: op}},
		TxOut:   []*wire.TxOut{{Value: 50, ScriptPubKey: []byte{0x6a}}},
	}
	if err := pool.Admit(tx1); err != nil {
		t.Fatalf("Admit tx1: %v", err)
	}

	tx2 := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: op}},
		TxOut:   []*wire.TxOut{{Value: 10, ScriptPubKey: []byte{0x6a}}},
	}
	if err := pool.Admit(tx2); err == nil {
		t.Fatal("expected conflicting transaction to be rejected")
	}
	if pool.Size() != 1 {
		t.Fatalf("pool size = %d, want 1", pool.Size())
	}
}

func TestAdmitZeroConfChaining(t *testing.T) {
	op := wire.OutPoint{Index: 0}
	utxo := fakeUTXOViewer{op: {Amount: 100, ScriptPubKey: []byte{0x6a}}}
	pool := New(filepath.Join(t.TempDir(), "mempool.dat"), utxo, 100, 0)

	parent := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: op}},
		TxOut:   []*wire.TxOut{{Value: 100, ScriptPubKey: []byte{0x6a}}},
	}
	if err := pool.Admit(parent); err != nil {
		t.Fatalf("Admit parent: %v", err)
	}

	child := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Hash: parent.TxHash(), Index: 0}}},
		TxOut:   []*wire.TxOut{{Value: 50, ScriptPubKey: []byte{0x6a}}},
	}
	if err := pool.Admit(child); err != nil {
		t.Fatalf("Admit child spending unconfirmed parent output: %v", err)
	}
	if pool.Size() != 2 {
		t.Fatalf("pool size = %d, want 2", pool.Size())
	}
}
