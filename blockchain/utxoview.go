// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/icsicoin/node/wire"

// UTXOEntry is the C7 record for one unspent output: amount, locking
// script, the height it was created at, and whether it came from a
// coinbase (for maturity enforcement).
type UTXOEntry struct {
	Amount       int64
	ScriptPubKey []byte
	Height       int64
	IsCoinBase   bool
}

// UTXOViewer is the read side of the persistent UTXO store (C7) that
// consensus validation needs. database.UTXOSet implements this.
type UTXOViewer interface {
	FetchUTXO(op wire.OutPoint) (*UTXOEntry, error)
}

// utxoOverlay layers the in-progress effect of transactions already applied
// earlier in the same block on top of the persistent view, so a later
// transaction in the block can spend an earlier one's output before either
// is committed to the store.
type utxoOverlay struct {
	base    UTXOViewer
	added   map[wire.OutPoint]*UTXOEntry
	removed map[wire.OutPoint]struct{}
}

func newUTXOOverlay(base UTXOViewer) *utxoOverlay {
	return &utxoOverlay{
		base:    base,
		added:   make(map[wire.OutPoint]*UTXOEntry),
		removed: make(map[wire.OutPoint]struct{}),
	}
}

func (v *utxoOverlay) fetch(op wire.OutPoint) (*UTXOEntry, error) {
	if entry, ok := v.added[op]; ok {
		return entry, nil
	}
	if _, gone := v.removed[op]; gone {
		return nil, nil
	}
	return v.base.FetchUTXO(op)
}

func (v *utxoOverlay) spend(op wire.OutPoint) {
	delete(v.added, op)
	v.removed[op] = struct{}{}
}

func (v *utxoOverlay) add(op wire.OutPoint, entry *UTXOEntry) {
	delete(v.removed, op)
	v.added[op] = entry
}
