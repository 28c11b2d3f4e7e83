// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// BlockLocation is a (file, offset, length) triple identifying where a
// block's serialized bytes live in the append-only block store (C5).
type BlockLocation struct {
	File   uint32
	Offset uint32
	Length uint32
}

// BlockStore is the append-only flat-file block store (C5).
type BlockStore interface {
	WriteBlock(raw []byte) (BlockLocation, error)
	ReadBlock(loc BlockLocation) ([]byte, error)
}

// IndexEntry is one C6 block-index record.
type IndexEntry struct {
	Hash      chainhash.Hash
	Prev      chainhash.Hash
	Height    int64
	Status    BlockStatus
	Loc       BlockLocation
	Bits      uint32
	Timestamp uint32
}

// BlockIndexer is the persistent block index (C6): hash to location/
// height/prev/status, the best-tip pointer, height-to-hash, and the
// transaction-hash-to-containing-block index.
type BlockIndexer interface {
	Entry(hash chainhash.Hash) (*IndexEntry, bool)
	PutEntry(entry *IndexEntry) error
	SetStatus(hash chainhash.Hash, status BlockStatus) error

	BestTip() (*IndexEntry, bool)
	SetBestTip(hash chainhash.Hash) error

	// SetTip combines an index insert and the tip-pointer move into one
	// atomic write, for advancing the active chain.
	SetTip(entry *IndexEntry) error

	HashAtHeight(height int64) (chainhash.Hash, bool)

	IndexTransactions(blockHash chainhash.Hash, txHashes []chainhash.Hash) error
	BlockContainingTx(txHash chainhash.Hash) (chainhash.Hash, bool)

	// EntriesByLocation returns every entry ordered by (File, Offset), the
	// order the integrity scan walks.
	EntriesByLocation() ([]*IndexEntry, error)
}

// UTXOStore is the persistent UTXO set (C7): amount/script/height/coinbase
// keyed by (tx-hash, vout).
type UTXOStore interface {
	UTXOViewer
	PutUTXO(op wire.OutPoint, entry *UTXOEntry) error
	DeleteUTXO(op wire.OutPoint) error
}
