// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/wire"
)

// Key prefixes for the UTXO set's LevelDB keyspace.
var (
	prefixUTXO        = []byte("u")
	prefixUTXOByQuery = []byte("s")
)

// UTXOSet is the persistent UTXO store (C7): amount/script/height/
// coinbase-flag keyed by (tx-hash, vout), with a reverse index keyed by
// script_pubkey so a wallet can sum its balance without a full table scan.
type UTXOSet struct {
	db *leveldb.DB
}

// NewUTXOSet opens (creating if necessary) the LevelDB database at dir.
func NewUTXOSet(dir string) (*UTXOSet, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &UTXOSet{db: db}, nil
}

// Close releases the underlying LevelDB handle.
func (u *UTXOSet) Close() error {
	return u.db.Close()
}

func utxoKey(op wire.OutPoint) []byte {
	k := make([]byte, 0, len(prefixUTXO)+32+4)
	k = append(k, prefixUTXO...)
	k = append(k, op.Hash[:]...)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], op.Index)
	return append(k, idx[:]...)
}

// scriptIndexKey maps (script, outpoint) to nothing; its value is unused,
// presence under the script prefix is the index.
func scriptIndexKey(script []byte, op wire.OutPoint) []byte {
	k := make([]byte, 0, len(prefixUTXOByQuery)+len(script)+1+32+4)
	k = append(k, prefixUTXOByQuery...)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:2], uint16(len(script)))
	k = append(k, n[:]...)
	k = append(k, script...)
	k = append(k, op.Hash[:]...)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], op.Index)
	return append(k, idx[:]...)
}

func scriptIndexPrefix(script []byte) []byte {
	k := make([]byte, 0, len(prefixUTXOByQuery)+2+len(script))
	k = append(k, prefixUTXOByQuery...)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:2], uint16(len(script)))
	k = append(k, n[:]...)
	return append(k, script...)
}

func encodeUTXO(e *blockchain.UTXOEntry) []byte {
	buf := make([]byte, 0, 8+8+1+len(e.ScriptPubKey))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(e.Amount))
	buf = append(buf, n[:]...)
	binary.BigEndian.PutUint64(n[:], uint64(e.Height))
	buf = append(buf, n[:]...)
	if e.IsCoinBase {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, e.ScriptPubKey...)
	return buf
}

func decodeUTXO(data []byte) *blockchain.UTXOEntry {
	e := &blockchain.UTXOEntry{}
	e.Amount = int64(binary.BigEndian.Uint64(data[0:8]))
	e.Height = int64(binary.BigEndian.Uint64(data[8:16]))
	e.IsCoinBase = data[16] != 0
	e.ScriptPubKey = append([]byte{}, data[17:]...)
	return e
}

// FetchUTXO implements blockchain.UTXOViewer.
func (u *UTXOSet) FetchUTXO(op wire.OutPoint) (*blockchain.UTXOEntry, error) {
	data, err := u.db.Get(utxoKey(op), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeUTXO(data), nil
}

// PutUTXO records a new unspent output and its reverse-index entry.
func (u *UTXOSet) PutUTXO(op wire.OutPoint, entry *blockchain.UTXOEntry) error {
	batch := new(leveldb.Batch)
	batch.Put(utxoKey(op), encodeUTXO(entry))
	batch.Put(scriptIndexKey(entry.ScriptPubKey, op), nil)
	return u.db.Write(batch, nil)
}

// DeleteUTXO removes an output and its reverse-index entry. It is a no-op
// if the output is already absent (idempotent for reorg rollback paths).
func (u *UTXOSet) DeleteUTXO(op wire.OutPoint) error {
	entry, err := u.FetchUTXO(op)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Delete(utxoKey(op))
	if entry != nil {
		batch.Delete(scriptIndexKey(entry.ScriptPubKey, op))
	}
	return u.db.Write(batch, nil)
}

// UTXOsForScript returns every unspent output locked to script, the
// operation getbalance uses to sum a wallet's confirmed balance.
func (u *UTXOSet) UTXOsForScript(script []byte) ([]*blockchain.UTXOEntry, error) {
	iter := u.db.NewIterator(util.BytesPrefix(scriptIndexPrefix(script)), nil)
	defer iter.Release()

	var out []*blockchain.UTXOEntry
	for iter.Next() {
		key := iter.Key()
		// key layout: prefix(1) + len(2) + script(len) + txhash(32) + index(4)
		tail := key[len(prefixUTXOByQuery)+2+len(script):]
		var op wire.OutPoint
		copy(op.Hash[:], tail[0:32])
		op.Index = binary.BigEndian.Uint32(tail[32:36])

		entry, err := u.FetchUTXO(op)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			out = append(out, entry)
		}
	}
	return out, iter.Error()
}
