// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chainhash"
)

// Key prefixes for the flat LevelDB keyspace the block index lives in.
var (
	prefixEntry    = []byte("e")
	prefixLocation = []byte("l")
	prefixHeight   = []byte("h")
	prefixTxIndex  = []byte("t")
	keyBestTip     = []byte("best")
)

// BlockIndex is the persistent block index (C6): hash -> (location,
// height, prev, status), the best-tip pointer, height -> hash, and the
// transaction-hash -> containing-block index, all stored in a single
// LevelDB database.
type BlockIndex struct {
	db *leveldb.DB
}

// NewBlockIndex opens (creating if necessary) the LevelDB database at dir.
func NewBlockIndex(dir string) (*BlockIndex, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &BlockIndex{db: db}, nil
}

// Close releases the underlying LevelDB handle.
func (idx *BlockIndex) Close() error {
	return idx.db.Close()
}

func entryKey(hash chainhash.Hash) []byte {
	return append(append([]byte{}, prefixEntry...), hash[:]...)
}

func locationKey(file, offset uint32) []byte {
	k := make([]byte, len(prefixLocation)+8)
	copy(k, prefixLocation)
	binary.BigEndian.PutUint32(k[len(prefixLocation):], file)
	binary.BigEndian.PutUint32(k[len(prefixLocation)+4:], offset)
	return k
}

func heightKey(height int64) []byte {
	k := make([]byte, len(prefixHeight)+8)
	copy(k, prefixHeight)
	binary.BigEndian.PutUint64(k[len(prefixHeight):], uint64(height))
	return k
}

func txKey(hash chainhash.Hash) []byte {
	return append(append([]byte{}, prefixTxIndex...), hash[:]...)
}

// encodeEntry serializes an IndexEntry to a fixed-width record:
// height(8) prev(32) status(1) file(4) offset(4) length(4) bits(4) ts(4).
func encodeEntry(e *blockchain.IndexEntry) []byte {
	buf := make([]byte, 0, 8+32+1+4+4+4+4+4)
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], uint64(e.Height))
	buf = append(buf, h[:]...)
	buf = append(buf, e.Prev[:]...)
	buf = append(buf, byte(e.Status))
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], e.Loc.File)
	buf = append(buf, n[:]...)
	binary.BigEndian.PutUint32(n[:], e.Loc.Offset)
	buf = append(buf, n[:]...)
	binary.BigEndian.PutUint32(n[:], e.Loc.Length)
	buf = append(buf, n[:]...)
	binary.BigEndian.PutUint32(n[:], e.Bits)
	buf = append(buf, n[:]...)
	binary.BigEndian.PutUint32(n[:], e.Timestamp)
	buf = append(buf, n[:]...)
	return buf
}

func decodeEntry(hash chainhash.Hash, data []byte) (*blockchain.IndexEntry, error) {
	if len(data) != 8+32+1+4+4+4+4+4 {
		return nil, fmt.Errorf("database: malformed index record for %v (%d bytes)", hash, len(data))
	}
	e := &blockchain.IndexEntry{Hash: hash}
	e.Height = int64(binary.BigEndian.Uint64(data[0:8]))
	copy(e.Prev[:], data[8:40])
	e.Status = blockchain.BlockStatus(data[40])
	e.Loc.File = binary.BigEndian.Uint32(data[41:45])
	e.Loc.Offset = binary.BigEndian.Uint32(data[45:49])
	e.Loc.Length = binary.BigEndian.Uint32(data[49:53])
	e.Bits = binary.BigEndian.Uint32(data[53:57])
	e.Timestamp = binary.BigEndian.Uint32(data[57:61])
	return e, nil
}

// Entry looks up the index record for hash.
func (idx *BlockIndex) Entry(hash chainhash.Hash) (*blockchain.IndexEntry, bool) {
	data, err := idx.db.Get(entryKey(hash), nil)
	if err != nil {
		return nil, false
	}
	entry, err := decodeEntry(hash, data)
	if err != nil {
		return nil, false
	}
	return entry, true
}

// PutEntry writes entry and its height and (file, offset) secondary keys.
func (idx *BlockIndex) PutEntry(entry *blockchain.IndexEntry) error {
	batch := new(leveldb.Batch)
	batch.Put(entryKey(entry.Hash), encodeEntry(entry))
	batch.Put(heightKey(entry.Height), entry.Hash[:])
	batch.Put(locationKey(entry.Loc.File, entry.Loc.Offset), entry.Hash[:])
	return idx.db.Write(batch, nil)
}

// SetStatus updates just the status byte of an existing entry.
func (idx *BlockIndex) SetStatus(hash chainhash.Hash, status blockchain.BlockStatus) error {
	entry, ok := idx.Entry(hash)
	if !ok {
		return fmt.Errorf("database: cannot set status, no entry for %v", hash)
	}
	entry.Status = status
	return idx.db.Put(entryKey(hash), encodeEntry(entry), nil)
}

// BestTip returns the entry the best-tip pointer currently names.
func (idx *BlockIndex) BestTip() (*blockchain.IndexEntry, bool) {
	data, err := idx.db.Get(keyBestTip, nil)
	if err != nil {
		return nil, false
	}
	var hash chainhash.Hash
	copy(hash[:], data)
	return idx.Entry(hash)
}

// SetBestTip atomically moves the best-tip pointer to hash.
func (idx *BlockIndex) SetBestTip(hash chainhash.Hash) error {
	return idx.db.Put(keyBestTip, hash[:], nil)
}

// SetTip writes entry's record and secondary keys and moves the
// best-tip pointer to entry.Hash in a single batch, so a crash can
// never leave the tip pointer naming a hash with no index entry.
func (idx *BlockIndex) SetTip(entry *blockchain.IndexEntry) error {
	batch := new(leveldb.Batch)
	batch.Put(entryKey(entry.Hash), encodeEntry(entry))
	batch.Put(heightKey(entry.Height), entry.Hash[:])
	batch.Put(locationKey(entry.Loc.File, entry.Loc.Offset), entry.Hash[:])
	batch.Put(keyBestTip, entry.Hash[:])
	return idx.db.Write(batch, nil)
}

// HashAtHeight returns the hash indexed at height, if any.
func (idx *BlockIndex) HashAtHeight(height int64) (chainhash.Hash, bool) {
	data, err := idx.db.Get(heightKey(height), nil)
	if err != nil {
		return chainhash.Hash{}, false
	}
	var hash chainhash.Hash
	copy(hash[:], data)
	return hash, true
}

// IndexTransactions records that every hash in txHashes is contained in
// the block blockHash.
func (idx *BlockIndex) IndexTransactions(blockHash chainhash.Hash, txHashes []chainhash.Hash) error {
	batch := new(leveldb.Batch)
	for _, h := range txHashes {
		batch.Put(txKey(h), blockHash[:])
	}
	return idx.db.Write(batch, nil)
}

// BlockContainingTx returns the hash of the block that contains txHash.
func (idx *BlockIndex) BlockContainingTx(txHash chainhash.Hash) (chainhash.Hash, bool) {
	data, err := idx.db.Get(txKey(txHash), nil)
	if err != nil {
		return chainhash.Hash{}, false
	}
	var hash chainhash.Hash
	copy(hash[:], data)
	return hash, true
}

// EntriesByLocation returns every indexed entry ordered by (file, offset),
// the order the integrity scan walks the flat files in.
func (idx *BlockIndex) EntriesByLocation() ([]*blockchain.IndexEntry, error) {
	iter := idx.db.NewIterator(util.BytesPrefix(prefixLocation), nil)
	defer iter.Release()

	var entries []*blockchain.IndexEntry
	for iter.Next() {
		var hash chainhash.Hash
		copy(hash[:], iter.Value())
		entry, ok := idx.Entry(hash)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, iter.Error()
}
