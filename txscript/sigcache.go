// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// shortTxHashKeySize is the key size for the SipHash-2-4 short-hash used to
// key proactive eviction.
const shortTxHashKeySize = 16

type sigCacheEntry struct {
	sig         []byte
	pubKey      []byte
	shortTxHash uint64
}

// SigCache caches the result of previously-verified (sigHash, signature,
// pubkey) triples so a transaction seen once in the mempool is not
// re-verified when it is later included in a block, while bounding memory
// with a random eviction policy once full.
type SigCache struct {
	mtx            sync.RWMutex
	valid          map[chainhash.Hash]sigCacheEntry
	maxEntries     uint
	shortTxHashKey [shortTxHashKeySize]byte
}

// NewSigCache creates a SigCache capped at maxEntries.
func NewSigCache(maxEntries uint) (*SigCache, error) {
	var key [shortTxHashKeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	return &SigCache{
		valid:          make(map[chainhash.Hash]sigCacheEntry, maxEntries),
		maxEntries:     maxEntries,
		shortTxHashKey: key,
	}, nil
}

// Exists reports whether (sigHash, sig, pubKey) was already verified.
func (c *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	entry, ok := c.valid[sigHash]
	if !ok {
		return false
	}
	return bytesEqual(entry.sig, sig) && bytesEqual(entry.pubKey, pubKey)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Add records that (sigHash, sig, pubKey) verified successfully for tx.
func (c *SigCache) Add(sigHash chainhash.Hash, sig, pubKey []byte, tx *wire.MsgTx) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.maxEntries == 0 {
		return
	}
	if uint(len(c.valid)+1) > c.maxEntries {
		for k := range c.valid {
			delete(c.valid, k)
			break
		}
	}
	c.valid[sigHash] = sigCacheEntry{sig: sig, pubKey: pubKey, shortTxHash: c.shortTxHash(tx)}
}

func (c *SigCache) shortTxHash(tx *wire.MsgTx) uint64 {
	k0 := binary.LittleEndian.Uint64(c.shortTxHashKey[0:8])
	k1 := binary.LittleEndian.Uint64(c.shortTxHashKey[8:16])
	txHash := tx.TxHash()
	return siphash.Hash(k0, k1, txHash[:])
}

// EvictEntries removes every cache entry belonging to a transaction in
// block. The chain calls this as soon as the block is connected.
func (c *SigCache) EvictEntries(block *wire.MsgBlock) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if len(c.valid) == 0 {
		return
	}

	inBlock := make(map[uint64]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		inBlock[c.shortTxHash(tx)] = struct{}{}
	}
	for sigHash, entry := range c.valid {
		if _, ok := inBlock[entry.shortTxHash]; ok {
			delete(c.valid, sigHash)
		}
	}
}
