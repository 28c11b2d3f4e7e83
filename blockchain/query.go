// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// Have reports whether hash is present in the block index, regardless
// of its status (header-only, sidechain, or active-main).
func (b *BlockChain) Have(hash chainhash.Hash) bool {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	_, ok := b.index.Entry(hash)
	return ok
}

// LocateAfter scans locator top-to-bottom for the first hash present
// on the active chain, then returns up to limit active-main block
// hashes immediately above it, for servicing a getblocks request.
func (b *BlockChain) LocateAfter(locator []chainhash.Hash, limit int) []chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	var start *blockNode
	for _, h := range locator {
		if node, ok := b.nodeByHash[h]; ok && node.status == StatusMain {
			start = node
			break
		}
	}
	if start == nil {
		return nil
	}

	var out []chainhash.Hash
	for height := start.height + 1; height <= b.bestNode.height && len(out) < limit; height++ {
		node := b.bestNode.ancestor(height)
		if node == nil {
			break
		}
		out = append(out, node.hash)
	}
	return out
}

// Block returns the full deserialized block named by hash and its
// indexed height, for RPC and peer-response lookups.
func (b *BlockChain) Block(hash chainhash.Hash) (*wire.MsgBlock, int64, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	block, entry, err := b.loadBlock(hash)
	if err != nil {
		return nil, 0, err
	}
	return block, entry.Height, nil
}

// BlockByHeight returns the active-main block at height.
func (b *BlockChain) BlockByHeight(height int64) (*wire.MsgBlock, error) {
	b.chainLock.RLock()
	hash, ok := b.index.HashAtHeight(height)
	b.chainLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blockchain: no active-main block at height %d", height)
	}
	block, _, err := b.Block(hash)
	return block, err
}

// Transaction returns tx hash's containing transaction by locating its
// block through the tx index, for getrawtransaction-style lookups.
func (b *BlockChain) Transaction(hash chainhash.Hash) (*wire.MsgTx, int64, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	blockHash, ok := b.index.BlockContainingTx(hash)
	if !ok {
		return nil, 0, fmt.Errorf("blockchain: transaction %v not found", hash)
	}
	block, entry, err := b.loadBlock(blockHash)
	if err != nil {
		return nil, 0, err
	}
	for _, tx := range block.Transactions {
		if tx.TxHash() == hash {
			return tx, entry.Height, nil
		}
	}
	return nil, 0, fmt.Errorf("blockchain: transaction %v missing from indexed block %v", hash, blockHash)
}
