// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// Ingest runs the block-processing pipeline for an incoming block:
// duplicate/orphan detection, context-free validation, then placement as
// an extension of the active chain, a stored sidechain block, or the
// trigger for a reorganization.
func (b *BlockChain) Ingest(block *wire.MsgBlock) (IngestResult, error) {
	hash := block.BlockHash()

	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	if _, ok := b.index.Entry(hash); ok {
		return ResultAlreadyKnown, nil
	}

	if err := checkBlockSanity(block); err != nil {
		return ResultAlreadyKnown, err
	}

	parentNode, ok := b.nodeByHash[block.Header.PrevBlock]
	if !ok {
		b.addOrphan(block)
		return ResultOrphan, nil
	}

	newHeight := parentNode.height + 1

	if parentNode.hash == b.bestNode.hash {
		if err := b.connectBlock(block, parentNode, newHeight); err != nil {
			return ResultAlreadyKnown, err
		}
		b.resolveOrphans(hash)
		return ResultExtendedMain, nil
	}

	if newHeight <= b.bestNode.height {
		if err := b.storeSideChainBlock(block, parentNode, newHeight); err != nil {
			return ResultAlreadyKnown, err
		}
		b.resolveOrphans(hash)
		return ResultSideStored, nil
	}

	if err := b.reorganize(block, parentNode, newHeight); err != nil {
		return ResultAlreadyKnown, err
	}
	b.resolveOrphans(hash)
	return ResultReorganized, nil
}

// connectBlock implements Connect: validate against the live UTXO view,
// apply every transaction's spends and outputs, persist the block, extend
// the index at status=3, and advance the tip.
func (b *BlockChain) connectBlock(block *wire.MsgBlock, parent *blockNode, height int64) error {
	view := newUTXOOverlay(b.utxo)
	if err := checkConnectBlock(b.params, block, height, view, b.sigCache); err != nil {
		return err
	}

	raw := block.Bytes()
	loc, err := b.store.WriteBlock(raw)
	if err != nil {
		return err
	}

	for op := range view.removed {
		if err := b.utxo.DeleteUTXO(op); err != nil {
			return err
		}
	}
	for op, entry := range view.added {
		if err := b.utxo.PutUTXO(op, entry); err != nil {
			return err
		}
	}

	hash := block.BlockHash()
	entry := &IndexEntry{
		Hash: hash,
		Prev: parent.hash,
		Height: height,
		Status: StatusMain,
		Loc: loc,
		Bits: block.Header.Bits,
		Timestamp: block.Header.Timestamp,
	}
	if err := b.index.SetTip(entry); err != nil {
		return err
	}
	if err := b.indexBlockTransactions(hash, block); err != nil {
		return err
	}

	node := newBlockNode(&block.Header, parent)
	node.status = StatusMain
	b.nodeByHash[hash] = node
	b.bestNode = node

	b.sigCache.EvictEntries(block)

	log.Infof("connected block %v at height %d", hash, height)
	return nil
}

// storeSideChainBlock implements the "extend sidechain" branch: persist
// and index the block at status=2 without touching the UTXO set or tip.
func (b *BlockChain) storeSideChainBlock(block *wire.MsgBlock, parent *blockNode, height int64) error {
	raw := block.Bytes()
	loc, err := b.store.WriteBlock(raw)
	if err != nil {
		return err
	}

	hash := block.BlockHash()
	entry := &IndexEntry{
		Hash: hash,
		Prev: parent.hash,
		Height: height,
		Status: StatusSideChain,
		Loc: loc,
		Bits: block.Header.Bits,
		Timestamp: block.Header.Timestamp,
	}
	if err := b.index.PutEntry(entry); err != nil {
		return err
	}
	if err := b.indexBlockTransactions(hash, block); err != nil {
		return err
	}

	node := newBlockNode(&block.Header, parent)
	node.status = StatusSideChain
	b.nodeByHash[hash] = node

	log.Infof("stored sidechain block %v at height %d", hash, height)
	return nil
}

func (b *BlockChain) indexBlockTransactions(blockHash chainhash.Hash, block *wire.MsgBlock) error {
	txHashes := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		txHashes[i] = tx.TxHash()
	}
	return b.index.IndexTransactions(blockHash, txHashes)
}

// addOrphan records block in the orphan pool keyed by its missing parent,
// evicting the oldest entry once the pool is at capacity.
func (b *BlockChain) addOrphan(block *wire.MsgBlock) {
	b.orphanLock.Lock()
	defer b.orphanLock.Unlock()

	prev := block.Header.PrevBlock
	b.orphans[prev] = append(b.orphans[prev], block)
	b.orphanList = append(b.orphanList, block.BlockHash())

	if len(b.orphanList) > maxOrphanBlocks {
		oldest := b.orphanList[0]
		b.orphanList = b.orphanList[1:]
		for prevHash, list := range b.orphans {
			for i, o := range list {
				if o.BlockHash() == oldest {
					b.orphans[prevHash] = append(list[:i], list[i+1:]...)
					break
				}
			}
			if len(b.orphans[prevHash]) == 0 {
				delete(b.orphans, prevHash)
			}
		}
	}
}

// orphanByHash finds an orphan block by its own hash, searching every
// bucket of the orphan pool. Caller must hold orphanLock.
func (b *BlockChain) orphanByHash(hash chainhash.Hash) *wire.MsgBlock {
	for _, list := range b.orphans {
		for _, o := range list {
			if o.BlockHash() == hash {
				return o
			}
		}
	}
	return nil
}

// MissingAncestor walks prev pointers from the orphan named by hash,
// through however many buffered ancestors are themselves orphans, and
// returns the hash of the first missing parent found along the way,
// the block a caller should request via getdata to make progress.
// It returns hash itself if it does not name a buffered orphan.
func (b *BlockChain) MissingAncestor(hash chainhash.Hash) chainhash.Hash {
	b.orphanLock.Lock()
	defer b.orphanLock.Unlock()

	current := hash
	for {
		block := b.orphanByHash(current)
		if block == nil {
			return current
		}
		parent := block.Header.PrevBlock
		if b.orphanByHash(parent) == nil {
			return parent
		}
		current = parent
	}
}

// resolveOrphans re-ingests every orphan whose missing parent is newHash,
// recursing transitively through a worklist.
func (b *BlockChain) resolveOrphans(newHash chainhash.Hash) {
	worklist := []chainhash.Hash{newHash}
	for len(worklist) > 0 {
		hash := worklist[0]
		worklist = worklist[1:]

		b.orphanLock.Lock()
		ready := b.orphans[hash]
		delete(b.orphans, hash)
		b.orphanLock.Unlock()

		for _, orphan := range ready {
			parentNode, ok := b.nodeByHash[hash]
			if !ok {
				continue
			}
			oHash := orphan.BlockHash()
			newHeight := parentNode.height + 1
			var err error
			if parentNode.hash == b.bestNode.hash {
				err = b.connectBlock(orphan, parentNode, newHeight)
			} else if newHeight <= b.bestNode.height {
				err = b.storeSideChainBlock(orphan, parentNode, newHeight)
			} else {
				err = b.reorganize(orphan, parentNode, newHeight)
			}
			if err != nil {
				log.Warnf("failed to resolve orphan %v: %v", oHash, err)
				continue
			}
			worklist = append(worklist, oHash)
		}
	}
}
