// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// loadBlock reads and deserializes the block recorded at hash in the index.
func (b *BlockChain) loadBlock(hash chainhash.Hash) (*wire.MsgBlock, *IndexEntry, error) {
	entry, ok := b.index.Entry(hash)
	if !ok {
		return nil, nil, fmt.Errorf("blockchain: no index entry for %v", hash)
	}
	raw, err := b.store.ReadBlock(entry.Loc)
	if err != nil {
		return nil, nil, err
	}
	block := new(wire.MsgBlock)
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, nil, err
	}
	return block, entry, nil
}

// findForkPoint returns the lowest common ancestor of node and the
// current best tip, the point Reorg calls the fork point.
func (b *BlockChain) findForkPoint(node *blockNode) *blockNode {
	a, c := node, b.bestNode
	for a.height > c.height {
		a = a.parent
	}
	for c.height > a.height {
		c = c.parent
	}
	for a != nil && c != nil && a.hash != c.hash {
		a = a.parent
		c = c.parent
	}
	return a
}

// disconnectBlock implements Disconnect: for each transaction in reverse
// order, remove its created outputs from the UTXO store, then restore each
// non-coinbase input's original prevout looked up via the containing
// block's own transaction. The block's index status reverts to sidechain.
func (b *BlockChain) disconnectBlock(block *wire.MsgBlock, node *blockNode) error {
	for i := len(block.Transactions) - 1; i >= 0; i-- {
		tx := block.Transactions[i]
		hash := tx.TxHash()
		for outIdx := range tx.TxOut {
			if err := b.utxo.DeleteUTXO(wire.OutPoint{Hash: hash, Index: uint32(outIdx)}); err != nil {
				return err
			}
		}
		if tx.IsCoinBase() {
			continue
		}
		for _, in := range tx.TxIn {
			entry, err := b.restoreSpentOutput(in.PreviousOutPoint)
			if err != nil {
				return err
			}
			if err := b.utxo.PutUTXO(in.PreviousOutPoint, entry); err != nil {
				return err
			}
		}
	}
	return b.index.SetStatus(node.hash, StatusSideChain)
}

// restoreSpentOutput rebuilds the UTXOEntry for op by locating the block
// that contains op.Hash via the tx-index and reading the specific output
// back out of that block's coinbase-or-not transaction.
func (b *BlockChain) restoreSpentOutput(op wire.OutPoint) (*UTXOEntry, error) {
	blockHash, ok := b.index.BlockContainingTx(op.Hash)
	if !ok {
		return nil, fmt.Errorf("blockchain: no containing block indexed for tx %v", op.Hash)
	}
	block, entry, err := b.loadBlock(blockHash)
	if err != nil {
		return nil, err
	}
	for _, tx := range block.Transactions {
		if tx.TxHash() != op.Hash {
			continue
		}
		if int(op.Index) >= len(tx.TxOut) {
			return nil, fmt.Errorf("blockchain: output index %d out of range for tx %v", op.Index, op.Hash)
		}
		out := tx.TxOut[op.Index]
		return &UTXOEntry{
			Amount:       int64(out.Value),
			ScriptPubKey: out.ScriptPubKey,
			Height:       entry.Height,
			IsCoinBase:   tx.IsCoinBase(),
		}, nil
	}
	return nil, fmt.Errorf("blockchain: tx %v not found in indexed block %v", op.Hash, blockHash)
}

// reorganize implements Reorg: walk back from node (the parent of the
// incoming block) to the fork point, disconnect the current main chain
// down to the fork point, then connect the collected sidechain blocks plus
// the incoming block forward to the new tip. A failed Connect aborts and
// best-effort reconnects whatever was disconnected.
func (b *BlockChain) reorganize(block *wire.MsgBlock, parent *blockNode, newHeight int64) error {
	incomingNode := newBlockNode(&block.Header, parent)
	fork := b.findForkPoint(parent)
	if fork == nil {
		return fmt.Errorf("blockchain: no common ancestor found for reorg")
	}

	// Collect the sidechain blocks from just after the fork point up to
	// and including parent, in chronological order, then append the
	// incoming block.
	var connectNodes []*blockNode
	for n := parent; n != nil && n.hash != fork.hash; n = n.parent {
		connectNodes = append([]*blockNode{n}, connectNodes...)
	}
	var connectBlocks []*wire.MsgBlock
	for _, n := range connectNodes {
		blk, _, err := b.loadBlock(n.hash)
		if err != nil {
			return err
		}
		connectBlocks = append(connectBlocks, blk)
	}
	connectBlocks = append(connectBlocks, block)
	connectNodes = append(connectNodes, incomingNode)

	// Collect the active-chain blocks from the current tip back to (but
	// not including) the fork point, in reverse chronological order.
	var disconnectNodes []*blockNode
	for n := b.bestNode; n != nil && n.hash != fork.hash; n = n.parent {
		disconnectNodes = append(disconnectNodes, n)
	}
	var disconnectBlocks []*wire.MsgBlock
	for _, n := range disconnectNodes {
		blk, _, err := b.loadBlock(n.hash)
		if err != nil {
			return err
		}
		disconnectBlocks = append(disconnectBlocks, blk)
	}

	for i, blk := range disconnectBlocks {
		if err := b.disconnectBlock(blk, disconnectNodes[i]); err != nil {
			return fmt.Errorf("blockchain: reorg disconnect failed: %w", err)
		}
	}

	for i, blk := range connectBlocks {
		node := connectNodes[i]
		view := newUTXOOverlay(b.utxo)
		if err := checkConnectBlock(b.params, blk, node.height, view, b.sigCache); err != nil {
			// Best-effort rollback: reconnect everything we disconnected.
			for j := len(disconnectBlocks) - 1; j >= 0; j-- {
				rb := newUTXOOverlay(b.utxo)
				if cerr := checkConnectBlock(b.params, disconnectBlocks[j], disconnectNodes[j].height, rb, b.sigCache); cerr == nil {
					if cerr := b.commitConnect(disconnectBlocks[j], disconnectNodes[j], rb); cerr != nil {
						log.Warnf("reorg rollback: failed to recommit %v: %v", disconnectNodes[j].hash, cerr)
					}
				}
			}
			return fmt.Errorf("blockchain: reorg connect failed at height %d: %w", node.height, err)
		}
		if err := b.commitConnect(blk, node, view); err != nil {
			return fmt.Errorf("blockchain: reorg commit failed at height %d: %w", node.height, err)
		}
	}

	log.Infof("reorganized chain: fork at height %d, new tip %v at height %d", fork.height, block.BlockHash(), newHeight)
	return nil
}

// commitConnect applies an already-validated overlay's mutations, persists
// the block if it is not already stored, and advances the index/tip/node
// cache. Used by reorg's connect phase and by its rollback; connectBlock
// performs its own commit.
func (b *BlockChain) commitConnect(block *wire.MsgBlock, node *blockNode, view *utxoOverlay) error {
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
	entry, ok := b.index.Entry(hash)
	if !ok {
		raw := block.Bytes()
		loc, err := b.store.WriteBlock(raw)
		if err != nil {
			return err
		}
		entry = &IndexEntry{
			Hash: hash, Prev: node.parent.hash, Height: node.height,
			Status: StatusMain, Loc: loc,
			Bits: block.Header.Bits, Timestamp: block.Header.Timestamp,
		}
		if err := b.indexBlockTransactions(hash, block); err != nil {
			return err
		}
	} else {
		entry.Status = StatusMain
	}
	if err := b.index.SetTip(entry); err != nil {
		return err
	}

	node.status = StatusMain
	b.nodeByHash[hash] = node
	b.bestNode = node

	b.sigCache.EvictEntries(block)
	return nil
}
