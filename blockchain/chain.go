// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"

	"github.com/icsicoin/node/chaincfg"
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/txscript"
	"github.com/icsicoin/node/wire"
)

// maxOrphanBlocks caps the orphan pool.
const maxOrphanBlocks = 500

// defaultSigCacheSize bounds the shared signature-verification cache.
const defaultSigCacheSize = 100000

// IngestResult reports where Ingest placed an incoming block.
type IngestResult int

const (
	ResultAlreadyKnown IngestResult = iota
	ResultOrphan
	ResultExtendedMain
	ResultSideStored
	ResultReorganized
)

func (r IngestResult) String() string {
	switch r {
	case ResultAlreadyKnown:
		return "AlreadyKnown"
	case ResultOrphan:
		return "Orphan"
	case ResultExtendedMain:
		return "ExtendedMain"
	case ResultSideStored:
		return "SideStored"
	case ResultReorganized:
		return "Reorganized"
	default:
		return "Unknown"
	}
}

// BlockChain is the chain manager (C9): it orchestrates block ingestion,
// the orphan queue, fork choice, reorganization, genesis bootstrap, the
// integrity scan, and the network hashrate estimate over the C5/C6/C7
// persistence layers.
type BlockChain struct {
	chainLock sync.RWMutex

	params *chaincfg.Params
	store BlockStore
	index BlockIndexer
	utxo UTXOStore
	sigCache *txscript.SigCache

	nodeByHash map[chainhash.Hash]*blockNode
	bestNode *blockNode

	orphanLock sync.Mutex
	orphans map[chainhash.Hash][]*wire.MsgBlock
	orphanList []chainhash.Hash
}

// New constructs a BlockChain over the given persistence layers and runs
// genesis bootstrap if the index has no best tip yet.
func New(params *chaincfg.Params, store BlockStore, index BlockIndexer, utxo UTXOStore) (*BlockChain, error) {
	sigCache, err := txscript.NewSigCache(defaultSigCacheSize)
	if err != nil {
		return nil, err
	}
	b := &BlockChain{
		params: params,
		store: store,
		index: index,
		utxo: utxo,
		sigCache: sigCache,
		nodeByHash: make(map[chainhash.Hash]*blockNode),
		orphans: make(map[chainhash.Hash][]*wire.MsgBlock),
	}
	if err := b.initChainState(); err != nil {
		return nil, err
	}
	return b, nil
}

// initChainState loads the best tip's ancestry into the in-memory node
// cache, or performs genesis bootstrap if the index is empty.
func (b *BlockChain) initChainState() error {
	tip, ok := b.index.BestTip()
	if !ok {
		return b.bootstrapGenesis()
	}

	entries, err := b.index.EntriesByLocation()
	if err != nil {
		return err
	}
	byHash := make(map[chainhash.Hash]*IndexEntry, len(entries))
	for _, e := range entries {
		byHash[e.Hash] = e
	}

	var build func(hash chainhash.Hash) *blockNode
	build = func(hash chainhash.Hash) *blockNode {
		if node, ok := b.nodeByHash[hash]; ok {
			return node
		}
		entry, ok := byHash[hash]
		if !ok {
			return nil
		}
		var parent *blockNode
		if entry.Height > 0 {
			parent = build(entry.Prev)
		}
		node := &blockNode{
			parent: parent,
			hash: entry.Hash,
			height: entry.Height,
			bits: entry.Bits,
			timestamp: entry.Timestamp,
			status: entry.Status,
		}
		b.nodeByHash[hash] = node
		return node
	}

	b.bestNode = build(tip.Hash)
	if b.bestNode == nil {
		return fmt.Errorf("blockchain: best tip %v missing from index", tip.Hash)
	}
	return nil
}

// bootstrapGenesis implements genesis bootstrap: serialize the
// hardcoded genesis block, write it, index it at height 0 with status=3,
// and set it as best.
func (b *BlockChain) bootstrapGenesis() error {
	genesis := b.params.GenesisBlock
	raw := genesis.Bytes()
	loc, err := b.store.WriteBlock(raw)
	if err != nil {
		return err
	}

	hash := genesis.BlockHash()
	entry := &IndexEntry{
		Hash: hash,
		Prev: chainhash.Hash{},
		Height: 0,
		Status: StatusMain,
		Loc: loc,
		Bits: genesis.Header.Bits,
		Timestamp: genesis.Header.Timestamp,
	}
	if err := b.index.SetTip(entry); err != nil {
		return err
	}

	txHashes := make([]chainhash.Hash, len(genesis.Transactions))
	for i, tx := range genesis.Transactions {
		txHashes[i] = tx.TxHash()
	}
	if err := b.index.IndexTransactions(hash, txHashes); err != nil {
		return err
	}

	node := &blockNode{hash: hash, height: 0, bits: entry.Bits, timestamp: entry.Timestamp, status: StatusMain}
	b.nodeByHash[hash] = node
	b.bestNode = node

	log.Infof("genesis block %v bootstrapped", hash)
	return nil
}

// BestHeight returns the current best tip's height.
func (b *BlockChain) BestHeight() int64 {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return b.bestNode.height
}

// BestHash returns the current best tip's hash.
func (b *BlockChain) BestHash() chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return b.bestNode.hash
}

// NextRequiredBits returns the bits the next block built on the current
// tip must satisfy.
func (b *BlockChain) NextRequiredBits() uint32 {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return calcNextRequiredBits(b.params, b.bestNode)
}

// Locator builds a block locator from the current tip: hashes at
// offsets 0..9 (dense), then doubling offsets, capped at 32 entries,
// always ending with genesis.
func (b *BlockChain) Locator() []chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	var hashes []chainhash.Hash
	step := int64(1)
	node := b.bestNode
	for node != nil && len(hashes) < wire.MaxBlockLocatorsPerMsg-1 {
		hashes = append(hashes, node.hash)
		if node.height == 0 {
			return hashes
		}
		if len(hashes) >= 10 {
			step *= 2
		}
		node = node.ancestor(maxInt64(node.height-step, 0))
	}
	genesis := b.nodeByHash[b.genesisHashLocked()]
	if genesis != nil && (len(hashes) == 0 || hashes[len(hashes)-1] != genesis.hash) {
		hashes = append(hashes, genesis.hash)
	}
	return hashes
}

func (b *BlockChain) genesisHashLocked() chainhash.Hash {
	n := b.bestNode
	for n.parent != nil {
		n = n.parent
	}
	return n.hash
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
