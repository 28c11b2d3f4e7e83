// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// BlockStatus is a three-value status field: 1 header-only, 2
// valid-sidechain (persisted but not on the active chain), 3 active-main.
type BlockStatus uint8

const (
	StatusHeaderOnly BlockStatus = 1
	StatusSideChain BlockStatus = 2
	StatusMain BlockStatus = 3
)

// blockNode is an in-memory view of one indexed block, linked to its parent
// so retarget and ancestor walks never have to touch the index store.
type blockNode struct {
	parent *blockNode
	hash chainhash.Hash
	height int64

	bits uint32
	timestamp uint32
	status BlockStatus
}

// newBlockNode builds a node for header, linked to parent (nil only for
// genesis).
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		parent: parent,
		hash: header.BlockHash(),
		bits: header.Bits,
		timestamp: header.Timestamp,
	}
	if parent != nil {
		node.height = parent.height + 1
	}
	return node
}

// ancestor returns the ancestor at the given height, or nil if height is out
// of range for this node's chain.
func (n *blockNode) ancestor(height int64) *blockNode {
	if height < 0 || height > n.height {
		return nil
	}
	node := n
	for node != nil && node.height != height {
		node = node.parent
	}
	return node
}

// relativeAncestor returns the ancestor distance blocks before n.
func (n *blockNode) relativeAncestor(distance int64) *blockNode {
	return n.ancestor(n.height - distance)
}
