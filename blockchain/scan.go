// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/icsicoin/node/chainhash"
)

// IntegrityScan iterates the index in (file, offset) order and, for each
// entry, reads the header bytes back off disk and checks they still
// double-SHA-256 to the indexed hash. It returns the hash of the first
// entry that fails to match, or a zero hash and nil error if every entry
// matches.
func (b *BlockChain) IntegrityScan() (chainhash.Hash, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	entries, err := b.index.EntriesByLocation()
	if err != nil {
		return chainhash.Hash{}, err
	}

	for _, entry := range entries {
		raw, err := b.store.ReadBlock(entry.Loc)
		if err != nil {
			return chainhash.Hash{}, err
		}
		if len(raw) < 80 {
			return entry.Hash, fmt.Errorf("blockchain: stored block for %v is short: %d bytes", entry.Hash, len(raw))
		}
		if chainhash.HashH(raw[:80]) != entry.Hash {
			return entry.Hash, nil
		}
	}
	return chainhash.Hash{}, nil
}

// EstimateHashrate computes the network hashrate estimate, looking
// back window blocks from the current tip:
//
//	hashrate ≈ difficulty(tip) · 2³² / (ts(tip) − ts(tip−window))
//
// where difficulty(bits) = target(0x1d00ffff) / target(bits).
func (b *BlockChain) EstimateHashrate(window int64) (float64, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	if window <= 0 || window > b.bestNode.height {
		window = b.bestNode.height
	}
	if window <= 0 {
		return 0, nil
	}

	tip := b.bestNode
	past := tip.relativeAncestor(window)
	if past == nil {
		return 0, fmt.Errorf("blockchain: no ancestor %d blocks before tip", window)
	}

	elapsed := int64(tip.timestamp) - int64(past.timestamp)
	if elapsed <= 0 {
		return 0, nil
	}

	diff := difficultyFromBits(tip.bits)
	return diff * 4294967296.0 / float64(elapsed), nil
}
