// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// CalcMerkleRoot hashes each transaction, duplicating the last entry when
// the level has an odd count, and pairs double-SHA-256(left||right) until a
// single hash remains. A one-transaction block's root is that transaction's
// own hash, unchanged.
func CalcMerkleRoot(txns []*wire.MsgTx) chainhash.Hash {
	if len(txns) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(txns))
	for i, tx := range txns {
		level[i] = tx.TxHash()
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var buf [64]byte
			copy(buf[0:32], level[i][:])
			copy(buf[32:64], level[i+1][:])
			next = append(next, chainhash.HashH(buf[:]))
		}
		level = next
	}
	return level[0]
}
