// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// genesisCoinbase is the single transaction of every network's genesis
// block. It pays nothing spendable; genesis outputs are never consumed.
var genesisCoinbase = wire.MsgTx{
	Version: 1,
	TxIn: []*wire.TxIn{{
		PreviousOutPoint: wire.OutPoint{
			Hash: chainhash.Hash{},
			Index: 0xffffffff,
		},
		SignatureScript: []byte("icsicoin genesis block"),
		Sequence: 0xffffffff,
	}},
	TxOut: []*wire.TxOut{{
		Value: 0,
		ScriptPubKey: []byte{0x6a},
	}},
	LockTime: 0,
}

// genesisMerkleRoot is the merkle root of a block containing only
// genesisCoinbase, i.e. the coinbase's own transaction hash.
var genesisMerkleRoot = genesisCoinbase.TxHash()

// MainNetGenesisBlock is the hardcoded block anchoring mainnet. Its nonce
// is a placeholder: genesis bootstrap writes this block directly to
// the store and index without running the normal proof-of-work check, so
// no nonce search was performed.
var MainNetGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version: 1,
		PrevBlock: chainhash.Hash{},
		MerkleRoot: genesisMerkleRoot,
		Timestamp: 1717200000,
		Bits: 0x1e0ffff0,
		Nonce: 0,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbase},
}

// TestNetGenesisBlock anchors testnet. Same coinbase, distinct timestamp so
// the two networks never share a genesis hash.
var TestNetGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version: 1,
		PrevBlock: chainhash.Hash{},
		MerkleRoot: genesisMerkleRoot,
		Timestamp: 1717200100,
		Bits: 0x1e0ffff0,
		Nonce: 0,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbase},
}

// SimNetGenesisBlock anchors simnet, used for local integration tests where
// the proof-of-work target is kept trivially easy.
var SimNetGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version: 1,
		PrevBlock: chainhash.Hash{},
		MerkleRoot: genesisMerkleRoot,
		Timestamp: 1717200200,
		Bits: 0x207fffff,
		Nonce: 0,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbase},
}
