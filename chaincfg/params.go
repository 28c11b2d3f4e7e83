// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// Params groups the network-specific constants a node needs: wire framing,
// listen/RPC ports, genesis anchor, retarget schedule, and subsidy policy.
type Params struct {
	Name string
	Net wire.CurrencyNet
	DefaultPort string
	RPCPort string

	GenesisBlock *wire.MsgBlock
	GenesisHash chainhash.Hash

	// PowLimitBits is the loosest allowed target, expressed in compact
	// form; the genesis block's own bits field in every network here.
	PowLimitBits uint32

	// Retarget schedule.
	RetargetInterval int64
	TargetTimePerBlock int64
	TargetTimespan int64
	RetargetAdjustmentMax int64

	// Subsidy.
	BaseSubsidy int64
	SubsidyHalvingInterval int64
	CoinbaseMaturity int64
}

func mustGenesisHash(b *wire.MsgBlock) chainhash.Hash {
	return b.BlockHash()
}

// MainNetParams are the production network parameters. The magic value is
// fixed by the Litecoin-family wire format this node interoperates with.
var MainNetParams = Params{
	Name: "mainnet",
	Net: wire.MainNet,
	DefaultPort: "9333",
	RPCPort: "9332",

	GenesisBlock: &MainNetGenesisBlock,
	GenesisHash: mustGenesisHash(&MainNetGenesisBlock),

	PowLimitBits: 0x1e0ffff0,

	RetargetInterval: 2016,
	TargetTimePerBlock: 30,
	TargetTimespan: 60480,
	RetargetAdjustmentMax: 4,

	BaseSubsidy: 50 * 1e8,
	SubsidyHalvingInterval: 210000,
	CoinbaseMaturity: 100,
}

// TestNetParams are the public test network parameters. Same schedule as
// mainnet so integration tooling doesn't need two code paths.
var TestNetParams = Params{
	Name: "testnet",
	Net: wire.TestNet,
	DefaultPort: "19333",
	RPCPort: "19332",

	GenesisBlock: &TestNetGenesisBlock,
	GenesisHash: mustGenesisHash(&TestNetGenesisBlock),

	PowLimitBits: 0x1e0ffff0,

	RetargetInterval: 2016,
	TargetTimePerBlock: 30,
	TargetTimespan: 60480,
	RetargetAdjustmentMax: 4,

	BaseSubsidy: 50 * 1e8,
	SubsidyHalvingInterval: 210000,
	CoinbaseMaturity: 100,
}

// SimNetParams are for local multi-node integration testing: a much looser
// proof-of-work limit so blocks can be mined in test time.
var SimNetParams = Params{
	Name: "simnet",
	Net: wire.SimNet,
	DefaultPort: "18555",
	RPCPort: "18556",

	GenesisBlock: &SimNetGenesisBlock,
	GenesisHash: mustGenesisHash(&SimNetGenesisBlock),

	PowLimitBits: 0x207fffff,

	RetargetInterval: 2016,
	TargetTimePerBlock: 30,
	TargetTimespan: 60480,
	RetargetAdjustmentMax: 4,

	BaseSubsidy: 50 * 1e8,
	SubsidyHalvingInterval: 210000,
	CoinbaseMaturity: 100,
}
