// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining implements the work service (C12): block template
// assembly with a coinbase and greedily-selected mempool transactions,
// and submission of solved blocks back through the chain manager.
package mining

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/blockchain/standalone"
	"github.com/icsicoin/node/chaincfg"
	"github.com/icsicoin/node/mempool"
	"github.com/icsicoin/node/txscript"
	"github.com/icsicoin/node/wire"
)

// Template is the assembled work a miner solves by finding a nonce
// satisfying Bits, then submits back via Service.Submit.
type Template struct {
	Version           uint32
	PreviousBlockHash string
	Height            int64
	CurTime           uint32
	Bits              uint32
	Target            string
	MerkleRoot        string
	Transactions      []string // hex-encoded, coinbase first
}

// Service assembles templates and accepts solved blocks.
type Service struct {
	chain  *blockchain.BlockChain
	params *chaincfg.Params
	pool   *mempool.TxPool
}

// New creates a Service over chain, params, and pool.
func New(chain *blockchain.BlockChain, params *chaincfg.Params, pool *mempool.TxPool) *Service {
	return &Service{chain: chain, params: params, pool: pool}
}

// subsidyAt computes the block reward at height, halving every
// SubsidyHalvingInterval blocks.
func subsidyAt(params *chaincfg.Params, height int64) int64 {
	halvings := height / params.SubsidyHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return params.BaseSubsidy >> uint(halvings)
}

// buildCoinbase constructs the block's sole coinbase transaction,
// paying subsidyAt(height) to payScript.
func buildCoinbase(height int64, subsidy int64, payScript []byte) *wire.MsgTx {
	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0xFFFFFFFF},
			SignatureScript:  []byte(fmt.Sprintf("height %d", height)),
			Sequence:         0xFFFFFFFF,
		}},
		TxOut: []*wire.TxOut{{
			Value:        uint64(subsidy),
			ScriptPubKey: payScript,
		}},
		LockTime: 0,
	}
	return tx
}

// NewTemplate assembles a block template extending the current tip,
// paying the coinbase to payToScript (typically a P2PKH script built
// from a caller-supplied 20-byte hash). Additional transactions are
// greedily selected from the mempool, skipping any whose inputs
// conflict with an already-selected transaction.
func (s *Service) NewTemplate(payToScript []byte) (*Template, error) {
	height := s.chain.BestHeight() + 1
	bits := s.chain.NextRequiredBits()
	subsidy := subsidyAt(s.params, height)

	coinbase := buildCoinbase(height, subsidy, payToScript)
	txns := []*wire.MsgTx{coinbase}

	spent := make(map[wire.OutPoint]struct{})
	for _, tx := range s.pool.Snapshot() {
		conflict := false
		for _, in := range tx.TxIn {
			if _, ok := spent[in.PreviousOutPoint]; ok {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		for _, in := range tx.TxIn {
			spent[in.PreviousOutPoint] = struct{}{}
		}
		txns = append(txns, tx)
	}

	merkleRoot := blockchain.CalcMerkleRoot(txns)

	target := standalone.CompactToBig(bits)

	hexTxns := make([]string, len(txns))
	for i, tx := range txns {
		hexTxns[i] = hex.EncodeToString(tx.Bytes())
	}

	return &Template{
		Version:           1,
		PreviousBlockHash: s.chain.BestHash().String(),
		Height:            height,
		CurTime:           uint32(time.Now().Unix()),
		Bits:              bits,
		Target:            fmt.Sprintf("%064x", target),
		MerkleRoot:        merkleRoot.String(),
		Transactions:      hexTxns,
	}, nil
}
