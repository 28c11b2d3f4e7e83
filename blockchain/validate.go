// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/icsicoin/node/blockchain/standalone"
	"github.com/icsicoin/node/chaincfg"
	"github.com/icsicoin/node/crypto/pow"
	"github.com/icsicoin/node/txscript"
	"github.com/icsicoin/node/wire"
)

// checkProofOfWork verifies pow_hash(header) interpreted as a little-endian
// integer is at or below the target decoded from header.Bits.
func checkProofOfWork(header *wire.BlockHeader) error {
	target := standalone.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return ruleError(ErrPowFailure, "target %#x is non-positive", header.Bits)
	}

	digest, err := pow.HashHeader(header.Bytes())
	if err != nil {
		return ruleError(ErrPowFailure, "scrypt hash failed: %v", err)
	}

	hashNum := standalone.HashToBig(digest[:])
	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrPowFailure, "block hash %#x exceeds target %#x", hashNum, target)
	}
	return nil
}

// checkMerkleRoot recomputes the merkle root over block's transactions and
// compares it against the header's claimed root.
func checkMerkleRoot(block *wire.MsgBlock) error {
	got := CalcMerkleRoot(block.Transactions)
	if got != block.Header.MerkleRoot {
		return ruleError(ErrMerkleMismatch, "computed merkle root %v != header %v", got, block.Header.MerkleRoot)
	}
	return nil
}

// checkBlockSanity runs the context-free structural checks: a correct
// merkle root, valid proof of work, exactly one coinbase as the first
// transaction, and no input repeated across the block.
func checkBlockSanity(block *wire.MsgBlock) error {
	if err := checkMerkleRoot(block); err != nil {
		return err
	}
	if err := checkProofOfWork(&block.Header); err != nil {
		return err
	}
	if len(block.Transactions) == 0 {
		return ruleError(ErrMissingCoinbase, "block has no transactions")
	}
	if !block.Transactions[0].IsCoinBase() {
		return ruleError(ErrMissingCoinbase, "first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if tx.IsCoinBase() {
			return ruleError(ErrMultipleCoinbases, "coinbase found outside first position")
		}
	}

	seen := make(map[wire.OutPoint]struct{})
	for _, tx := range block.Transactions {
		for _, in := range tx.TxIn {
			if _, dup := seen[in.PreviousOutPoint]; dup {
				return ruleError(ErrDuplicateInput, "input %v spent twice in block", in.PreviousOutPoint)
			}
			seen[in.PreviousOutPoint] = struct{}{}
		}
	}
	return nil
}

// checkTransactionSanity validates tx in isolation: non-empty outputs, and
// non-coinbase transactions must carry at least one input.
func checkTransactionSanity(tx *wire.MsgTx) error {
	if len(tx.TxOut) == 0 {
		return ruleError(ErrEmptyOutputs, "transaction %v has no outputs", tx.TxHash())
	}
	if !tx.IsCoinBase() && len(tx.TxIn) == 0 {
		return ruleError(ErrEmptyInputs, "non-coinbase transaction %v has no inputs", tx.TxHash())
	}
	return nil
}

// checkTransactionInputs validates tx's inputs against view at the given
// spend height: every prevout must exist, coinbase maturity must be
// satisfied, the script must evaluate, and the amounts must balance.
// On success it applies tx's spends and outputs to view.
func checkTransactionInputs(params *chaincfg.Params, tx *wire.MsgTx, spendHeight int64, view *utxoOverlay, cache *txscript.SigCache) error {
	if tx.IsCoinBase() {
		applyOutputs(tx, spendHeight, true, view)
		return nil
	}

	var totalIn int64
	for _, in := range tx.TxIn {
		entry, err := view.fetch(in.PreviousOutPoint)
		if err != nil {
			return ruleError(ErrInputMissing, "utxo lookup for %v failed: %v", in.PreviousOutPoint, err)
		}
		if entry == nil {
			return ruleError(ErrInputMissing, "output %v not found in utxo view", in.PreviousOutPoint)
		}
		if entry.IsCoinBase {
			maturity := entry.Height + params.CoinbaseMaturity
			if spendHeight < maturity {
				return ruleError(ErrCoinbaseImmature, "tried to spend coinbase output %v at height %d, requires %d", in.PreviousOutPoint, spendHeight, maturity)
			}
		}

		if err := txscript.Verify(in.SignatureScript, entry.ScriptPubKey, tx, indexOfInput(tx, in), cache); err != nil {
			return ruleError(ErrScriptFail, "script for input %v failed: %v", in.PreviousOutPoint, err)
		}

		totalIn += entry.Amount
		view.spend(in.PreviousOutPoint)
	}

	var totalOut int64
	for _, out := range tx.TxOut {
		totalOut += int64(out.Value)
	}
	if totalIn < totalOut {
		return ruleError(ErrAmountOverflow, "transaction %v spends %d but inputs only total %d", tx.TxHash(), totalOut, totalIn)
	}

	applyOutputs(tx, spendHeight, false, view)
	return nil
}

func indexOfInput(tx *wire.MsgTx, target *wire.TxIn) int {
	for i, in := range tx.TxIn {
		if in == target {
			return i
		}
	}
	return -1
}

func applyOutputs(tx *wire.MsgTx, height int64, isCoinBase bool, view *utxoOverlay) {
	hash := tx.TxHash()
	for i, out := range tx.TxOut {
		op := wire.OutPoint{Hash: hash, Index: uint32(i)}
		view.add(op, &UTXOEntry{
			Amount: int64(out.Value),
			ScriptPubKey: out.ScriptPubKey,
			Height: height,
			IsCoinBase: isCoinBase,
		})
	}
}

// checkConnectBlock runs every transaction validation in order against
// view, the overlay reflecting the chain state right before block connects.
// It mutates view in place so callers can commit the result.
func checkConnectBlock(params *chaincfg.Params, block *wire.MsgBlock, height int64, view *utxoOverlay, cache *txscript.SigCache) error {
	for _, tx := range block.Transactions {
		if err := checkTransactionSanity(tx); err != nil {
			return err
		}
		if err := checkTransactionInputs(params, tx, height, view, cache); err != nil {
			return err
		}
	}
	return nil
}
