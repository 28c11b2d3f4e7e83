// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the in-memory pool of accepted unconfirmed
// transactions (C8): admission, conflict detection, and a hex-list
// snapshot persisted to disk after every mutation.
package mempool

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/decred/slog"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// log is the package-level logger, a no-op sink until UseLogger installs a
// real backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by the mempool.
func UseLogger(logger slog.Logger) {
	log = logger
}

// maxEntries caps how many transactions the pool will hold at once.
const maxEntries = 10000

// TxPool is the hash-indexed set of accepted unconfirmed transactions.
type TxPool struct {
	mtx sync.RWMutex

	snapshotPath string
	utxo blockchain.UTXOViewer
	maturity int64

	txs map[chainhash.Hash]*wire.MsgTx
	spentBy map[wire.OutPoint]chainhash.Hash
	tipHeight int64
}

// New creates a TxPool whose snapshot lives at snapshotPath, backed by
// utxo for resolving confirmed prevouts. tipHeight is the chain's current
// height, used to evaluate coinbase maturity for confirmed inputs.
func New(snapshotPath string, utxo blockchain.UTXOViewer, maturity int64, tipHeight int64) *TxPool {
	p := &TxPool{
		snapshotPath: snapshotPath,
		utxo: utxo,
		maturity: maturity,
		txs: make(map[chainhash.Hash]*wire.MsgTx),
		spentBy: make(map[wire.OutPoint]chainhash.Hash),
		tipHeight: tipHeight,
	}
	if err := p.loadSnapshot(); err != nil {
		log.Warnf("mempool: failed to load snapshot %s: %v", snapshotPath, err)
	}
	return p
}

// SetTipHeight updates the height used for coinbase-maturity checks; the
// node's message dispatcher calls this after each block it connects.
func (p *TxPool) SetTipHeight(height int64) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.tipHeight = height
}

// Size returns the number of transactions currently held.
func (p *TxPool) Size() int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return len(p.txs)
}

// Have reports whether hash is already in the pool.
func (p *TxPool) Have(hash chainhash.Hash) bool {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	_, ok := p.txs[hash]
	return ok
}

// Get returns the pooled transaction for hash, if present.
func (p *TxPool) Get(hash chainhash.Hash) (*wire.MsgTx, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	tx, ok := p.txs[hash]
	return tx, ok
}

// Snapshot returns every pooled transaction in admission order undefined;
// callers needing a stable order should sort by hash themselves.
func (p *TxPool) Snapshot() []*wire.MsgTx {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	out := make([]*wire.MsgTx, 0, len(p.txs))
	for _, tx := range p.txs {
		out = append(out, tx)
	}
	return out
}

// fetchView resolves a prevout either from the mempool itself (zero-conf
// chaining) or from the confirmed UTXO store.
func (p *TxPool) fetchView(op wire.OutPoint) (*blockchain.UTXOEntry, error) {
	if parent, ok := p.txs[op.Hash]; ok {
		if int(op.Index) >= len(parent.TxOut) {
			return nil, nil
		}
		out := parent.TxOut[op.Index]
		return &blockchain.UTXOEntry{
			Amount: int64(out.Value),
			ScriptPubKey: out.ScriptPubKey,
			Height: p.tipHeight + 1,
			IsCoinBase: false,
		}, nil
	}
	return p.utxo.FetchUTXO(op)
}

// Admit validates tx and, on success, adds it to the pool and rewrites
// the snapshot: reject if already present, reject any input
// conflicting with an existing pooled transaction, and every input must
// resolve (confirmed or zero-conf) with a satisfied coinbase-maturity
// check, and outputs may not exceed inputs. Input scripts are not
// evaluated here; they are verified when a block carrying the
// transaction is connected. A pool already holding maxEntries
// transactions rejects the new one.
func (p *TxPool) Admit(tx *wire.MsgTx) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	hash := tx.TxHash()
	if _, ok := p.txs[hash]; ok {
		return fmt.Errorf("mempool: transaction %v already present", hash)
	}
	if len(p.txs) >= maxEntries {
		return fmt.Errorf("mempool: pool is full (%d transactions)", maxEntries)
	}

	seen := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, in := range tx.TxIn {
		if _, dup := seen[in.PreviousOutPoint]; dup {
			return fmt.Errorf("mempool: transaction %v double-spends its own input %v", hash, in.PreviousOutPoint)
		}
		seen[in.PreviousOutPoint] = struct{}{}

		if conflict, ok := p.spentBy[in.PreviousOutPoint]; ok {
			return fmt.Errorf("mempool: input %v conflicts with pooled transaction %v", in.PreviousOutPoint, conflict)
		}
	}

	var totalIn int64
	for _, in := range tx.TxIn {
		entry, err := p.fetchView(in.PreviousOutPoint)
		if err != nil {
			return fmt.Errorf("mempool: utxo lookup for %v failed: %w", in.PreviousOutPoint, err)
		}
		if entry == nil {
			return fmt.Errorf("mempool: output %v not found", in.PreviousOutPoint)
		}
		if entry.IsCoinBase && p.tipHeight+1 < entry.Height+p.maturity {
			return fmt.Errorf("mempool: input %v spends immature coinbase", in.PreviousOutPoint)
		}
		totalIn += entry.Amount
	}

	var totalOut int64
	for _, out := range tx.TxOut {
		totalOut += int64(out.Value)
	}
	if totalIn < totalOut {
		return fmt.Errorf("mempool: transaction %v spends %d but only has %d in inputs", hash, totalOut, totalIn)
	}

	p.txs[hash] = tx
	for _, in := range tx.TxIn {
		p.spentBy[in.PreviousOutPoint] = hash
	}

	if err := p.writeSnapshot(); err != nil {
		log.Warnf("mempool: failed to persist snapshot: %v", err)
	}
	return nil
}

// Evict removes hash from the pool and rewrites the snapshot.
func (p *TxPool) Evict(hash chainhash.Hash) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.removeLocked(hash)
	if err := p.writeSnapshot(); err != nil {
		log.Warnf("mempool: failed to persist snapshot: %v", err)
	}
}

// RemoveConfirmed drops every transaction in block from the pool without
// rewriting the snapshot per-transaction; called once per connected block.
func (p *TxPool) RemoveConfirmed(block *wire.MsgBlock) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for _, tx := range block.Transactions {
		p.removeLocked(tx.TxHash())
	}
	if err := p.writeSnapshot(); err != nil {
		log.Warnf("mempool: failed to persist snapshot: %v", err)
	}
}

func (p *TxPool) removeLocked(hash chainhash.Hash) {
	tx, ok := p.txs[hash]
	if !ok {
		return
	}
	for _, in := range tx.TxIn {
		delete(p.spentBy, in.PreviousOutPoint)
	}
	delete(p.txs, hash)
}

// writeSnapshot rewrites the hex-list snapshot file with every pooled
// transaction, one hex-encoded line each.
func (p *TxPool) writeSnapshot() error {
	if p.snapshotPath == "" {
		return nil
	}
	f, err := os.Create(p.snapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, tx := range p.txs {
		fmt.Fprintln(w, hex.EncodeToString(tx.Bytes()))
	}
	return w.Flush()
}

// loadSnapshot reads the hex-list snapshot file, skipping and warning on
// any line that fails to decode rather than aborting the whole load.
func (p *TxPool) loadSnapshot() error {
	if p.snapshotPath == "" {
		return nil
	}
	f, err := os.Open(p.snapshotPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw, err := hex.DecodeString(scanner.Text())
		if err != nil {
			log.Warnf("mempool: skipping unparseable snapshot line: %v", err)
			continue
		}
		tx := new(wire.MsgTx)
		if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
			log.Warnf("mempool: skipping undecodable snapshot transaction: %v", err)
			continue
		}
		hash := tx.TxHash()
		p.txs[hash] = tx
		for _, in := range tx.TxIn {
			p.spentBy[in.PreviousOutPoint] = hash
		}
		if len(p.txs) >= maxEntries {
			break
		}
	}
	return scanner.Err()
}
