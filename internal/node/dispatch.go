// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/mempool"
	"github.com/icsicoin/node/netsync"
	"github.com/icsicoin/node/peer"
	"github.com/icsicoin/node/wire"
)

// syncPeerAdapter satisfies netsync.SyncPeer over a *peer.Peer.
type syncPeerAdapter struct{ p *peer.Peer }

func (a syncPeerAdapter) ID() string { return a.p.Addr() }
func (a syncPeerAdapter) Height() int64 { return a.p.Height() }
func (a syncPeerAdapter) Disconnect() { a.p.Disconnect() }
func (a syncPeerAdapter) SendGetBlocks(locator []chainhash.Hash) {
	a.p.QueueMessage(&wire.MsgGetBlocks{Locator: locator})
}
func (a syncPeerAdapter) SendGetData(hashes []chainhash.Hash) {
	items := make([]wire.InvVect, len(hashes))
	for i, h := range hashes {
		items[i] = wire.InvVect{Type: wire.InvTypeBlock, Hash: h}
	}
	a.p.QueueMessage(&wire.MsgGetData{Items: items})
}

// dispatcher wires one peer session's decoded messages into the chain
// manager, mempool, and sync manager.
type dispatcher struct {
	chain *blockchain.BlockChain
	pool *mempool.TxPool
	sync *netsync.Manager
	peers *peer.Registry
	addrs func() []*wire.NetAddress
	addNode func(addr string)
}

func (d *dispatcher) listeners() peer.Listeners {
	return peer.Listeners{
		OnVerAck: func(p *peer.Peer) {
			d.sync.AddPeer(syncPeerAdapter{p})
			p.QueueMessage(&wire.MsgGetAddr{})
			p.QueueMessage(&wire.MsgGetBlocks{Locator: d.chain.Locator()})
		},
		OnGetAddr: func(p *peer.Peer) {
			p.QueueMessage(&wire.MsgAddr{AddrList: d.addrs()})
		},
		OnAddr: func(p *peer.Peer, msg *wire.MsgAddr) {
			for _, na := range msg.AddrList {
				d.addNode(na.IP.String())
			}
		},
		OnInv: func(p *peer.Peer, msg *wire.MsgInv) {
			if !d.sync.ShouldActOn(p.Addr()) {
				return
			}
			var want []wire.InvVect
			for _, item := range msg.Items {
				switch item.Type {
				case wire.InvTypeBlock:
					if !d.chain.Have(item.Hash) {
						want = append(want, item)
					}
				case wire.InvTypeTx:
					if !d.pool.Have(item.Hash) {
						want = append(want, item)
					}
				}
			}
			if len(want) > 0 {
				p.QueueMessage(&wire.MsgGetData{Items: want})
			}
		},
		OnGetData: func(p *peer.Peer, msg *wire.MsgGetData) {
			for _, item := range msg.Items {
				switch item.Type {
				case wire.InvTypeTx:
					if tx, ok := d.pool.Get(item.Hash); ok {
						p.QueueMessage(&wire.MsgTxPayload{Tx: tx})
					}
				case wire.InvTypeBlock:
					if block, _, err := d.chain.Block(item.Hash); err == nil {
						p.QueueMessage(&wire.MsgBlockPayload{Block: block})
					}
				}
			}
		},
		OnGetBlocks: func(p *peer.Peer, msg *wire.MsgGetBlocks) {
			hashes := d.chain.LocateAfter(msg.Locator, 500)
			items := make([]wire.InvVect, len(hashes))
			for i, h := range hashes {
				items[i] = wire.InvVect{Type: wire.InvTypeBlock, Hash: h}
			}
			if len(items) > 0 {
				p.QueueMessage(&wire.MsgInv{Items: items})
			}
		},
		OnBlock: func(p *peer.Peer, msg *wire.MsgBlockPayload) {
			result, err := d.chain.Ingest(msg.Block)
			hash := msg.Block.BlockHash()
			switch {
			case err != nil:
				log.Warnf("dispatch: rejected block %v from %s: %v", hash, p.Addr(), err)
			case result == blockchain.ResultOrphan:
				missing, ok := d.sync.RootOrphanRequest(hash)
				if ok {
					p.QueueMessage(&wire.MsgGetData{Items: []wire.InvVect{{Type: wire.InvTypeBlock, Hash: missing}}})
				}
			case result == blockchain.ResultExtendedMain || result == blockchain.ResultReorganized:
				d.pool.RemoveConfirmed(msg.Block)
				d.pool.SetTipHeight(d.chain.BestHeight())
				d.broadcastExcept(p, &wire.MsgInv{Items: []wire.InvVect{{Type: wire.InvTypeBlock, Hash: hash}}})
				d.sync.NotifyConnected(false)
			}
		},
		OnTx: func(p *peer.Peer, msg *wire.MsgTxPayload) {
			if err := d.pool.Admit(msg.Tx); err != nil {
				log.Debugf("dispatch: rejected tx %v from %s: %v", msg.Tx.TxHash(), p.Addr(), err)
				return
			}
			d.broadcastExcept(p, &wire.MsgInv{Items: []wire.InvVect{{Type: wire.InvTypeTx, Hash: msg.Tx.TxHash()}}})
		},
	}
}

func (d *dispatcher) broadcastExcept(exclude *peer.Peer, msg wire.Message) {
	for _, p := range d.peers.All() {
		if p == exclude {
			continue
		}
		p.QueueMessage(msg)
	}
}
