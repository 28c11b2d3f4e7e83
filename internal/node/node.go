// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"
	"net"
	"path/filepath"
	"sync"

	"github.com/icsicoin/node/addrmgr"
	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chaincfg"
	"github.com/icsicoin/node/connmgr"
	"github.com/icsicoin/node/database"
	"github.com/icsicoin/node/mempool"
	"github.com/icsicoin/node/mining"
	"github.com/icsicoin/node/netsync"
	"github.com/icsicoin/node/peer"
	"github.com/icsicoin/node/rpc"
	"github.com/icsicoin/node/wire"
)

// protocolVersion is this implementation's P2P version number,
// announced in every version handshake.
const protocolVersion = 1

// userAgent identifies this implementation to its peers.
const userAgent = "/icsicoin:0.1.0/"

// Server owns every C5-C12 component and the lifecycle of the process.
type Server struct {
	cfg *Config
	params *chaincfg.Params

	blockStore *database.BlockStore
	blockIndex *database.BlockIndex
	utxoSet *database.UTXOSet
	chain *blockchain.BlockChain
	pool *mempool.TxPool
	miner *mining.Service
	addrs *addrmgr.AddrManager
	conns *connmgr.ConnManager
	peers *peer.Registry
	sync *netsync.Manager
	rpcServer *rpc.Server

	listener net.Listener
	quit chan struct{}
	wg sync.WaitGroup
}

// New assembles every component per cfg, bootstrapping the genesis
// block on first run.
func New(cfg *Config) (*Server, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	blockStore, err := database.NewBlockStore(filepath.Join(cfg.DataDir, "blocks"))
	if err != nil {
		return nil, fmt.Errorf("node: opening block store: %w", err)
	}
	blockIndex, err := database.NewBlockIndex(filepath.Join(cfg.DataDir, "index"))
	if err != nil {
		return nil, fmt.Errorf("node: opening block index: %w", err)
	}
	utxoSet, err := database.NewUTXOSet(filepath.Join(cfg.DataDir, "utxo"))
	if err != nil {
		return nil, fmt.Errorf("node: opening utxo set: %w", err)
	}

	chain, err := blockchain.New(params, blockStore, blockIndex, utxoSet)
	if err != nil {
		return nil, fmt.Errorf("node: initializing chain: %w", err)
	}

	pool := mempool.New(filepath.Join(cfg.DataDir, "mempool.dat"), utxoSet, params.CoinbaseMaturity, chain.BestHeight())
	miner := mining.New(chain, params, pool)

	s := &Server{
		cfg: cfg,
		params: params,
		blockStore: blockStore,
		blockIndex: blockIndex,
		utxoSet: utxoSet,
		chain: chain,
		pool: pool,
		miner: miner,
		addrs: addrmgr.New(),
		conns: connmgr.New(nil),
		peers: peer.NewRegistry(),
		sync: netsync.New(chain),
		quit: make(chan struct{}),
	}

	s.rpcServer = rpc.New(rpc.Config{ListenAddr: cfg.RPCListen, User: cfg.RPCUser, Pass: cfg.RPCPass})
	rpc.RegisterAll(s.rpcServer, &rpc.Deps{
		Chain: chain,
		Pool: pool,
		Miner: miner,
		UTXOs: utxoSet,
		Conns: s.conns,
		Peers: s.peers,
		Version: userAgent,
		PeerVer: protocolVersion,
		Stop: func() { s.Stop() },
	})

	return s, nil
}

// Start opens the P2P listener, begins dialing configured peers, and
// starts the RPC server and supervisory loops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("node: listening on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.addrs.AddLocalAddress(s.cfg.ListenAddr)

	s.wg.Add(1)
	go s.acceptLoop()

	for _, addr := range s.cfg.ConnectTo {
		s.dial(addr)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sync.Watchdog(s.quit)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		netsync.RebroadcastLoop(s.quit, s.rebroadcastMempool)
	}()

	if err := s.rpcServer.Start(); err != nil {
		return fmt.Errorf("node: starting rpc server: %w", err)
	}

	log.Infof("node: listening for peers on %s, rpc on %s", s.cfg.ListenAddr, s.cfg.RPCListen)
	return nil
}

func (s *Server) rebroadcastMempool() {
	items := make([]wire.InvVect, 0)
	for _, tx := range s.pool.Snapshot() {
		items = append(items, wire.InvVect{Type: wire.InvTypeTx, Hash: tx.TxHash()})
	}
	if len(items) == 0 {
		return
	}
	msg := &wire.MsgInv{Items: items}
	for _, p := range s.peers.All() {
		p.QueueMessage(msg)
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				log.Warnf("node: accept error: %v", err)
				continue
			}
		}
		addr := conn.RemoteAddr().String()
		if _, err := s.conns.Accept(addr, conn); err != nil {
			log.Debugf("node: refused inbound connection from %s: %v", addr, err)
			continue
		}
		s.startPeer(peer.NewInboundPeer(s.peerConfig(), conn))
	}
}

func (s *Server) dial(addr string) {
	if _, ok := s.peers.Get(addr); ok {
		return
	}
	req, err := s.conns.Connect(addr)
	if err != nil {
		log.Debugf("node: dial to %s failed: %v", addr, err)
		return
	}
	s.startPeer(peer.NewOutboundPeer(s.peerConfig(), req.Conn))
}

func (s *Server) peerConfig() *peer.Config {
	d := &dispatcher{chain: s.chain, pool: s.pool, sync: s.sync, peers: s.peers,
		addrs: func() []*wire.NetAddress { return s.addrs.Addresses(1000) },
		addNode: func(addr string) { go s.dial(addr) },
	}
	return &peer.Config{
		Net: s.netMagic(),
		ProtocolVersion: protocolVersion,
		UserAgent: userAgent,
		NewestBlock: func() uint32 { return uint32(s.chain.BestHeight()) },
		Listeners: d.listeners(),
	}
}

func (s *Server) netMagic() wire.CurrencyNet {
	switch s.params.Net {
	case wire.TestNet, wire.SimNet:
		return s.params.Net
	default:
		return wire.MainNet
	}
}

func (s *Server) startPeer(p *peer.Peer) {
	s.peers.Add(p)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.peers.Remove(p.Addr())
		defer s.conns.Disconnect(p.Addr())
		defer s.sync.RemovePeer(p.Addr())
		if err := p.Run(); err != nil {
			log.Debugf("node: peer %s session ended: %v", p.Addr(), err)
		}
	}()
}

// Stop closes the quit channel (ending the supervisory loops), stops the
// RPC server, closes the P2P listener, disconnects every peer, waits for
// all node goroutines, and then closes every persistent store, in that
// order.
func (s *Server) Stop() {
	select {
	case <-s.quit:
		return
	default:
		close(s.quit)
	}

	s.rpcServer.Stop()
	if s.listener != nil {
		s.listener.Close()
	}
	for _, p := range s.peers.All() {
		p.Disconnect()
	}
	s.wg.Wait()

	s.utxoSet.Close()
	s.blockIndex.Close()
	s.blockStore.Close()
}
