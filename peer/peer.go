// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements one side of the P2P protocol engine (C10): the
// framed message loop for a single connection, its handshake state
// machine, and dispatch of decoded messages to caller-supplied handlers.
package peer

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/icsicoin/node/wire"
)

// log is the package-level logger, a no-op sink until UseLogger installs
// a real backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by peer sessions.
func UseLogger(logger slog.Logger) {
	log = logger
}

// State names a peer session's position in the handshake:
// Dialing -> Greeted -> Acked -> Active, or Closed on any protocol error.
type State int32

const (
	StateDialing State = iota
	StateGreeted
	StateAcked
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDialing:
		return "dialing"
	case StateGreeted:
		return "greeted"
	case StateAcked:
		return "acked"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// handshakeTimeout bounds each step of the version/verack exchange.
const handshakeTimeout = 10 * time.Second

// pingInterval is how often an active peer is sent a keepalive ping.
const pingInterval = 30 * time.Second

// idleTimeout disconnects a peer that has gone this long without
// producing any message.
const idleTimeout = 120 * time.Second

// outQueueLen bounds the outbound message queue per peer.
const outQueueLen = 100

// Listeners holds the callbacks a Peer invokes as it decodes messages.
// Every field may be nil; a nil listener means the message is dropped
// without logging.
type Listeners struct {
	OnVersion func(p *Peer, msg *wire.MsgVersion)
	OnVerAck func(p *Peer)
	OnGetAddr func(p *Peer)
	OnAddr func(p *Peer, msg *wire.MsgAddr)
	OnInv func(p *Peer, msg *wire.MsgInv)
	OnGetData func(p *Peer, msg *wire.MsgGetData)
	OnGetBlocks func(p *Peer, msg *wire.MsgGetBlocks)
	OnBlock func(p *Peer, msg *wire.MsgBlockPayload)
	OnTx func(p *Peer, msg *wire.MsgTxPayload)
	OnPing func(p *Peer, msg *wire.MsgPing)
	OnPong func(p *Peer, msg *wire.MsgPong)
}

// Config carries everything a Peer needs to run the handshake and tag
// its own version announcement.
type Config struct {
	Net wire.CurrencyNet
	ProtocolVersion uint32
	UserAgent string
	Services uint64
	NewestBlock func() (height uint32)
	Listeners Listeners
}

// Peer drives one connection's framed read/write loop and handshake.
type Peer struct {
	cfg *Config
	conn net.Conn
	addr string

	outbound bool
	state atomic.Int32

	height atomic.Int64
	userAgent atomic.Value // string
	lastHeard atomic.Int64 // unix nanos

	sendQueue chan wire.Message
	quit chan struct{}
	closeOnce sync.Once
	wg sync.WaitGroup
}

// NewOutboundPeer wraps conn as the dialing side of a new peer session.
func NewOutboundPeer(cfg *Config, conn net.Conn) *Peer {
	return newPeer(cfg, conn, true)
}

// NewInboundPeer wraps conn as the accepting side of a new peer session.
func NewInboundPeer(cfg *Config, conn net.Conn) *Peer {
	return newPeer(cfg, conn, false)
}

func newPeer(cfg *Config, conn net.Conn, outbound bool) *Peer {
	p := &Peer{
		cfg: cfg,
		conn: conn,
		addr: conn.RemoteAddr().String(),
		outbound: outbound,
		sendQueue: make(chan wire.Message, outQueueLen),
		quit: make(chan struct{}),
	}
	p.userAgent.Store("")
	p.touch()
	return p
}

// Addr returns the remote address this session is connected to.
func (p *Peer) Addr() string { return p.addr }

// Outbound reports whether this session was dialed locally.
func (p *Peer) Outbound() bool { return p.outbound }

// State returns the session's current handshake state.
func (p *Peer) State() State { return State(p.state.Load()) }

// Height returns the peer's last-announced chain height.
func (p *Peer) Height() int64 { return p.height.Load() }

// UserAgent returns the peer's announced user-agent string.
func (p *Peer) UserAgent() string { return p.userAgent.Load().(string) }

// LastHeard returns the time of the most recently received message.
func (p *Peer) LastHeard() time.Time {
	return time.Unix(0, p.lastHeard.Load())
}

func (p *Peer) touch() { p.lastHeard.Store(time.Now().UnixNano()) }

func (p *Peer) setState(s State) { p.state.Store(int32(s)) }

// Run performs the handshake and then services the connection until it
// is closed or the handshake fails. It blocks until the session ends.
func (p *Peer) Run() error {
	if err := p.handshake(); err != nil {
		p.setState(StateClosed)
		p.Disconnect()
		return err
	}
	p.setState(StateActive)

	p.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()
	go p.pingLoop()

	p.wg.Wait()
	return nil
}

// handshake runs the Dialing/Greeted/Acked version/verack exchange.
// The dialing side speaks first.
func (p *Peer) handshake() error {
	p.conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer p.conn.SetDeadline(time.Time{})

	local := &wire.NetAddress{}
	remote := &wire.NetAddress{}
	version := &wire.MsgVersion{
		ProtocolVersion: p.cfg.ProtocolVersion,
		Services: p.cfg.Services,
		Timestamp: uint64(time.Now().Unix()),
		AddrYou: *remote,
		AddrMe: *local,
		Nonce: 0,
		UserAgent: p.cfg.UserAgent,
		StartHeight: p.cfg.NewestBlock(),
		Relay: true,
	}

	if p.outbound {
		if err := p.writeMessage(version); err != nil {
			return fmt.Errorf("peer: sending version: %w", err)
		}
		p.setState(StateGreeted)
		if err := p.expectVersion(); err != nil {
			return err
		}
		if err := p.writeMessage(&wire.MsgVerAck{}); err != nil {
			return fmt.Errorf("peer: sending verack: %w", err)
		}
		if err := p.expectVerAck(); err != nil {
			return err
		}
	} else {
		if err := p.expectVersion(); err != nil {
			return err
		}
		p.setState(StateGreeted)
		if err := p.writeMessage(version); err != nil {
			return fmt.Errorf("peer: sending version: %w", err)
		}
		if err := p.expectVerAck(); err != nil {
			return err
		}
		if err := p.writeMessage(&wire.MsgVerAck{}); err != nil {
			return fmt.Errorf("peer: sending verack: %w", err)
		}
	}

	p.setState(StateAcked)
	return nil
}

func (p *Peer) expectVersion() error {
	msg, cmd, err := wire.ReadMessage(p.conn, p.cfg.ProtocolVersion, p.cfg.Net)
	if err != nil {
		return fmt.Errorf("peer: reading version: %w", err)
	}
	v, ok := msg.(*wire.MsgVersion)
	if !ok {
		return fmt.Errorf("peer: expected version, got %s", cmd)
	}
	p.height.Store(int64(v.StartHeight))
	p.userAgent.Store(v.UserAgent)
	p.touch()
	if p.cfg.Listeners.OnVersion != nil {
		p.cfg.Listeners.OnVersion(p, v)
	}
	return nil
}

func (p *Peer) expectVerAck() error {
	msg, cmd, err := wire.ReadMessage(p.conn, p.cfg.ProtocolVersion, p.cfg.Net)
	if err != nil {
		return fmt.Errorf("peer: reading verack: %w", err)
	}
	if _, ok := msg.(*wire.MsgVerAck); !ok {
		return fmt.Errorf("peer: expected verack, got %s", cmd)
	}
	p.touch()
	if p.cfg.Listeners.OnVerAck != nil {
		p.cfg.Listeners.OnVerAck(p)
	}
	return nil
}

func (p *Peer) writeMessage(msg wire.Message) error {
	return wire.WriteMessage(p.conn, msg, p.cfg.ProtocolVersion, p.cfg.Net)
}

// readLoop decodes frames in arrival order and dispatches them; any
// decode error or idle timeout closes the session.
func (p *Peer) readLoop() {
	defer p.wg.Done()
	defer p.Disconnect()

	for {
		p.conn.SetReadDeadline(time.Now().Add(idleTimeout))
		msg, cmd, err := wire.ReadMessage(p.conn, p.cfg.ProtocolVersion, p.cfg.Net)
		if err != nil {
			log.Debugf("peer %s: read error: %v", p.addr, err)
			return
		}
		p.touch()
		p.dispatch(cmd, msg)
	}
}

func (p *Peer) dispatch(cmd string, msg wire.Message) {
	l := p.cfg.Listeners
	switch m := msg.(type) {
	case *wire.MsgGetAddr:
		if l.OnGetAddr != nil {
			l.OnGetAddr(p)
		}
	case *wire.MsgAddr:
		if l.OnAddr != nil {
			l.OnAddr(p, m)
		}
	case *wire.MsgInv:
		if l.OnInv != nil {
			l.OnInv(p, m)
		}
	case *wire.MsgGetData:
		if l.OnGetData != nil {
			l.OnGetData(p, m)
		}
	case *wire.MsgGetBlocks:
		if l.OnGetBlocks != nil {
			l.OnGetBlocks(p, m)
		}
	case *wire.MsgBlockPayload:
		if l.OnBlock != nil {
			l.OnBlock(p, m)
		}
	case *wire.MsgTxPayload:
		if l.OnTx != nil {
			l.OnTx(p, m)
		}
	case *wire.MsgPing:
		p.QueueMessage(&wire.MsgPong{Nonce: m.Nonce})
		if l.OnPing != nil {
			l.OnPing(p, m)
		}
	case *wire.MsgPong:
		if l.OnPong != nil {
			l.OnPong(p, m)
		}
	default:
		log.Debugf("peer %s: unhandled command %q", p.addr, cmd)
	}
}

// writeLoop drains the send queue to the connection in FIFO order.
func (p *Peer) writeLoop() {
	defer p.wg.Done()
	defer p.Disconnect()

	for {
		select {
		case msg := <-p.sendQueue:
			if err := p.writeMessage(msg); err != nil {
				log.Debugf("peer %s: write error: %v", p.addr, err)
				return
			}
		case <-p.quit:
			return
		}
	}
}

// pingLoop sends a keepalive ping every pingInterval while active.
func (p *Peer) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.QueueMessage(&wire.MsgPing{Nonce: uint64(time.Now().UnixNano())})
		case <-p.quit:
			return
		}
	}
}

// QueueMessage enqueues msg for delivery; it drops the message with a
// log warning if the peer's send queue is full rather than blocking the
// caller's own processing loop.
func (p *Peer) QueueMessage(msg wire.Message) {
	select {
	case p.sendQueue <- msg:
	case <-p.quit:
	default:
		log.Warnf("peer %s: send queue full, dropping message", p.addr)
	}
}

// Disconnect closes the underlying connection and stops this session's
// loops; it is safe to call more than once or concurrently.
func (p *Peer) Disconnect() {
	p.closeOnce.Do(func() {
		p.setState(StateClosed)
		close(p.quit)
		p.conn.Close()
	})
}
