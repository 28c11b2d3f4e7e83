// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc implements the operator-facing JSON-RPC surface:
// HTTP POST and a websocket upgrade, both backed by the same method
// table, guarded by constant-time HTTP basic auth.
package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/icsicoin/node/rpc/jsonrpc/types"
)

// log is the package-level logger, a no-op sink until UseLogger installs
// a real backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by the RPC server.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Handler answers a single RPC method call given its raw params.
type Handler func(params []any) (any, error)

// Config carries the HTTP listen address and basic-auth credentials.
type Config struct {
	ListenAddr string
	User string
	Pass string
}

// Server dispatches JSON-RPC 1.0 requests to a registered method table.
type Server struct {
	cfg Config
	methods map[string]Handler
	upgrader websocket.Upgrader
	srv *http.Server
}

// New creates a Server with no methods registered; call Register for
// every method before Start.
func New(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		methods: make(map[string]Handler),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Register adds method to the dispatch table.
func (s *Server) Register(method string, h Handler) {
	s.methods[method] = h
}

func (s *Server) checkAuth(r *http.Request) bool {
	if s.cfg.User == "" && s.cfg.Pass == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.Pass)) == 1
	return userOK && passOK
}

func (s *Server) dispatch(req types.Request) types.Response {
	h, ok := s.methods[req.Method]
	if !ok {
		return types.Response{ID: req.ID, Error: &types.Error{Code: -32601, Message: "method not found"}}
	}
	result, err := h(req.Params)
	if err != nil {
		return types.Response{ID: req.ID, Error: &types.Error{Code: -1, Message: err.Error()}}
	}
	return types.Response{ID: req.ID, Result: result}
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.checkAuth(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="icsicoin rpc"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	resp := s.dispatch(req)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.checkAuth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("rpc: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req types.Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := s.dispatch(req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

// Start launches the HTTP and websocket listener in the background.
// Call Stop to shut it down.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHTTP)
	mux.HandleFunc("/ws", s.handleWS)

	s.srv = &http.Server{Addr: s.cfg.ListenAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Infof("rpc: listening on %s", s.cfg.ListenAddr)
	return nil
}

// Stop closes the listener and any open connections immediately.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}
