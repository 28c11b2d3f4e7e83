// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/internal/node"
	"github.com/icsicoin/node/mempool"
	"github.com/icsicoin/node/netsync"
	"github.com/icsicoin/node/peer"
	"github.com/icsicoin/node/rpc"
)

// subsystemLoggers lists every package that exposes a UseLogger hook,
// each tagged with the subsystem name it should log under.
var subsystemLoggers = map[string]func(slog.Logger){
	"CHNS": blockchain.UseLogger,
	"MEMP": mempool.UseLogger,
	"PEER": peer.UseLogger,
	"SYNC": netsync.UseLogger,
	"RPCS": rpc.UseLogger,
	"NODE": node.UseLogger,
}

func initLogging(dataDir string) (func() error, error) {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	logFile := filepath.Join(logDir, "icsicoind.log")

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return nil, fmt.Errorf("creating log rotator: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, r)
	backend := slog.NewBackend(writer)
	for tag, use := range subsystemLoggers {
		logger := backend.Logger(tag)
		logger.SetLevel(slog.LevelInfo)
		use(logger)
	}
	return r.Close, nil
}

func run() error {
	cfg, err := node.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	closeLog, err := initLogging(cfg.DataDir)
	if err != nil {
		return err
	}
	defer closeLog()

	srv, err := node.New(cfg)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "icsicoind: %v\n", err)
		os.Exit(1)
	}
}
