// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node wires the chain manager, stores, mempool, peer
// subsystems, work service, and RPC server together (C13) and owns
// graceful shutdown.
package node

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/icsicoin/node/chaincfg"
)

// Config holds every operator-tunable setting, parsed from the command
// line via go-flags; no config file is read.
type Config struct {
	DataDir    string `long:"datadir" description:"Directory to store blocks and UTXO data"`
	ListenAddr string `long:"listen" description:"P2P listen address" default:":9333"`
	RPCListen  string `long:"rpclisten" description:"RPC listen address" default:"127.0.0.1:9332"`
	RPCUser    string `long:"rpcuser" description:"RPC basic auth username"`
	RPCPass    string `long:"rpcpass" description:"RPC basic auth password"`
	ConnectTo  []string `long:"addpeer" description:"Peer address to dial at startup"`
	TestNet    bool   `long:"testnet" description:"Use the test network"`
	SimNet     bool   `long:"simnet" description:"Use the simulation test network"`
	MaxPeers   int    `long:"maxpeers" description:"Maximum number of peer connections" default:"125"`
}

// defaultDataDir returns ~/.icsicoin, a dotdir under the user's home
// directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".icsicoin")
}

// LoadConfig parses args (typically os.Args[1:]) into a Config with
// defaults applied.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{DataDir: defaultDataDir()}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// Params selects the chain parameters matching the config's network flags.
func (c *Config) Params() (*chaincfg.Params, error) {
	switch {
	case c.TestNet && c.SimNet:
		return nil, fmt.Errorf("node: --testnet and --simnet are mutually exclusive")
	case c.TestNet:
		return &chaincfg.TestNetParams, nil
	case c.SimNet:
		return &chaincfg.SimNetParams, nil
	default:
		return &chaincfg.MainNetParams, nil
	}
}
