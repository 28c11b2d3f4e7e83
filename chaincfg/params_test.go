// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestGenesisHashesDistinct(t *testing.T) {
	if MainNetParams.GenesisHash == TestNetParams.GenesisHash {
		t.Fatal("mainnet and testnet must not share a genesis hash")
	}
	if MainNetParams.GenesisHash == SimNetParams.GenesisHash {
		t.Fatal("mainnet and simnet must not share a genesis hash")
	}
}

func TestGenesisHashMatchesHeader(t *testing.T) {
	for _, p := range []Params{MainNetParams, TestNetParams, SimNetParams} {
		if got := p.GenesisBlock.BlockHash(); got != p.GenesisHash {
			t.Fatalf("%s: genesis hash mismatch - got %v, want %v\nblock: %v",
				p.Name, got, p.GenesisHash, spew.Sdump(p.GenesisBlock))
		}
	}
}
