// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"

	"github.com/icsicoin/node/chaincfg"
)

func TestSubsidyHalves(t *testing.T) {
	params := &chaincfg.Params{BaseSubsidy: 50 * 1e8, SubsidyHalvingInterval: 210000}

	if got := subsidyAt(params, 0); got != 50*1e8 {
		t.Fatalf("subsidy at height 0 = %d, want %d", got, 50*1e8)
	}
	if got := subsidyAt(params, 210000); got != 25*1e8 {
		t.Fatalf("subsidy at first halving = %d, want %d", got, 25*1e8)
	}
	if got := subsidyAt(params, 420000); got != 1250000000 {
		t.Fatalf("subsidy at second halving = %d, want %d", got, 1250000000)
	}
}
