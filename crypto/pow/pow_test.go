// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import "testing"

func TestHashHeaderDeterministic(t *testing.T) {
	header := make([]byte, 80)
	for i := range header {
		header[i] = byte(i)
	}

	got, err := HashHeader(header)
	if err != nil {
		t.Fatalf("HashHeader: %v", err)
	}
	again, err := HashHeader(header)
	if err != nil {
		t.Fatalf("HashHeader: %v", err)
	}
	if got != again {
		t.Fatal("scrypt PoW hash is not deterministic for identical input")
	}

	header[0] ^= 0xFF
	changed, err := HashHeader(header)
	if err != nil {
		t.Fatalf("HashHeader: %v", err)
	}
	if changed == got {
		t.Fatal("expected differing headers to produce differing PoW hashes")
	}
}
