// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package walletutil

import "testing"

func TestAddressRoundTrip(t *testing.T) {
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = byte(i)
	}

	addr, err := EncodeAddress(hash)
	if err != nil {
		t.Fatalf("EncodeAddress: %v", err)
	}

	got, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("decoded hash len = %d, want 20", len(got))
	}
	for i := range hash {
		if got[i] != hash[i] {
			t.Fatalf("decoded hash mismatch at byte %d", i)
		}
	}
}

func TestDecodeAddressRejectsBadChecksum(t *testing.T) {
	hash := make([]byte, 20)
	addr, _ := EncodeAddress(hash)
	tampered := addr[:len(addr)-1] + "x"
	if _, err := DecodeAddress(tampered); err == nil {
		t.Fatal("expected tampered address to fail checksum")
	}
}

func TestGenerateAddressProducesValidAddress(t *testing.T) {
	addr, priv, err := GenerateAddress()
	if err != nil {
		t.Fatalf("GenerateAddress: %v", err)
	}
	if priv == nil {
		t.Fatal("expected non-nil private key")
	}
	if _, err := DecodeAddress(addr); err != nil {
		t.Fatalf("generated address failed to decode: %v", err)
	}
}
