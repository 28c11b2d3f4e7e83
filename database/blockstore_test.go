// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"testing"
)

func TestBlockStoreRoundTrip(t *testing.T) {
	store, err := NewBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	defer store.Close()

	payload := []byte("a serialized block goes here")
	loc, err := store.WriteBlock(payload)
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	got, err := store.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("ReadBlock = %q, want %q", got, payload)
	}
}

func TestBlockStoreRollover(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBlockStore(dir)
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	defer store.Close()

	big := make([]byte, maxBlockFileSize-10)
	if _, err := store.WriteBlock(big); err != nil {
		t.Fatalf("WriteBlock big: %v", err)
	}
	loc, err := store.WriteBlock([]byte("tips the file over"))
	if err != nil {
		t.Fatalf("WriteBlock rollover: %v", err)
	}
	if loc.File != 1 {
		t.Fatalf("expected rollover to file 1, got file %d", loc.File)
	}
}
