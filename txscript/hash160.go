// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates ripemd160(sha256(b)), a single round of SHA-256
// (unlike the double round used for block/transaction hashes), the
// digest used to identify a public key in a pay-to-public-key-hash script.
func Hash160(buf []byte) []byte {
	single := sha256.Sum256(buf)
	return calcHash(single[:], ripemd160.New())
}
