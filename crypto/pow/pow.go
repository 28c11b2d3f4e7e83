// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow computes the scrypt-based proof-of-work hash used to gate
// block acceptance, matching the Litecoin-family parameterization this
// network must interoperate with.
package pow

import "golang.org/x/crypto/scrypt"

// Scrypt parameters: N=1024, r=1, p=1, 32-byte output, with the header
// bytes serving as both the password and the salt.
const (
	scryptN = 1024
	scryptR = 1
	scryptP = 1
	scryptKeyLen = 32
)

// HashHeader computes the proof-of-work hash of a serialized 80-byte block
// header. This is distinct from the header's canonical double-SHA-256
// hash: it is never used to identify the block, only to gate its
// acceptance against the difficulty target.
func HashHeader(headerBytes []byte) ([32]byte, error) {
	var out [32]byte
	digest, err := scrypt.Key(headerBytes, headerBytes, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return out, err
	}
	copy(out[:], digest)
	return out, nil
}
