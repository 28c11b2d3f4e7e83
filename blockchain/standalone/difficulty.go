// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package standalone implements the compact-target encoding used by the
// proof-of-work difficulty field, independent of any particular chain
// state so it can be unit tested and reused by both the validator and the
// work service without importing the full blockchain package.
package standalone

import "math/big"

// CompactToBig converts a compact representation of a target (the "bits"
// header field) to a big.Int. The representation is similar to IEEE754
// floating point: a 24-bit coefficient and an 8-bit exponent, where the
// decoded value is coefficient * 256^(exponent-3).
func CompactToBig(bits uint32) *big.Int {
	exponent := bits >> 24
	coefficient := bits & 0x00ffffff

	// Bit 23 of the coefficient gets no special treatment: the whole
	// 24-bit coefficient is decoded as an unsigned magnitude.
	var target big.Int
	if exponent <= 3 {
		coefficient >>= 8 * (3 - exponent)
		target.SetInt64(int64(coefficient))
	} else {
		target.SetInt64(int64(coefficient))
		target.Lsh(&target, uint(8*(exponent-3)))
	}
	return &target
}

// BigToCompact converts a big.Int target to its compact representation,
// shifting the coefficient right one byte (and incrementing the exponent)
// whenever the high bit of the 24-bit coefficient would otherwise be set,
// to keep the sign bit clear.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	// The high bit of mantissa (0x00800000) would make the value read as
	// negative in the sign-magnitude encoding; shift right one more byte
	// and bump the exponent to keep it clear.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	return uint32(exponent<<24) | mantissa
}

// CheckProofOfWorkRange ensures a target built from a compact bits value is
// positive and does not exceed the maximum allowed value (powLimit).
func CheckProofOfWorkRange(bits uint32, powLimit *big.Int) bool {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return false
	}
	return target.Cmp(powLimit) <= 0
}

// HashToBig converts the bytes of a little-endian-interpreted hash into a
// big.Int, reversing them first since hashes are conventionally stored and
// compared as big-endian numbers for target comparisons.
func HashToBig(buf []byte) *big.Int {
	blen := len(buf)
	reversed := make([]byte, blen)
	for i := 0; i < blen; i++ {
		reversed[i] = buf[blen-1-i]
	}
	return new(big.Int).SetBytes(reversed)
}
