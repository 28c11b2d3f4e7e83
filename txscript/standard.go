// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// PayToPubKeyHashScript builds the standard P2PKH script_pubkey:
//
//	OP_DUP OP_HASH160 <20-byte pubKeyHash> OP_EQUALVERIFY OP_CHECKSIG
func PayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != 20 {
		return nil, ErrScript(ErrInvalidPubKeyHash, "pubkey hash must be 20 bytes")
	}

	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, byte(len(pubKeyHash)))
	script = append(script, pubKeyHash...)
	script = append(script, OP_EQUALVERIFY, OP_CHECKSIG)
	return script, nil
}

// ExtractPubKeyHash returns the 20-byte hash from a standard P2PKH
// script_pubkey, or nil if script does not match that exact form.
func ExtractPubKeyHash(script []byte) []byte {
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == 20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}
	return nil
}

// IsPayToPubKeyHash reports whether script is a standard P2PKH
// script_pubkey.
func IsPayToPubKeyHash(script []byte) bool {
	return ExtractPubKeyHash(script) != nil
}
