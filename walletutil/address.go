// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package walletutil implements the base58check address encoding
// getnewaddress and getbalance need, layered over the
// secp256k1 keys and P2PKH scripts defined in txscript.
package walletutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/decred/base58"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/txscript"
)

// ErrChecksumMismatch indicates a base58check payload's trailing
// checksum did not match its recomputed value.
var ErrChecksumMismatch = errors.New("walletutil: checksum mismatch")

// AddrIDPubKeyHash is the one-byte version prefix for a P2PKH address.
const AddrIDPubKeyHash byte = 0x30

const checksumLen = 4

func checksum(b []byte) []byte {
	h := chainhash.HashB(b)
	return h[:checksumLen]
}

// EncodeAddress base58check-encodes a 20-byte pubkey hash as a P2PKH
// address string.
func EncodeAddress(pubKeyHash []byte) (string, error) {
	if len(pubKeyHash) != 20 {
		return "", fmt.Errorf("walletutil: pubkey hash must be 20 bytes, got %d", len(pubKeyHash))
	}
	payload := make([]byte, 0, 1+20+checksumLen)
	payload = append(payload, AddrIDPubKeyHash)
	payload = append(payload, pubKeyHash...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload), nil
}

// DecodeAddress reverses EncodeAddress, validating the version byte
// and checksum.
func DecodeAddress(addr string) ([]byte, error) {
	decoded := base58.Decode(addr)
	if len(decoded) != 1+20+checksumLen {
		return nil, fmt.Errorf("walletutil: malformed address %q", addr)
	}
	if decoded[0] != AddrIDPubKeyHash {
		return nil, fmt.Errorf("walletutil: unexpected address version 0x%02x", decoded[0])
	}
	payload := decoded[:1+20]
	if !bytes.Equal(checksum(payload), decoded[1+20:]) {
		return nil, ErrChecksumMismatch
	}
	return payload[1:], nil
}

// PayToAddrScript builds the P2PKH script_pubkey locking an output to
// addr.
func PayToAddrScript(addr string) ([]byte, error) {
	hash, err := DecodeAddress(addr)
	if err != nil {
		return nil, err
	}
	return txscript.PayToPubKeyHashScript(hash)
}
