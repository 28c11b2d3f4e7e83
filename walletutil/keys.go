// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package walletutil

import (
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/icsicoin/node/txscript"
)

// GenerateAddress creates a fresh secp256k1 keypair and returns the
// P2PKH address for its compressed public key alongside the private
// key, so the caller can persist it before handing the address back
// to the operator.
func GenerateAddress() (addr string, priv *secp256k1.PrivateKey, err error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", nil, fmt.Errorf("walletutil: generating key: %w", err)
	}
	priv = secp256k1.PrivKeyFromBytes(seed[:])

	pubKeyHash := txscript.Hash160(priv.PubKey().SerializeCompressed())
	addr, err = EncodeAddress(pubKeyHash)
	if err != nil {
		return "", nil, err
	}
	return addr, priv, nil
}
