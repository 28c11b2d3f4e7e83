// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/icsicoin/node/wire"
)

func buildScriptSig(sigDER []byte, pubKey []byte) []byte {
	out := make([]byte, 0, len(sigDER)+len(pubKey)+2)
	out = append(out, byte(len(sigDER)))
	out = append(out, sigDER...)
	out = append(out, byte(len(pubKey)))
	out = append(out, pubKey...)
	return out
}

func TestP2PKHRoundTrip(t *testing.T) {
	priv := secp256k1.PrivKeyFromBytes([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
		0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
	})
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	pkHash := Hash160(pubKeyBytes)

	scriptPubKey, err := PayToPubKeyHashScript(pkHash)
	if err != nil {
		t.Fatalf("PayToPubKeyHashScript: %v", err)
	}
	if !IsPayToPubKeyHash(scriptPubKey) {
		t.Fatal("expected generated script to be detected as P2PKH")
	}
	if got := ExtractPubKeyHash(scriptPubKey); string(got) != string(pkHash) {
		t.Fatalf("ExtractPubKeyHash = %x, want %x", got, pkHash)
	}

	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0},
		}},
		TxOut: []*wire.TxOut{{Value: 100, ScriptPubKey: []byte{0x6a}}},
	}

	sigHash, err := SignatureHash(tx, 0, scriptPubKey)
	if err != nil {
		t.Fatalf("SignatureHash: %v", err)
	}
	sig := ecdsa.Sign(priv, sigHash[:])
	sigDER := append(sig.Serialize(), sigHashAll)

	tx.TxIn[0].SignatureScript = buildScriptSig(sigDER, pubKeyBytes)

	if err := Verify(tx.TxIn[0].SignatureScript, scriptPubKey, tx, 0, nil); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestP2PKHWrongKeyFails(t *testing.T) {
	priv := secp256k1.PrivKeyFromBytes([]byte{
		0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28,
		0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f, 0x30,
		0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38,
		0x39, 0x3a, 0x3b, 0x3c, 0x3d, 0x3e, 0x3f, 0x40,
	})
	other := secp256k1.PrivKeyFromBytes([]byte{
		0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
		0x49, 0x4a, 0x4b, 0x4c, 0x4d, 0x4e, 0x4f, 0x50,
		0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
		0x59, 0x5a, 0x5b, 0x5c, 0x5d, 0x5e, 0x5f, 0x60,
	})

	pkHash := Hash160(priv.PubKey().SerializeCompressed())
	scriptPubKey, _ := PayToPubKeyHashScript(pkHash)

	tx := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 0}}},
		TxOut:   []*wire.TxOut{{Value: 1, ScriptPubKey: []byte{0x6a}}},
	}
	sigHash, _ := SignatureHash(tx, 0, scriptPubKey)
	sig := ecdsa.Sign(other, sigHash[:])
	sigDER := append(sig.Serialize(), sigHashAll)
	tx.TxIn[0].SignatureScript = buildScriptSig(sigDER, other.PubKey().SerializeCompressed())

	if err := Verify(tx.TxIn[0].SignatureScript, scriptPubKey, tx, 0, nil); err == nil {
		t.Fatal("expected verification to fail for mismatched pubkey hash")
	}
}

func TestScriptSigMustBePushOnly(t *testing.T) {
	scriptSig := []byte{OP_DUP} // non-push opcode
	scriptPubKey := []byte{OP_CHECKSIG}
	tx := &wire.MsgTx{TxIn: []*wire.TxIn{{}}, TxOut: []*wire.TxOut{{}}}
	if err := Verify(scriptSig, scriptPubKey, tx, 0, nil); err == nil {
		t.Fatal("expected non-push script_sig to be rejected")
	}
}
