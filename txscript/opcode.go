// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the minimal pay-to-public-key-hash script
// evaluator this network requires: push opcodes plus
// OP_DUP, OP_HASH160, OP_EQUALVERIFY, and OP_CHECKSIG.
package txscript

const (
	// OP_0 pushes an empty byte array (used only as a padding opcode;
	// scripts this node builds never emit it).
	OP_0 = 0x00

	// OP_DATA_1 through OP_DATA_75 push between 1 and 75 literal bytes
	// that immediately follow the opcode.
	OP_DATA_1 = 0x01
	OP_DATA_75 = 0x4b

	// OP_PUSHDATA1/2/4 push a longer literal whose length follows the
	// opcode in 1/2/4 bytes, respectively. isPushOnlyOpcode counts them
	// as push opcodes, but the script_sig evaluator rejects them.
	OP_PUSHDATA1 = 0x4c
	OP_PUSHDATA2 = 0x4d
	OP_PUSHDATA4 = 0x4e

	// OP_DUP duplicates the top stack item.
	OP_DUP = 0x76

	// OP_HASH160 replaces the top stack item with hash160 of itself.
	OP_HASH160 = 0xa9

	// OP_EQUALVERIFY pops two items, compares them, and fails the script
	// if they are not equal.
	OP_EQUALVERIFY = 0x88

	// OP_CHECKSIG pops a pubkey and a signature and pushes true/false
	// depending on whether the signature is valid for the transaction's
	// SIGHASH-ALL preimage.
	OP_CHECKSIG = 0xac
)

// isPushOnlyOpcode reports whether op is one of the push opcodes this
// evaluator recognizes. script_sig must consist entirely of such opcodes.
func isPushOnlyOpcode(op byte) bool {
	return op <= OP_PUSHDATA4
}
