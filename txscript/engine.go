// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/wire"
)

// sigHashAll is the only sighash type this node supports.
const sigHashAll = 1

// stack is a small byte-slice stack used by the evaluator.
type stack [][]byte

func (s *stack) push(v []byte) { *s = append(*s, v) }

func (s *stack) pop() ([]byte, error) {
	n := len(*s)
	if n == 0 {
		return nil, ErrScript(ErrStackUnderflow, "pop on empty stack")
	}
	v := (*s)[n-1]
	*s = (*s)[:n-1]
	return v, nil
}

func (s *stack) top() ([]byte, error) {
	n := len(*s)
	if n == 0 {
		return nil, ErrScript(ErrStackUnderflow, "top of empty stack")
	}
	return (*s)[n-1], nil
}

func asBool(v []byte) bool {
	for i, b := range v {
		if b != 0 {
			// Negative zero (-0) encoded as the sign bit alone on the
			// final byte still counts as false.
			if i == len(v)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// execPushOnly runs a push-only script (script_sig) against s, returning an
// error if any non-push opcode is encountered.
func execPushOnly(script []byte, s *stack) error {
	for i := 0; i < len(script); {
		op := script[i]
		switch {
		case op == OP_0:
			s.push(nil)
			i++
		case op >= OP_DATA_1 && op <= OP_DATA_75:
			n := int(op)
			if i+1+n > len(script) {
				return ErrScript(ErrNotPushOnly, "push past end of script")
			}
			s.push(script[i+1 : i+1+n])
			i += 1 + n
		case op == OP_PUSHDATA1 || op == OP_PUSHDATA2 || op == OP_PUSHDATA4:
			// Not required by any script this node builds or accepts from
			// peers other than via a signature push, which always fits in
			// OP_DATA_*; reject rather than silently mis-parsing.
			return ErrScript(ErrNotPushOnly, "OP_PUSHDATA* not supported")
		default:
			return ErrScript(ErrNotPushOnly, "script_sig contains non-push opcode %#x", op)
		}
	}
	return nil
}

// execPubKeyScript runs the restricted P2PKH script_pubkey opcode set
// against s using sigChecker to validate OP_CHECKSIG.
func execPubKeyScript(script []byte, s *stack, sigChecker func(sig, pubKey []byte) bool) error {
	for i := 0; i < len(script); {
		op := script[i]
		switch {
		case op >= OP_DATA_1 && op <= OP_DATA_75:
			n := int(op)
			if i+1+n > len(script) {
				return ErrScript(ErrUnsupportedOpcode, "push past end of script")
			}
			s.push(script[i+1 : i+1+n])
			i += 1 + n

		case op == OP_DUP:
			v, err := s.top()
			if err != nil {
				return err
			}
			cp := make([]byte, len(v))
			copy(cp, v)
			s.push(cp)
			i++

		case op == OP_HASH160:
			v, err := s.pop()
			if err != nil {
				return err
			}
			s.push(Hash160(v))
			i++

		case op == OP_EQUALVERIFY:
			a, err := s.pop()
			if err != nil {
				return err
			}
			b, err := s.pop()
			if err != nil {
				return err
			}
			if !bytes.Equal(a, b) {
				return ErrScript(ErrEvalFalse, "OP_EQUALVERIFY failed")
			}
			i++

		case op == OP_CHECKSIG:
			pubKey, err := s.pop()
			if err != nil {
				return err
			}
			sig, err := s.pop()
			if err != nil {
				return err
			}
			if sigChecker(sig, pubKey) {
				s.push([]byte{1})
			} else {
				s.push(nil)
			}
			i++

		default:
			return ErrScript(ErrUnsupportedOpcode, "unsupported opcode %#x", op)
		}
	}
	return nil
}

// SignatureHash computes the SIGHASH-ALL preimage hash for input idx of tx:
// every input's script_sig is cleared except idx's, which is set to
// prevScriptPubKey, then the transaction is serialized with a trailing
// little-endian hash-type word and double-SHA-256'd.
func SignatureHash(tx *wire.MsgTx, idx int, prevScriptPubKey []byte) (chainhash.Hash, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		return chainhash.Hash{}, ErrScript(ErrUnsupportedOpcode, "input index %d out of range", idx)
	}

	txCopy := &wire.MsgTx{
		Version: tx.Version,
		LockTime: tx.LockTime,
		TxOut: tx.TxOut,
	}
	txCopy.TxIn = make([]*wire.TxIn, len(tx.TxIn))
	for i, in := range tx.TxIn {
		sig := []byte(nil)
		if i == idx {
			sig = prevScriptPubKey
		}
		txCopy.TxIn[i] = &wire.TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript: sig,
			Sequence: in.Sequence,
		}
	}

	var buf bytes.Buffer
	if err := txCopy.Serialize(&buf); err != nil {
		return chainhash.Hash{}, err
	}
	if err := wire.WriteUint32(&buf, sigHashAll); err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(buf.Bytes()), nil
}

// checkSig verifies a DER-encoded ECDSA signature (with trailing hash-type
// byte) over sigHash against the secp256k1 public key pubKeyBytes.
func checkSig(sigHash chainhash.Hash, sigWithHashType, pubKeyBytes []byte) bool {
	if len(sigWithHashType) == 0 {
		return false
	}
	// The hash type byte only ever selects SIGHASH-ALL in this network;
	// it is stripped and ignored rather than validated.
	derSig := sigWithHashType[:len(sigWithHashType)-1]

	sig, err := ecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false
	}
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash[:], pubKey)
}

// Verify runs scriptSig then scriptPubKey against the given transaction
// input, returning nil if the script succeeds or an Error describing why
// it failed.
//
// tx/idx/prevScriptPubKey identify the input being validated so OP_CHECKSIG
// can compute the correct SIGHASH-ALL preimage. cache may be nil; when
// non-nil, a signature already proven valid for this sigHash/pubKey pair is
// not re-verified, and newly-verified signatures are recorded into it.
func Verify(scriptSig, scriptPubKey []byte, tx *wire.MsgTx, idx int, cache *SigCache) error {
	var s stack
	if err := execPushOnly(scriptSig, &s); err != nil {
		return err
	}

	sigChecker := func(sig, pubKey []byte) bool {
		sigHash, err := SignatureHash(tx, idx, scriptPubKey)
		if err != nil {
			return false
		}
		if cache != nil && cache.Exists(sigHash, sig, pubKey) {
			return true
		}
		if !checkSig(sigHash, sig, pubKey) {
			return false
		}
		if cache != nil {
			cache.Add(sigHash, sig, pubKey, tx)
		}
		return true
	}
	if err := execPubKeyScript(scriptPubKey, &s, sigChecker); err != nil {
		return err
	}

	top, err := s.top()
	if err != nil {
		return ErrScript(ErrEvalFalse, "script left empty stack")
	}
	if !asBool(top) {
		return ErrScript(ErrEvalFalse, "script evaluated to false")
	}
	return nil
}
