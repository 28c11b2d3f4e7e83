// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/icsicoin/node/chainhash"
)

// BlockHeaderLen is the number of bytes in a serialized block header.
const BlockHeaderLen = 80

// maxScriptSize bounds an individual script_sig/script_pubkey, independent
// of the overall message payload cap.
const maxScriptSize = 10000

// BlockHeader holds metadata common to every block: the previous block
// hash, the merkle root committing to every transaction, and the fields
// that feed the proof-of-work check.
type BlockHeader struct {
	Version    uint32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Serialize writes the 80-byte canonical encoding of the header.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := WriteUint32(w, h.Version); err != nil {
		return err
	}
	if err := WriteHash(w, h.PrevBlock); err != nil {
		return err
	}
	if err := WriteHash(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := WriteUint32(w, h.Timestamp); err != nil {
		return err
	}
	if err := WriteUint32(w, h.Bits); err != nil {
		return err
	}
	return WriteUint32(w, h.Nonce)
}

// Bytes returns the 80-byte canonical encoding of the header.
func (h *BlockHeader) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = h.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize reads a BlockHeader from its 80-byte canonical encoding.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	var err error
	if h.Version, err = ReadUint32(r); err != nil {
		return err
	}
	if err = ReadHash(r, (*[32]byte)(&h.PrevBlock)); err != nil {
		return err
	}
	if err = ReadHash(r, (*[32]byte)(&h.MerkleRoot)); err != nil {
		return err
	}
	if h.Timestamp, err = ReadUint32(r); err != nil {
		return err
	}
	if h.Bits, err = ReadUint32(r); err != nil {
		return err
	}
	if h.Nonce, err = ReadUint32(r); err != nil {
		return err
	}
	return nil
}

// BlockHash returns the canonical double-SHA-256 hash of the header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	return chainhash.HashH(h.Bytes())
}

// OutPoint identifies a single previous output being spent.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxIn is a single transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// coinbasePrevIndex is the sentinel previous-output index marking a
// coinbase input.
const coinbasePrevIndex = 0xFFFFFFFF

// IsCoinBase reports whether in is the null input that marks a coinbase
// transaction's sole input.
func (in *TxIn) IsCoinBase() bool {
	return in.PreviousOutPoint.Hash == (chainhash.Hash{}) &&
		in.PreviousOutPoint.Index == coinbasePrevIndex
}

func (in *TxIn) serialize(w io.Writer) error {
	if err := WriteHash(w, in.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := WriteUint32(w, in.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, in.SignatureScript); err != nil {
		return err
	}
	return WriteUint32(w, in.Sequence)
}

func (in *TxIn) deserialize(r io.Reader) error {
	if err := ReadHash(r, (*[32]byte)(&in.PreviousOutPoint.Hash)); err != nil {
		return err
	}
	idx, err := ReadUint32(r)
	if err != nil {
		return err
	}
	in.PreviousOutPoint.Index = idx

	script, err := ReadVarBytes(r, maxScriptSize, "script_sig")
	if err != nil {
		return err
	}
	in.SignatureScript = script

	seq, err := ReadUint32(r)
	if err != nil {
		return err
	}
	in.Sequence = seq
	return nil
}

// TxOut is a single transaction output.
type TxOut struct {
	Value        uint64
	ScriptPubKey []byte
}

func (out *TxOut) serialize(w io.Writer) error {
	if err := WriteUint64(w, out.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, out.ScriptPubKey)
}

func (out *TxOut) deserialize(r io.Reader) error {
	val, err := ReadUint64(r)
	if err != nil {
		return err
	}
	out.Value = val

	script, err := ReadVarBytes(r, maxScriptSize, "script_pubkey")
	if err != nil {
		return err
	}
	out.ScriptPubKey = script
	return nil
}

// MsgTx is a transaction: a version, a list of inputs, a list of outputs,
// and a locktime.
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// IsCoinBase reports whether tx is a coinbase transaction: exactly one
// input, and that input is the null previous-outpoint sentinel.
func (tx *MsgTx) IsCoinBase() bool {
	return len(tx.TxIn) == 1 && tx.TxIn[0].IsCoinBase()
}

// Serialize writes the canonical encoding of tx.
func (tx *MsgTx) Serialize(w io.Writer) error {
	if err := WriteUint32(w, tx.Version); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(tx.TxIn))); err != nil {
		return err
	}
	for _, in := range tx.TxIn {
		if err := in.serialize(w); err != nil {
			return err
		}
	}
	if err := WriteVarInt(w, uint64(len(tx.TxOut))); err != nil {
		return err
	}
	for _, out := range tx.TxOut {
		if err := out.serialize(w); err != nil {
			return err
		}
	}
	return WriteUint32(w, tx.LockTime)
}

// Bytes returns the canonical encoding of tx.
func (tx *MsgTx) Bytes() []byte {
	var buf bytes.Buffer
	_ = tx.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize reads a transaction from its canonical encoding.
func (tx *MsgTx) Deserialize(r io.Reader) error {
	var err error
	if tx.Version, err = ReadUint32(r); err != nil {
		return err
	}

	inCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if inCount > MaxMessagePayload/41 {
		return ErrInvalidEncoding
	}
	tx.TxIn = make([]*TxIn, inCount)
	for i := range tx.TxIn {
		in := new(TxIn)
		if err := in.deserialize(r); err != nil {
			return err
		}
		tx.TxIn[i] = in
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > MaxMessagePayload/9 {
		return ErrInvalidEncoding
	}
	tx.TxOut = make([]*TxOut, outCount)
	for i := range tx.TxOut {
		out := new(TxOut)
		if err := out.deserialize(r); err != nil {
			return err
		}
		tx.TxOut[i] = out
	}

	if tx.LockTime, err = ReadUint32(r); err != nil {
		return err
	}
	return nil
}

// TxHash returns the double-SHA-256 hash of the transaction's canonical
// encoding.
func (tx *MsgTx) TxHash() chainhash.Hash {
	return chainhash.HashH(tx.Bytes())
}

// MsgBlock is a full block: a header plus its list of transactions. The
// first transaction must be the coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// Serialize writes the canonical encoding of the block.
func (b *MsgBlock) Serialize(w io.Writer) error {
	if err := b.Header.Serialize(w); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(b.Transactions))); err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the canonical encoding of the block.
func (b *MsgBlock) Bytes() []byte {
	var buf bytes.Buffer
	_ = b.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize reads a block from its canonical encoding.
func (b *MsgBlock) Deserialize(r io.Reader) error {
	if err := b.Header.Deserialize(r); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txCount > MaxMessagePayload/60 {
		return ErrInvalidEncoding
	}
	b.Transactions = make([]*MsgTx, txCount)
	for i := range b.Transactions {
		tx := new(MsgTx)
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		b.Transactions[i] = tx
	}
	return nil
}

// BlockHash returns the canonical hash of the block's header.
func (b *MsgBlock) BlockHash() chainhash.Hash {
	return b.Header.BlockHash()
}
