// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/icsicoin/node/chainhash"
)

// InvType identifies what an inventory vector refers to.
type InvType string

// The two inventory kinds this node relays.
const (
	InvTypeBlock InvType = "block"
	InvTypeTx InvType = "tx"
)

// MaxInvPerMsg caps the number of inventory items in a single inv/getdata
// message.
const MaxInvPerMsg = 500

// InvVect names a single block or transaction by hash.
type InvVect struct {
	Type InvType `json:"type"`
	Hash chainhash.Hash `json:"hash"`
}

// invWire is the JSON envelope shared by MsgInv and MsgGetData.
type invWire struct {
	Type string `json:"type"`
	Items []struct {
		Type string `json:"type"`
		Hash string `json:"hash"`
	} `json:"items"`
}

func encodeInvVects(kind string, items []InvVect) ([]byte, error) {
	w := invWire{Type: kind}
	w.Items = make([]struct {
		Type string `json:"type"`
		Hash string `json:"hash"`
	}, len(items))
	for i, it := range items {
		w.Items[i].Type = string(it.Type)
		w.Items[i].Hash = it.Hash.String()
	}
	return json.Marshal(w)
}

func decodeInvVects(b []byte) ([]InvVect, error) {
	var w invWire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(w.Items) > MaxInvPerMsg {
		return nil, fmt.Errorf("%w: inventory batch of %d exceeds max of %d",
			ErrInvalidEncoding, len(w.Items), MaxInvPerMsg)
	}
	out := make([]InvVect, len(w.Items))
	for i, it := range w.Items {
		h, err := chainhash.NewHashFromStr(it.Hash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		out[i] = InvVect{Type: InvType(it.Type), Hash: *h}
	}
	return out, nil
}

// MsgInv announces blocks or transactions the sender has available.
type MsgInv struct {
	Items []InvVect
}

// BtcEncode writes the inv message's JSON payload.
func (m *MsgInv) BtcEncode(w io.Writer) error {
	b, err := encodeInvVects("inv", m.Items)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// BtcDecode reads the inv message's JSON payload.
func (m *MsgInv) BtcDecode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	items, err := decodeInvVects(b)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}

// MsgGetData requests the full contents of the named inventory items.
type MsgGetData struct {
	Items []InvVect
}

// BtcEncode writes the getdata message's JSON payload.
func (m *MsgGetData) BtcEncode(w io.Writer) error {
	b, err := encodeInvVects("getdata", m.Items)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// BtcDecode reads the getdata message's JSON payload.
func (m *MsgGetData) BtcDecode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	items, err := decodeInvVects(b)
	if err != nil {
		return err
	}
	m.Items = items
	return nil
}

// MaxBlockLocatorsPerMsg caps the locator length at 32 entries.
const MaxBlockLocatorsPerMsg = 32

// MsgGetBlocks requests blocks above the highest common ancestor found in
// Locator, up to HashStop (the zero hash means "no limit").
type MsgGetBlocks struct {
	Locator []chainhash.Hash
	HashStop chainhash.Hash
}

type getBlocksWire struct {
	Type string `json:"type"`
	Locator []string `json:"locator"`
	HashStop string `json:"hash_stop"`
}

// BtcEncode writes the getblocks message's JSON payload.
func (m *MsgGetBlocks) BtcEncode(w io.Writer) error {
	gw := getBlocksWire{Type: "getblocks", HashStop: m.HashStop.String()}
	gw.Locator = make([]string, len(m.Locator))
	for i, h := range m.Locator {
		gw.Locator[i] = h.String()
	}
	b, err := json.Marshal(gw)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// BtcDecode reads the getblocks message's JSON payload.
func (m *MsgGetBlocks) BtcDecode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var gw getBlocksWire
	if err := json.Unmarshal(b, &gw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(gw.Locator) > MaxBlockLocatorsPerMsg {
		return fmt.Errorf("%w: locator of %d exceeds max of %d",
			ErrInvalidEncoding, len(gw.Locator), MaxBlockLocatorsPerMsg)
	}
	m.Locator = make([]chainhash.Hash, len(gw.Locator))
	for i, s := range gw.Locator {
		h, err := chainhash.NewHashFromStr(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		m.Locator[i] = *h
	}
	if gw.HashStop != "" {
		h, err := chainhash.NewHashFromStr(gw.HashStop)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		m.HashStop = *h
	}
	return nil
}

type hexPayloadWire struct {
	Type string `json:"type"`
	Payload string `json:"payload"`
}

// MsgBlockPayload wraps a full serialized block as a hex string under a
// JSON envelope wire-compatibility requirement.
type MsgBlockPayload struct {
	Block *MsgBlock
}

// BtcEncode writes the block message's JSON payload.
func (m *MsgBlockPayload) BtcEncode(w io.Writer) error {
	var buf bytes.Buffer
	if err := m.Block.Serialize(&buf); err != nil {
		return err
	}
	b, err := json.Marshal(hexPayloadWire{Type: "block", Payload: hex.EncodeToString(buf.Bytes())})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// BtcDecode reads the block message's JSON payload.
func (m *MsgBlockPayload) BtcDecode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var hw hexPayloadWire
	if err := json.Unmarshal(b, &hw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	raw, err := hex.DecodeString(hw.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	blk := new(MsgBlock)
	if err := blk.Deserialize(bytes.NewReader(raw)); err != nil {
		return err
	}
	m.Block = blk
	return nil
}

// MsgTxPayload wraps a full serialized transaction as a hex string under a
// JSON envelope.
type MsgTxPayload struct {
	Tx *MsgTx
}

// BtcEncode writes the tx message's JSON payload.
func (m *MsgTxPayload) BtcEncode(w io.Writer) error {
	var buf bytes.Buffer
	if err := m.Tx.Serialize(&buf); err != nil {
		return err
	}
	b, err := json.Marshal(hexPayloadWire{Type: "tx", Payload: hex.EncodeToString(buf.Bytes())})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// BtcDecode reads the tx message's JSON payload.
func (m *MsgTxPayload) BtcDecode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var hw hexPayloadWire
	if err := json.Unmarshal(b, &hw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	raw, err := hex.DecodeString(hw.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	tx := new(MsgTx)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return err
	}
	m.Tx = tx
	return nil
}
