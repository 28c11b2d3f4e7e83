// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []uint64{
		0, 0xFC, 0xFD, 0xFFFF, 0x10000, 0xFFFFFFFF, 0x100000000, 0xFFFFFFFFFFFFFFFF,
	}
	for _, n := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, n); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", n, err)
		}
		if buf.Len() != VarIntSerializeSize(n) {
			t.Fatalf("VarIntSerializeSize(%d) = %d, wrote %d bytes", n, VarIntSerializeSize(n), buf.Len())
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip mismatch: wrote %d, read %d", n, got)
		}
	}
}

func TestVarIntNonCanonical(t *testing.T) {
	// 0xFD followed by a u16 of 0x00FC (252) should have been a single
	// byte; the canonical-form check must reject it.
	buf := bytes.NewBuffer([]byte{0xFD, 0xFC, 0x00})
	if _, err := ReadVarInt(buf); err == nil {
		t.Fatal("expected non-canonical varint to be rejected")
	}
}

func TestVarBytesCap(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteVarInt(&buf, 100)
	buf.Write(make([]byte, 50))
	if _, err := ReadVarBytes(&buf, 10, "test"); err == nil {
		t.Fatal("expected oversized var bytes to be rejected")
	}
}

func TestMessageRoundTrip(t *testing.T) {
	ping := &MsgPing{Nonce: 0xdeadbeef}
	var buf bytes.Buffer
	if err := WriteMessage(&buf, ping, 1, MainNet); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	msg, cmd, err := ReadMessage(&buf, 1, MainNet)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if cmd != CmdPing {
		t.Fatalf("command = %q, want %q", cmd, CmdPing)
	}
	got, ok := msg.(*MsgPing)
	if !ok {
		t.Fatalf("unexpected message type %T", msg)
	}
	if got.Nonce != ping.Nonce {
		t.Fatalf("nonce = %d, want %d", got.Nonce, ping.Nonce)
	}
}

func TestMessageWrongMagic(t *testing.T) {
	ping := &MsgPing{Nonce: 1}
	var buf bytes.Buffer
	_ = WriteMessage(&buf, ping, 1, TestNet)
	if _, _, err := ReadMessage(&buf, 1, MainNet); err == nil {
		t.Fatal("expected magic mismatch to be rejected")
	}
}

func TestMessageChecksumMismatch(t *testing.T) {
	ping := &MsgPing{Nonce: 1}
	var buf bytes.Buffer
	_ = WriteMessage(&buf, ping, 1, MainNet)
	raw := buf.Bytes()
	// Corrupt a payload byte without touching the checksum.
	raw[len(raw)-1] ^= 0xFF
	if _, _, err := ReadMessage(bytes.NewReader(raw), 1, MainNet); err == nil {
		t.Fatal("expected checksum mismatch to be rejected")
	}
}
