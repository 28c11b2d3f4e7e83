// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/icsicoin/node/chainhash"
)

// CurrencyNet identifies which network a message frame belongs to, so a
// node never mistakes a mainnet frame for one from testnet/simnet.
type CurrencyNet uint32

// The three currency-net magics this node understands.
const (
	MainNet CurrencyNet = 0xFBC0B6DB
	TestNet CurrencyNet = 0x0B110907
	SimNet CurrencyNet = 0x12141C16
)

func (n CurrencyNet) String() string {
	switch n {
	case MainNet:
		return "MainNet"
	case TestNet:
		return "TestNet"
	case SimNet:
		return "SimNet"
	default:
		return fmt.Sprintf("Unknown CurrencyNet (%d)", uint32(n))
	}
}

// Command names, NUL-padded to CommandSize on the wire.
const (
	CmdVersion = "version"
	CmdVerAck = "verack"
	CmdPing = "ping"
	CmdPong = "pong"
	CmdGetAddr = "getaddr"
	CmdAddr = "addr"
	CmdInv = "inv"
	CmdGetData = "getdata"
	CmdGetBlocks = "getblocks"
	CmdBlock = "block"
	CmdTx = "tx"
)

// CommandSize is the fixed width of the command field in a message frame.
const CommandSize = 12

// MessageHeaderSize is magic(4) + command(12) + length(4) + checksum(4).
const MessageHeaderSize = 4 + CommandSize + 4 + 4

// Message is implemented by every P2P payload type.
type Message interface {
	BtcDecode(r io.Reader) error
	BtcEncode(w io.Writer) error
}

// makeEmptyMessage returns a zero-value Message for the given command, or
// an error if the command is unknown. ReadMessage turns that error into a
// nil message with a nil error, so its caller logs and ignores the frame.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdBlock:
		return &MsgBlockPayload{}, nil
	case CmdTx:
		return &MsgTxPayload{}, nil
	default:
		return nil, fmt.Errorf("unhandled command [%s]", command)
	}
}

func commandOf(msg Message) (string, error) {
	switch msg.(type) {
	case *MsgVersion:
		return CmdVersion, nil
	case *MsgVerAck:
		return CmdVerAck, nil
	case *MsgPing:
		return CmdPing, nil
	case *MsgPong:
		return CmdPong, nil
	case *MsgGetAddr:
		return CmdGetAddr, nil
	case *MsgAddr:
		return CmdAddr, nil
	case *MsgInv:
		return CmdInv, nil
	case *MsgGetData:
		return CmdGetData, nil
	case *MsgGetBlocks:
		return CmdGetBlocks, nil
	case *MsgBlockPayload:
		return CmdBlock, nil
	case *MsgTxPayload:
		return CmdTx, nil
	default:
		return "", fmt.Errorf("unsupported message type %T", msg)
	}
}

func encodeCommand(command string) ([CommandSize]byte, error) {
	var buf [CommandSize]byte
	if len(command) > CommandSize {
		return buf, fmt.Errorf("command %q too long", command)
	}
	copy(buf[:], command)
	return buf, nil
}

func checksum(payload []byte) [4]byte {
	h := chainhash.HashB(payload)
	var sum [4]byte
	copy(sum[:], h[:4])
	return sum
}

// WriteMessage serializes msg as a framed wire message and writes it to w.
func WriteMessage(w io.Writer, msg Message, pver uint32, net CurrencyNet) error {
	command, err := commandOf(msg)
	if err != nil {
		return err
	}

	var payloadBuf bytes.Buffer
	if err := msg.BtcEncode(&payloadBuf); err != nil {
		return err
	}
	payload := payloadBuf.Bytes()
	if len(payload) > MaxMessagePayload {
		return fmt.Errorf("message payload of %d bytes exceeds max of %d",
			len(payload), MaxMessagePayload)
	}

	cmdBytes, err := encodeCommand(command)
	if err != nil {
		return err
	}

	var hdr bytes.Buffer
	hdr.Grow(MessageHeaderSize)
	if err := WriteUint32(&hdr, uint32(net)); err != nil {
		return err
	}
	hdr.Write(cmdBytes[:])
	if err := WriteUint32(&hdr, uint32(len(payload))); err != nil {
		return err
	}
	sum := checksum(payload)
	hdr.Write(sum[:])

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadMessage reads one framed wire message from r, verifying magic,
// length cap, and checksum before attempting to parse the payload.
// Returns the raw command string alongside the parsed message so callers
// can log and ignore unrecognized commands without treating them as a
// protocol error.
func ReadMessage(r io.Reader, pver uint32, net CurrencyNet) (Message, string, error) {
	magic, err := ReadUint32(r)
	if err != nil {
		return nil, "", err
	}
	if CurrencyNet(magic) != net {
		return nil, "", fmt.Errorf("%w: unexpected network magic %#08x, want %#08x",
			ErrInvalidEncoding, magic, uint32(net))
	}

	var cmdBytes [CommandSize]byte
	if err := readElement(r, cmdBytes[:]); err != nil {
		return nil, "", err
	}
	command := string(bytes.TrimRight(cmdBytes[:], "\x00"))

	length, err := ReadUint32(r)
	if err != nil {
		return nil, "", err
	}
	if length > MaxMessagePayload {
		return nil, "", fmt.Errorf("%w: payload length %d exceeds max of %d",
			ErrInvalidEncoding, length, MaxMessagePayload)
	}

	var wantSum [4]byte
	if err := readElement(r, wantSum[:]); err != nil {
		return nil, "", err
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	gotSum := checksum(payload)
	if gotSum != wantSum {
		return nil, "", fmt.Errorf("%w: checksum mismatch for command %q", ErrInvalidEncoding, command)
	}

	msg, err := makeEmptyMessage(command)
	if err != nil {
		// Unknown command: return no message and no error so the caller
		// logs and ignores the frame.
		return nil, command, nil
	}
	if err := msg.BtcDecode(bytes.NewReader(payload)); err != nil {
		return nil, command, err
	}
	return msg, command, nil
}
