// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
)

// MaxAddrPerMsg caps the number of entries an addr message may carry.
const MaxAddrPerMsg = 1000

// NetAddress describes a single peer address as gossiped over the wire.
type NetAddress struct {
	Timestamp uint32
	Services  uint64
	IP        net.IP
	Port      uint16
}

func writeNetAddress(w io.Writer, na *NetAddress, includeTimestamp bool) error {
	if includeTimestamp {
		if err := WriteUint32(w, na.Timestamp); err != nil {
			return err
		}
	}
	if err := WriteUint64(w, na.Services); err != nil {
		return err
	}

	var ip [16]byte
	if ip4 := na.IP.To4(); ip4 != nil {
		copy(ip[12:], ip4)
		ip[10] = 0xff
		ip[11] = 0xff
	} else if ip16 := na.IP.To16(); ip16 != nil {
		copy(ip[:], ip16)
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	// Port is big-endian on the wire, matching network byte order.
	return WriteUint16BE(w, na.Port)
}

func readNetAddress(r io.Reader, na *NetAddress, includeTimestamp bool) error {
	if includeTimestamp {
		ts, err := ReadUint32(r)
		if err != nil {
			return err
		}
		na.Timestamp = ts
	}

	services, err := ReadUint64(r)
	if err != nil {
		return err
	}
	na.Services = services

	var ip [16]byte
	if err := readElement(r, ip[:]); err != nil {
		return err
	}
	na.IP = net.IP(ip[:]).To16()

	port, err := ReadUint16BE(r)
	if err != nil {
		return err
	}
	na.Port = port
	return nil
}

// WriteUint16BE writes a big-endian uint16, used for port fields per the
// network-address-family convention inherited from Bitcoin's wire format.
func WriteUint16BE(w io.Writer, v uint16) error {
	b := [2]byte{byte(v >> 8), byte(v)}
	_, err := w.Write(b[:])
	return err
}

// ReadUint16BE reads a big-endian uint16.
func ReadUint16BE(r io.Reader) (uint16, error) {
	var b [2]byte
	if err := readElement(r, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// MsgVersion is the first message exchanged by each side of a connection.
type MsgVersion struct {
	ProtocolVersion uint32
	Services        uint64
	Timestamp       uint64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     uint32
	Relay           bool
}

// BtcDecode reads a serialized version message from r.
func (m *MsgVersion) BtcDecode(r io.Reader) error {
	var err error
	if m.ProtocolVersion, err = ReadUint32(r); err != nil {
		return err
	}
	if m.Services, err = ReadUint64(r); err != nil {
		return err
	}
	if m.Timestamp, err = ReadUint64(r); err != nil {
		return err
	}
	if err = readNetAddress(r, &m.AddrYou, false); err != nil {
		return err
	}
	if err = readNetAddress(r, &m.AddrMe, false); err != nil {
		return err
	}
	if m.Nonce, err = ReadUint64(r); err != nil {
		return err
	}
	ua, err := ReadVarBytes(r, 256, "user_agent")
	if err != nil {
		return err
	}
	m.UserAgent = string(ua)
	if m.StartHeight, err = ReadUint32(r); err != nil {
		return err
	}
	relay, err := ReadUint8(r)
	if err != nil {
		return err
	}
	m.Relay = relay != 0
	return nil
}

// BtcEncode writes the serialized version message to w.
func (m *MsgVersion) BtcEncode(w io.Writer) error {
	if err := WriteUint32(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteUint64(w, m.Services); err != nil {
		return err
	}
	if err := WriteUint64(w, m.Timestamp); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrMe, false); err != nil {
		return err
	}
	if err := WriteUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarBytes(w, []byte(m.UserAgent)); err != nil {
		return err
	}
	if err := WriteUint32(w, m.StartHeight); err != nil {
		return err
	}
	var relay uint8
	if m.Relay {
		relay = 1
	}
	return WriteUint8(w, relay)
}

// MsgVerAck acknowledges a version message. It carries no payload.
type MsgVerAck struct{}

// BtcDecode is a no-op; verack has an empty payload.
func (m *MsgVerAck) BtcDecode(r io.Reader) error { return nil }

// BtcEncode is a no-op; verack has an empty payload.
func (m *MsgVerAck) BtcEncode(w io.Writer) error { return nil }

// MsgPing carries a nonce the recipient must echo back in a pong.
type MsgPing struct {
	Nonce uint64
}

// BtcDecode reads the nonce from r.
func (m *MsgPing) BtcDecode(r io.Reader) error {
	n, err := ReadUint64(r)
	m.Nonce = n
	return err
}

// BtcEncode writes the nonce to w.
func (m *MsgPing) BtcEncode(w io.Writer) error {
	return WriteUint64(w, m.Nonce)
}

// MsgPong echoes back the nonce from a ping.
type MsgPong struct {
	Nonce uint64
}

// BtcDecode reads the nonce from r.
func (m *MsgPong) BtcDecode(r io.Reader) error {
	n, err := ReadUint64(r)
	m.Nonce = n
	return err
}

// BtcEncode writes the nonce to w.
func (m *MsgPong) BtcEncode(w io.Writer) error {
	return WriteUint64(w, m.Nonce)
}

// MsgGetAddr requests a peer's address table. It carries no payload.
type MsgGetAddr struct{}

// BtcDecode is a no-op; getaddr has an empty payload.
func (m *MsgGetAddr) BtcDecode(r io.Reader) error { return nil }

// BtcEncode is a no-op; getaddr has an empty payload.
func (m *MsgGetAddr) BtcEncode(w io.Writer) error { return nil }

// MsgAddr carries a batch of gossiped peer addresses.
type MsgAddr struct {
	AddrList []*NetAddress
}

// BtcDecode reads an addr message, rejecting batches over MaxAddrPerMsg.
func (m *MsgAddr) BtcDecode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return ErrInvalidEncoding
	}
	m.AddrList = make([]*NetAddress, count)
	for i := range m.AddrList {
		na := new(NetAddress)
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		m.AddrList[i] = na
	}
	return nil
}

// BtcEncode writes an addr message, truncating to MaxAddrPerMsg entries.
func (m *MsgAddr) BtcEncode(w io.Writer) error {
	addrs := m.AddrList
	if len(addrs) > MaxAddrPerMsg {
		addrs = addrs[:MaxAddrPerMsg]
	}
	if err := WriteVarInt(w, uint64(len(addrs))); err != nil {
		return err
	}
	for _, na := range addrs {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}
