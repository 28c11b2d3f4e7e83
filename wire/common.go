// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the fixed-width and variable-length encodings
// used both to serialize blocks/transactions for on-disk storage and to
// frame peer-to-peer protocol messages.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxMessagePayload is the maximum bytes a message payload can be, enforced
// on every length-prefixed read to bound memory use from a malicious peer.
const MaxMessagePayload = 16 * 1024 * 1024 // 16 MiB

// ErrInvalidEncoding is returned by decoders whenever the byte stream is
// short, malformed, or declares a length exceeding MaxMessagePayload.
var ErrInvalidEncoding = errors.New("invalid encoding")

func readElement(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if err := readElement(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if err := readElement(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// ReadUint32 reads a little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if err := readElement(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadUint64 reads a little-endian uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if err := readElement(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// WriteUint16 writes a little-endian uint16.
func WriteUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// WriteUint32 writes a little-endian uint32.
func WriteUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// WriteUint64 writes a little-endian uint64.
func WriteUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadVarInt reads a compact-size encoded unsigned integer:
//
//	< 0xfd            -> the single byte itself
//	0xfd <u16-le>      -> value <= 0xffff
//	0xfe <u32-le>      -> value <= 0xffffffff
//	0xff <u64-le>      -> anything larger
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := ReadUint8(r)
	if err != nil {
		return 0, err
	}

	switch discriminant {
	case 0xff:
		rv, err := ReadUint64(r)
		if err != nil {
			return 0, err
		}
		if rv < 0x100000000 {
			return 0, fmt.Errorf("%w: non-canonical varint (64-bit form for %d)", ErrInvalidEncoding, rv)
		}
		return rv, nil

	case 0xfe:
		rv, err := ReadUint32(r)
		if err != nil {
			return 0, err
		}
		if uint64(rv) < 0x10000 {
			return 0, fmt.Errorf("%w: non-canonical varint (32-bit form for %d)", ErrInvalidEncoding, rv)
		}
		return uint64(rv), nil

	case 0xfd:
		rv, err := ReadUint16(r)
		if err != nil {
			return 0, err
		}
		if uint64(rv) < 0xfd {
			return 0, fmt.Errorf("%w: non-canonical varint (16-bit form for %d)", ErrInvalidEncoding, rv)
		}
		return uint64(rv), nil

	default:
		return uint64(discriminant), nil
	}
}

// WriteVarInt writes val using the minimal compact-size encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return WriteUint8(w, uint8(val))
	}
	if val <= 0xffff {
		if err := WriteUint8(w, 0xfd); err != nil {
			return err
		}
		return WriteUint16(w, uint16(val))
	}
	if val <= 0xffffffff {
		if err := WriteUint8(w, 0xfe); err != nil {
			return err
		}
		return WriteUint32(w, uint32(val))
	}
	if err := WriteUint8(w, 0xff); err != nil {
		return err
	}
	return WriteUint64(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to encode
// val as a compact-size varint.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a varint-prefixed byte slice, i.e. a var-string,
// rejecting declared lengths beyond maxAllowed (use MaxMessagePayload for
// message payloads, a smaller cap for embedded fields such as scripts).
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, fmt.Errorf("%w: %s length %d exceeds max of %d", ErrInvalidEncoding, fieldName, count, maxAllowed)
	}

	buf := make([]byte, count)
	if err := readElement(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEncoding, fieldName, err)
	}
	return buf, nil
}

// WriteVarBytes writes b as a varint-prefixed byte slice.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadHash reads a fixed 32-byte hash as it appears on the wire (no
// length prefix).
func ReadHash(r io.Reader, out *[32]byte) error {
	return readElement(r, out[:])
}

// WriteHash writes a fixed 32-byte hash.
func WriteHash(w io.Writer, h [32]byte) error {
	_, err := w.Write(h[:])
	return err
}
