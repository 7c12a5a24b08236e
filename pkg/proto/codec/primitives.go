// Package codec implements the wire codec: varint/string/UUID/NBT
// primitives, the length-prefixed frame layer, and the cipher/
// compression filters that sit between the frame layer and the packet
// decoder.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

// DefaultMaxStringLength is the cap applied by ReadString when callers
// don't have a more specific limit (chat messages, usernames, etc. all
// have tighter limits defined by their packet).
const DefaultMaxStringLength = 1 << 16

// ErrStringTooLong is returned by ReadString when the encoded length
// exceeds the given cap.
var ErrStringTooLong = errors.New("string exceeds maximum allowed length")

// ReadString reads a varint-length-prefixed UTF-8 string, rejecting one
// declaring more than cap runes-worth of bytes (4 bytes/rune, matching
// vanilla's defensive bound).
func ReadString(r io.Reader, cap int) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > cap*4 {
		return "", ErrStringTooLong
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes s varint-length-prefixed.
func WriteString(w io.Writer, s string) error {
	if err := WriteVarInt(w, len(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadBool reads a single 0/1 byte boolean.
func ReadBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// WriteBool writes a single 0/1 byte boolean.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return writeByte(w, 1)
	}
	return writeByte(w, 0)
}

// ReadUUID reads a 16-byte big-endian UUID.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], buf[:])
	return u, nil
}

// WriteUUID writes u as 16 big-endian bytes.
func WriteUUID(w io.Writer, u uuid.UUID) error {
	_, err := w.Write(u[:])
	return err
}

// ReadByteArray reads a varint-length-prefixed byte slice.
func ReadByteArray(r io.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 1<<21 {
		return nil, fmt.Errorf("byte array length %d out of range", n)
	}
	buf := make([]byte, n)
	_, err = io.ReadFull(r, buf)
	return buf, err
}

// WriteByteArray writes b varint-length-prefixed.
func WriteByteArray(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, len(b)); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadByte / WriteByte read and write a single raw byte.
func ReadByte(r io.Reader) (byte, error) { return readByte(r) }

func WriteByte(w io.Writer, b byte) error { return writeByte(w, b) }

// ReadInt32BE / WriteInt32BE read and write a big-endian int32.
func ReadInt32BE(r io.Reader) (int32, error) { return readInt32(r) }

func WriteInt32BE(w io.Writer, v int32) error { return writeInt32(w, v) }

// ReadInt16 / WriteInt16 read and write a big-endian int16, used by a
// handful of legacy (pre-1.8) packet fields.
func ReadInt16(r io.Reader) (int16, error) {
	var v int16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func WriteInt16(w io.Writer, v int16) error {
	return binary.Write(w, binary.BigEndian, v)
}

// ReadInt64 / WriteInt64 read and write a big-endian int64 (KeepAlive ids
// on modern protocol versions, among others).
func ReadInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func WriteInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.BigEndian, v)
}
