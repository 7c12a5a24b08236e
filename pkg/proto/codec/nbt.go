package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// NBT tag ids, per the Java Edition binary NBT format.
const (
	nbtEnd byte = iota
	nbtByte
	nbtShort
	nbtInt
	nbtLong
	nbtFloat
	nbtDouble
	nbtByteArray
	nbtString
	nbtList
	nbtCompound
	nbtIntArray
	nbtLongArray
)

// Tag is a decoded NBT value. Compound decodes to map[string]Tag, List
// decodes to []Tag, and primitives decode to their native Go type. The
// proxy never interprets these values semantically; it only needs to
// read one off the wire and, for a handful of packets such as
// JoinGame, re-serialize it unchanged.
type Tag interface{}

// ReadNBT reads one named root compound tag from r, as Minecraft Java
// Edition encodes it (big-endian, root tag id + name + payload).
func ReadNBT(r io.Reader) (Tag, error) {
	id, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if id == nbtEnd {
		return nil, nil
	}
	if _, err := readNBTString(r); err != nil { // root name, discarded
		return nil, err
	}
	return readNBTPayload(r, id)
}

func readNBTPayload(r io.Reader, id byte) (Tag, error) {
	switch id {
	case nbtByte:
		b, err := readByte(r)
		return int8(b), err
	case nbtShort:
		var v int16
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case nbtInt:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case nbtLong:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case nbtFloat:
		var v float32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case nbtDouble:
		var v float64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case nbtByteArray:
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		_, err = io.ReadFull(r, buf)
		return buf, err
	case nbtString:
		return readNBTString(r)
	case nbtList:
		elemID, err := readByte(r)
		if err != nil {
			return nil, err
		}
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		list := make([]Tag, 0, n)
		for i := int32(0); i < n; i++ {
			v, err := readNBTPayload(r, elemID)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case nbtCompound:
		m := map[string]Tag{}
		for {
			childID, err := readByte(r)
			if err != nil {
				return nil, err
			}
			if childID == nbtEnd {
				break
			}
			name, err := readNBTString(r)
			if err != nil {
				return nil, err
			}
			v, err := readNBTPayload(r, childID)
			if err != nil {
				return nil, err
			}
			m[name] = v
		}
		return m, nil
	case nbtIntArray:
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		arr := make([]int32, n)
		err = binary.Read(r, binary.BigEndian, &arr)
		return arr, err
	case nbtLongArray:
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		arr := make([]int64, n)
		err = binary.Read(r, binary.BigEndian, &arr)
		return arr, err
	default:
		return nil, fmt.Errorf("unknown NBT tag id %d", id)
	}
}

// WriteNBT writes tag as a root compound named "" (the convention used
// by every vanilla Minecraft packet payload).
func WriteNBT(w io.Writer, tag Tag) error {
	if tag == nil {
		return writeByte(w, nbtEnd)
	}
	m, ok := tag.(map[string]Tag)
	if !ok {
		return fmt.Errorf("NBT root must be a compound, got %T", tag)
	}
	if err := writeByte(w, nbtCompound); err != nil {
		return err
	}
	if err := writeNBTString(w, ""); err != nil {
		return err
	}
	return writeNBTPayload(w, nbtCompound, m)
}

func writeNBTPayload(w io.Writer, id byte, v Tag) error {
	switch id {
	case nbtByte:
		return writeByte(w, byte(v.(int8)))
	case nbtShort:
		return binary.Write(w, binary.BigEndian, v.(int16))
	case nbtInt:
		return binary.Write(w, binary.BigEndian, v.(int32))
	case nbtLong:
		return binary.Write(w, binary.BigEndian, v.(int64))
	case nbtFloat:
		return binary.Write(w, binary.BigEndian, v.(float32))
	case nbtDouble:
		return binary.Write(w, binary.BigEndian, v.(float64))
	case nbtByteArray:
		b := v.([]byte)
		if err := writeInt32(w, int32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	case nbtString:
		return writeNBTString(w, v.(string))
	case nbtList:
		list := v.([]Tag)
		elemID := nbtEnd
		if len(list) > 0 {
			elemID = tagIDOf(list[0])
		}
		if err := writeByte(w, elemID); err != nil {
			return err
		}
		if err := writeInt32(w, int32(len(list))); err != nil {
			return err
		}
		for _, e := range list {
			if err := writeNBTPayload(w, elemID, e); err != nil {
				return err
			}
		}
		return nil
	case nbtCompound:
		m := v.(map[string]Tag)
		for name, child := range m {
			cid := tagIDOf(child)
			if err := writeByte(w, cid); err != nil {
				return err
			}
			if err := writeNBTString(w, name); err != nil {
				return err
			}
			if err := writeNBTPayload(w, cid, child); err != nil {
				return err
			}
		}
		return writeByte(w, nbtEnd)
	case nbtIntArray:
		arr := v.([]int32)
		if err := writeInt32(w, int32(len(arr))); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, arr)
	case nbtLongArray:
		arr := v.([]int64)
		if err := writeInt32(w, int32(len(arr))); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, arr)
	default:
		return fmt.Errorf("unknown NBT tag id %d", id)
	}
}

func tagIDOf(v Tag) byte {
	switch v.(type) {
	case int8:
		return nbtByte
	case int16:
		return nbtShort
	case int32:
		return nbtInt
	case int64:
		return nbtLong
	case float32:
		return nbtFloat
	case float64:
		return nbtDouble
	case []byte:
		return nbtByteArray
	case string:
		return nbtString
	case []Tag:
		return nbtList
	case map[string]Tag:
		return nbtCompound
	case []int32:
		return nbtIntArray
	case []int64:
		return nbtLongArray
	default:
		return nbtEnd
	}
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.BigEndian, v)
}

func readNBTString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeNBTString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}
