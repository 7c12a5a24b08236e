package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrBadlyCompressed is raised when an inbound frame declares an
// uncompressed length at or above the negotiated threshold without
// actually carrying zlib payload.
var ErrBadlyCompressed = errors.New("BadlyCompressed")

// compressor rewrites a packet body (id+data) as:
//
//	VarInt(uncompressedLen) || zlib(body)      if len(body) >= threshold
//	VarInt(0)                || body           otherwise
//
// and reverses the transform on read. Once threshold >= 0 is set it is
// never unset for the life of the connection.
type compressor struct {
	threshold int // a negative value compresses every body; compression is disabled by installing no compressor
	level     int
}

func newCompressor(threshold, level int) *compressor {
	return &compressor{threshold: threshold, level: level}
}

// compress returns the on-wire representation of body.
func (c *compressor) compress(body []byte) ([]byte, error) {
	out := new(bytes.Buffer)
	if len(body) < c.threshold {
		if err := WriteVarInt(out, 0); err != nil {
			return nil, err
		}
		out.Write(body)
		return out.Bytes(), nil
	}
	if err := WriteVarInt(out, len(body)); err != nil {
		return nil, err
	}
	zw, err := zlib.NewWriterLevel(out, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// decompress reverses compress, given the full frame body (the
// uncompressed-length varint followed by either raw or zlib bytes).
func (c *compressor) decompress(frame []byte) ([]byte, error) {
	r := bytes.NewReader(frame)
	uncompressedLen, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if uncompressedLen == 0 {
		// Not compressed; but if the remaining length is itself at or
		// above threshold, the peer lied about the compression state.
		rest := frame[len(frame)-r.Len():]
		if c.threshold >= 0 && len(rest) >= c.threshold {
			return nil, fmt.Errorf("%w: uncompressed frame of %d bytes >= threshold %d",
				ErrBadlyCompressed, len(rest), c.threshold)
		}
		return rest, nil
	}
	if c.threshold >= 0 && uncompressedLen < c.threshold {
		return nil, fmt.Errorf("%w: declared length %d below threshold %d", ErrBadlyCompressed, uncompressedLen, c.threshold)
	}
	if uncompressedLen > MaxPacketSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds max packet size %d", ErrBadlyCompressed, uncompressedLen, MaxPacketSize)
	}
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out := make([]byte, uncompressedLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
