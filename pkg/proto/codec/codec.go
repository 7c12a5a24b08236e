package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"go.uber.org/zap"
)

// MaxPacketSize is the largest frame this proxy accepts. A frame whose
// length prefix is larger is rejected with ErrFrameTooLarge, and a
// compressed frame declaring a larger uncompressed length is rejected
// with ErrBadlyCompressed, in both cases before any buffer for it is
// allocated.
const MaxPacketSize = 2 * 1024 * 1024 // 2 MiB

// ErrFrameTooLarge is returned when an inbound frame's length prefix
// exceeds MaxPacketSize.
var ErrFrameTooLarge = errors.New("FrameTooLarge")

// ErrDecoderLeftBytes is a non-fatal warning: a known packet's Decode
// did not consume the whole frame. The already-decoded packet is still
// delivered; callers should log and continue.
var ErrDecoderLeftBytes = errors.New("packet decoder did not read all bytes of frame")

// Decoder turns a byte stream into packets: FrameDecoder -> (Decrypt) ->
// (Decompress) -> PacketDecoder.
type Decoder struct {
	r         io.Reader
	direction proto.Direction
	protocol  proto.Protocol
	state     *state.Registry
	compress  *compressor // nil until SetCompressionThreshold is called
	logFields func() []zap.Field
}

// NewDecoder returns a Decoder reading direction-bound packets from r.
func NewDecoder(r io.Reader, direction proto.Direction, logFields func() []zap.Field) *Decoder {
	return &Decoder{
		r:         r,
		direction: direction,
		state:     state.Handshake,
		logFields: logFields,
	}
}

// SetReader swaps the underlying reader, used to install the cipher
// filter atomically once encryption is negotiated.
func (d *Decoder) SetReader(r io.Reader) { d.r = r }

// SetProtocol updates the protocol version used to resolve packet ids.
func (d *Decoder) SetProtocol(p proto.Protocol) { d.protocol = p }

// SetState transitions the decoder to a new session state.
func (d *Decoder) SetState(s *state.Registry) { d.state = s }

// SetCompressionThreshold enables (or updates) the decompress filter.
// Compression may only transition disabled (nil) to enabled once;
// callers only call this after a SetCompression packet.
func (d *Decoder) SetCompressionThreshold(threshold int) {
	if d.compress == nil {
		d.compress = newCompressor(threshold, 0)
		return
	}
	d.compress.threshold = threshold
}

// ReadPacket blocks until one full frame has arrived and returns its
// decoded contents. If the frame's packet id is unknown for the current
// (state, direction, protocol), KnownPacket is false and Payload holds
// the opaque bytes (id included) for verbatim forwarding.
func (d *Decoder) ReadPacket() (*proto.PacketContext, error) {
	frameLen, err := ReadVarInt(d.r)
	if err != nil {
		return nil, err
	}
	if frameLen < 0 || frameLen > MaxPacketSize {
		return nil, fmt.Errorf("%w: declared length %d", ErrFrameTooLarge, frameLen)
	}
	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(d.r, frame); err != nil {
		return nil, err
	}
	if d.compress != nil {
		frame, err = d.compress.decompress(frame)
		if err != nil {
			return nil, err
		}
	}

	body := bytes.NewReader(frame)
	id, err := ReadVarInt(body)
	if err != nil {
		return nil, err
	}

	ctx := &proto.PacketContext{
		Direction: d.direction,
		Protocol:  d.protocol,
		PacketID:  id,
		Payload:   frame,
	}

	reg := d.state.ByDirection(d.direction)
	p, known := reg.CreatePacket(id, d.protocol)
	if !known {
		ctx.KnownPacket = false
		return ctx, nil
	}
	ctx.KnownPacket = true
	ctx.Packet = p
	if err := p.Decode(ctx, body); err != nil {
		return ctx, fmt.Errorf("decoding packet 0x%02X in state %s: %w", id, d.state.Name, err)
	}
	if body.Len() > 0 {
		return ctx, ErrDecoderLeftBytes
	}
	return ctx, nil
}

// Encoder is the outbound mirror of Decoder: PacketEncoder -> (Compress)
// -> (Encrypt) -> FrameEncoder.
type Encoder struct {
	mu        sync.Mutex
	w         io.Writer
	direction proto.Direction
	protocol  proto.Protocol
	state     *state.Registry
	compress  *compressor
}

// NewEncoder returns an Encoder writing direction-bound packets to w.
func NewEncoder(w io.Writer, direction proto.Direction) *Encoder {
	return &Encoder{w: w, direction: direction, state: state.Handshake}
}

// SetWriter swaps the underlying writer, used to install the cipher
// filter atomically: encryption is installed after the response that
// negotiated it has already been serialized.
func (e *Encoder) SetWriter(w io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.w = w
}

func (e *Encoder) SetProtocol(p proto.Protocol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protocol = p
}

func (e *Encoder) SetState(s *state.Registry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// SetCompression enables the compress filter with threshold and zlib
// level. Like the decoder side, this never disables compression once on.
func (e *Encoder) SetCompression(threshold, level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compress == nil {
		e.compress = newCompressor(threshold, level)
		return nil
	}
	e.compress.threshold = threshold
	e.compress.level = level
	return nil
}

// WritePacket encodes p (looking up its wire id for the current state/
// protocol) and writes the complete length-prefixed frame.
func (e *Encoder) WritePacket(p proto.Packet) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg := e.state.ByDirection(e.direction)
	id, ok := reg.PacketID(p, e.protocol)
	if !ok {
		return 0, fmt.Errorf("no packet id registered for %T in state %s protocol %s", p, e.state.Name, e.protocol)
	}

	body := new(bytes.Buffer)
	if err := WriteVarInt(body, id); err != nil {
		return 0, err
	}
	ctx := &proto.PacketContext{Direction: e.direction, Protocol: e.protocol, PacketID: id}
	if err := p.Encode(ctx, body); err != nil {
		return 0, err
	}
	return e.writeFrameLocked(body.Bytes())
}

// Write frames payload (id + body already encoded by the caller, e.g.
// an opaque forwarded packet) directly.
func (e *Encoder) Write(payload []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeFrameLocked(payload)
}

func (e *Encoder) writeFrameLocked(body []byte) (int, error) {
	var err error
	if e.compress != nil {
		body, err = e.compress.compress(body)
		if err != nil {
			return 0, err
		}
	}
	lenPrefix := AppendVarInt(nil, len(body))
	if _, err := e.w.Write(lenPrefix); err != nil {
		return 0, err
	}
	n, err := e.w.Write(body)
	return n, err
}

// Sync runs flush while holding the encoder's lock, so a concurrent
// WritePacket cannot interleave a partial frame with the flush: filter
// transitions stay atomic with respect to the packet flowing through.
func (e *Encoder) Sync(flush func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return flush()
}
