package proto

import "io"

// Packet is implemented by every tagged-variant wire message this proxy
// must interpret. Types outside this set flow through as opaque payloads
// (see PacketContext.KnownPacket).
type Packet interface {
	// Encode writes the packet body (not the id) to w for the given context.
	Encode(c *PacketContext, w io.Writer) error
	// Decode reads the packet body (not the id) from r for the given context.
	Decode(c *PacketContext, r io.Reader) error
}

// PacketContext carries the metadata needed to interpret a single frame:
// the direction and protocol it was read under, which concrete packet id
// it decoded to (or whether it matched any known id at all), and - for
// unknown packets, or ones callers want to re-emit verbatim - the raw
// payload bytes including the id.
type PacketContext struct {
	Direction   Direction
	Protocol    Protocol
	PacketID    int
	KnownPacket bool
	Packet      Packet
	Payload     []byte // full frame body, id included
}
