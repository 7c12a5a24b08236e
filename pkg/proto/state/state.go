// Package state implements the packet registry: the three-dimensional
// lookup from (state, direction, protocol version) to a packet id, and
// back again.
package state

import (
	"fmt"
	"reflect"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
)

// Registry is one of the five session states a connection passes
// through (Handshake, Status, Login, Config, Play). Each holds its own
// per-direction packet id table.
type Registry struct {
	Name        string
	ServerBound *PacketRegistry
	ClientBound *PacketRegistry
}

func newRegistry(name string) *Registry {
	return &Registry{
		Name:        name,
		ServerBound: newPacketRegistry(proto.ServerBound),
		ClientBound: newPacketRegistry(proto.ClientBound),
	}
}

// The five session states a connection moves through in order.
var (
	Handshake = newRegistry("Handshake")
	Status    = newRegistry("Status")
	Login     = newRegistry("Login")
	Config    = newRegistry("Config")
	Play      = newRegistry("Play")
)

// ByDirection returns the per-direction table for d.
func (r *Registry) ByDirection(d proto.Direction) *PacketRegistry {
	if d == proto.ServerBound {
		return r.ServerBound
	}
	return r.ClientBound
}

// PacketSupplier constructs a zero-value instance of a registered packet
// type, ready to have Decode called on it.
type PacketSupplier func() proto.Packet

// PacketMapping declares the id a packet type occupies starting at
// Protocol, holding until the next mapping for the same packet (or
// forever, if it is the last mapping registered for that type).
type PacketMapping struct {
	ID       int
	Protocol proto.Protocol
}

type registration struct {
	supplier PacketSupplier
	typ      reflect.Type
	mappings []PacketMapping
}

// PacketRegistry is the id<->type table for one (state, direction) pair,
// keyed internally by protocol version range.
type PacketRegistry struct {
	direction proto.Direction

	registrations []*registration

	// versions caches the resolved table per protocol version the first
	// time it is needed; rebuilt whenever a new registration is added.
	versions map[proto.Protocol]*protocolRegistry
}

type protocolRegistry struct {
	idToSupplier map[int]PacketSupplier
	idToType     map[int]reflect.Type
	typeToID     map[reflect.Type]int
}

func newPacketRegistry(d proto.Direction) *PacketRegistry {
	return &PacketRegistry{
		direction: d,
		versions:  map[proto.Protocol]*protocolRegistry{},
	}
}

// Register adds a packet type to the table. mappings must be given in
// ascending Protocol order. Register panics if the resulting table would
// assign one id to two different packet types for the same protocol
// version - an "overlapping ranges" configuration error that must be
// caught at startup, never silently at runtime.
func Register(r *PacketRegistry, supplier PacketSupplier, mappings ...PacketMapping) {
	if len(mappings) == 0 {
		panic(fmt.Sprintf("packet registration for %T has no version mappings", supplier()))
	}
	reg := &registration{
		supplier: supplier,
		typ:      reflect.TypeOf(supplier()),
		mappings: mappings,
	}
	r.registrations = append(r.registrations, reg)
	r.versions = map[proto.Protocol]*protocolRegistry{} // invalidate cache
	// Every id range starts at some mapping's Protocol, so resolving each
	// of those versions surfaces any overlap now rather than on a later
	// lookup.
	for _, other := range r.registrations {
		for _, m := range other.mappings {
			r.resolve(m.Protocol)
		}
	}
}

// resolve builds (and caches) the concrete id table for protocol.
func (r *PacketRegistry) resolve(protocol proto.Protocol) *protocolRegistry {
	if pr, ok := r.versions[protocol]; ok {
		return pr
	}
	pr := &protocolRegistry{
		idToSupplier: map[int]PacketSupplier{},
		idToType:     map[int]reflect.Type{},
		typeToID:     map[reflect.Type]int{},
	}
	for _, reg := range r.registrations {
		id, ok := activeID(reg.mappings, protocol)
		if !ok {
			continue
		}
		if existing, taken := pr.idToType[id]; taken && existing != reg.typ {
			panic(fmt.Sprintf(
				"overlapping packet id range: id 0x%02X for protocol %s claimed by both %s and %s",
				id, protocol, existing, reg.typ))
		}
		pr.idToSupplier[id] = reg.supplier
		pr.idToType[id] = reg.typ
		pr.typeToID[reg.typ] = id
	}
	r.versions[protocol] = pr
	return pr
}

func activeID(mappings []PacketMapping, protocol proto.Protocol) (int, bool) {
	var id int
	found := false
	for _, m := range mappings {
		if protocol >= m.Protocol {
			id = m.ID
			found = true
			continue
		}
		break
	}
	return id, found
}

// CreatePacket returns a fresh zero-value packet for id under protocol,
// or false if no packet type claims that id (an unknown packet - passed
// through verbatim).
func (r *PacketRegistry) CreatePacket(id int, protocol proto.Protocol) (proto.Packet, bool) {
	pr := r.resolve(protocol)
	supplier, ok := pr.idToSupplier[id]
	if !ok {
		return nil, false
	}
	return supplier(), true
}

// PacketID returns the wire id p occupies under protocol. The lookup is
// by concrete Go type, so two packet values of the same type always
// resolve to the same id for a given protocol.
func (r *PacketRegistry) PacketID(p proto.Packet, protocol proto.Protocol) (int, bool) {
	pr := r.resolve(protocol)
	id, ok := pr.typeToID[reflect.TypeOf(p)]
	return id, ok
}

// IsKnown reports whether id is a registered packet under protocol.
func (r *PacketRegistry) IsKnown(id int, protocol proto.Protocol) bool {
	pr := r.resolve(protocol)
	_, ok := pr.idToType[id]
	return ok
}
