// Package proto defines the wire-level types shared by the codec,
// packet registry and session handlers: protocol versions, directions
// and the packet contract itself.
package proto

// Protocol is a Minecraft Java Edition protocol version number, totally
// ordered the same way Mojang orders them (not strictly numerically for
// every historical release, but monotonically for the range this proxy
// targets).
type Protocol int

// Supported protocol versions, oldest first. Packet id version ranges in
// pkg/proto/state are expressed in terms of these constants.
const (
	Minecraft_1_7_2  Protocol = 4
	Minecraft_1_8    Protocol = 47
	Minecraft_1_9    Protocol = 107
	Minecraft_1_11   Protocol = 315
	Minecraft_1_12_2 Protocol = 340
	Minecraft_1_13   Protocol = 393
	Minecraft_1_16   Protocol = 735
	Minecraft_1_19   Protocol = 759
	Minecraft_1_20_2 Protocol = 764
	Minecraft_1_20_3 Protocol = 765
)

// Unknown is returned when a protocol version could not be matched.
const Unknown Protocol = -1

// Lower reports whether p is an older protocol than other.
func (p Protocol) Lower(other Protocol) bool { return p < other }

// GreaterEqual reports whether p is the same as or newer than other.
func (p Protocol) GreaterEqual(other Protocol) bool { return p >= other }

func (p Protocol) String() string {
	switch p {
	case Minecraft_1_7_2:
		return "1.7.2"
	case Minecraft_1_8:
		return "1.8"
	case Minecraft_1_9:
		return "1.9"
	case Minecraft_1_11:
		return "1.11"
	case Minecraft_1_12_2:
		return "1.12.2"
	case Minecraft_1_13:
		return "1.13"
	case Minecraft_1_16:
		return "1.16"
	case Minecraft_1_19:
		return "1.19"
	case Minecraft_1_20_2:
		return "1.20.2"
	case Minecraft_1_20_3:
		return "1.20.3+"
	default:
		return "unknown"
	}
}

// Direction is which side of the proxy a packet travels toward.
type Direction uint8

const (
	// ServerBound packets travel from client to server (proxy reads them
	// from the player socket, writes them to the backend socket).
	ServerBound Direction = iota
	// ClientBound packets travel from server to client.
	ClientBound
)

func (d Direction) String() string {
	if d == ServerBound {
		return "ServerBound"
	}
	return "ClientBound"
}
