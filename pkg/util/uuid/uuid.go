// Package uuid wraps google/uuid with the UUID constructions Minecraft
// Java Edition expects: dash-stripped wire form and the offline-mode
// derivation from a player name.
package uuid

import (
	"crypto/md5"

	guuid "github.com/google/uuid"
)

// UUID is a Minecraft player or entity UUID.
type UUID = guuid.UUID

// Nil is the zero UUID.
var Nil = guuid.Nil

// Parse parses s, which may or may not contain dashes, into a UUID.
func Parse(s string) (UUID, error) {
	return guuid.Parse(s)
}

// New generates a random (v4) UUID.
func New() UUID {
	return guuid.New()
}

// OfflinePlayer derives the deterministic UUID Minecraft uses for
// offline-mode (non-authenticated) logins: an MD5 hash of
// "OfflinePlayer:<name>" with the version nibble forced to 3 and the
// variant forced to RFC 4122 (the "2" bits), i.e. a UUID v3.
func OfflinePlayer(name string) UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // RFC 4122 variant
	var u UUID
	copy(u[:], sum[:])
	return u
}

// Undashed returns the UUID without its separating dashes, the form used
// in LEGACY forwarding handshakes.
func Undashed(u UUID) string {
	s := u.String()
	out := make([]byte, 0, 32)
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
