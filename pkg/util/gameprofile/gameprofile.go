// Package gameprofile models a Mojang game profile: a player's identity
// as returned by the session authenticator or synthesized offline.
package gameprofile

import "github.com/skTanky/Velocity-CTD/pkg/util/uuid"

// Property is a single signed or unsigned profile property, e.g. "textures".
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// GameProfile is a player's authenticated (or synthesized) identity.
type GameProfile struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

// WithProperty returns a copy of p with property appended.
func (p GameProfile) WithProperty(prop Property) GameProfile {
	cp := p
	cp.Properties = append(append([]Property{}, p.Properties...), prop)
	return cp
}
