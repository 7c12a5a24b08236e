package proxy

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
	"github.com/skTanky/Velocity-CTD/pkg/util/netutil"
	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

// modernForwardingVersion is the single version byte used in the
// velocity:player_info login plugin message payload.
const modernForwardingVersion = 1

const modernForwardingChannel = "velocity:player_info"

// rewriteLegacyHandshake rewrites the handshake's server address field
// for LEGACY forwarding, embedding the client's real IP and (if the
// profile is already known, e.g. after online-mode auth) its properties
// null-byte separated after the configured hostname.
func rewriteLegacyHandshake(hostname string, clientAddr net.Addr, profile *gameprofile.GameProfile) (string, error) {
	props, err := json.Marshal(profile.Properties)
	if err != nil {
		return "", fmt.Errorf("marshal forwarded properties: %w", err)
	}
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s",
		hostname, netutil.Host(clientAddr), uuid.Undashed(profile.Id), props), nil
}

// rewriteBungeeGuardHandshake is LEGACY forwarding plus a shared-secret
// property appended to the profile, letting the backend verify the
// forwarded data actually came from this proxy.
func rewriteBungeeGuardHandshake(hostname string, clientAddr net.Addr, profile *gameprofile.GameProfile, secret []byte) (string, error) {
	withSecret := profile.WithProperty(gameprofile.Property{
		Name:  "bungeeguard-token",
		Value: string(secret),
	})
	return rewriteLegacyHandshake(hostname, clientAddr, &withSecret)
}

// createModernForwardingData builds the velocity:player_info login
// plugin message payload: version, client address, profile, properties
// - all HMAC-SHA256 signed with the shared secret so the backend can
// verify the proxy produced it.
func createModernForwardingData(secret []byte, clientAddr net.Addr, profile *gameprofile.GameProfile, playerProtocol proto.Protocol) ([]byte, error) {
	body := new(bytes.Buffer)
	if err := codec.WriteVarInt(body, modernForwardingVersion); err != nil {
		return nil, err
	}
	if err := codec.WriteString(body, netutil.Host(clientAddr)); err != nil {
		return nil, err
	}
	if err := codec.WriteUUID(body, profile.Id); err != nil {
		return nil, err
	}
	if err := codec.WriteString(body, profile.Name); err != nil {
		return nil, err
	}
	if err := codec.WriteVarInt(body, len(profile.Properties)); err != nil {
		return nil, err
	}
	for _, p := range profile.Properties {
		if err := codec.WriteString(body, p.Name); err != nil {
			return nil, err
		}
		if err := codec.WriteString(body, p.Value); err != nil {
			return nil, err
		}
		hasSig := p.Signature != ""
		if err := codec.WriteBool(body, hasSig); err != nil {
			return nil, err
		}
		if hasSig {
			if err := codec.WriteString(body, p.Signature); err != nil {
				return nil, err
			}
		}
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body.Bytes())
	signature := mac.Sum(nil)

	out := new(bytes.Buffer)
	out.Write(signature)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// verifyModernForwardingData checks the HMAC-SHA256 signature prefixing
// a velocity:player_info payload, as a backend would.
func verifyModernForwardingData(secret []byte, payload []byte) (ok bool, body []byte) {
	if len(payload) < sha256.Size {
		return false, nil
	}
	signature, body := payload[:sha256.Size], payload[sha256.Size:]
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(signature, mac.Sum(nil)), body
}

// forwardingModeFor resolves the effective forwarding mode for a target
// server, honoring per-server overrides in config.Forwarding.
func forwardingModeFor(cfg *config.Config, serverName string) config.ForwardingMode {
	return cfg.Forwarding.ModeFor(serverName)
}
