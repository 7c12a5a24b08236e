package proxy

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
)

// Authenticator verifies an online-mode login against Mojang's session
// server, mirroring the "Has the client authenticated with Mojang?" join
// check a vanilla server performs.
type Authenticator interface {
	HasJoined(ctx context.Context, username string, serverHash string) (*gameprofile.GameProfile, error)
}

const mojangHasJoinedURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

type mojangAuthenticator struct {
	client *fasthttp.Client
}

// NewAuthenticator returns an Authenticator backed by Mojang's session
// server, using a shared fasthttp.Client for connection reuse across
// logins.
func NewAuthenticator() Authenticator {
	return &mojangAuthenticator{client: &fasthttp.Client{
		MaxConnsPerHost:     256,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		MaxIdleConnDuration: 30 * time.Second,
	}}
}

func (a *mojangAuthenticator) HasJoined(ctx context.Context, username, serverHash string) (*gameprofile.GameProfile, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", serverHash)
	uri := mojangHasJoinedURL + "?" + q.Encode()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	var err error
	if ok {
		err = a.client.DoDeadline(req, resp, deadline)
	} else {
		err = a.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("calling Mojang session server: %w", err)
	}

	if resp.StatusCode() == fasthttp.StatusNoContent || len(resp.Body()) == 0 {
		return nil, nil // not authenticated
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("mojang session server responded with status %d", resp.StatusCode())
	}

	var profile gameprofile.GameProfile
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		return nil, fmt.Errorf("decoding session server response: %w", err)
	}
	return &profile, nil
}

// serverIDHash computes the SHA-1 "server hash" the client and proxy
// both derive from the empty server id, the shared secret, and the RSA
// public key. Mojang's client treats the raw digest as a signed
// two's-complement big integer and hex-encodes that, so a digest with
// its top bit set prints as a negative hex string, not the plain SHA-1
// hex digest.
func serverIDHash(sharedSecret, publicKey []byte) string {
	h := sha1.New()
	h.Write([]byte{}) // server id is always the empty string for Notchian auth
	h.Write(sharedSecret)
	h.Write(publicKey)
	sum := h.Sum(nil)

	negative := sum[0]&0x80 != 0
	if negative {
		sum = twosComplementNeg(sum)
	}
	hex := new(big.Int).SetBytes(sum).Text(16)
	if negative {
		return "-" + hex
	}
	return hex
}

// twosComplementNeg returns the two's-complement negation of b,
// i.e. the magnitude of the negative number b encodes.
func twosComplementNeg(b []byte) []byte {
	out := make([]byte, len(b))
	carry := true
	for i := len(b) - 1; i >= 0; i-- {
		v := ^b[i]
		if carry {
			v++
			carry = v == 0
		}
		out[i] = v
	}
	return out
}
