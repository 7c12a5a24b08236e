// Package util holds small helpers shared across the proxy that don't
// belong to a more specific package.
package util

import (
	"go.minekube.com/common/minecraft/component/codec/json"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
)

// JsonCodec returns the chat component JSON codec appropriate for
// protocol, matching the encoding vanilla clients of that version
// expect for Disconnect/Chat/Title message fields.
func JsonCodec(protocol proto.Protocol) *json.Codec {
	return &json.Codec{Protocol: int(protocol)}
}
