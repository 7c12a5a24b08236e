// Package message defines the plugin-message channel abstractions
// shared between players and backend server connections.
package message

// ChannelIdentifier names a plugin message channel, abstracting over the
// legacy ("MC|Foo") and modern ("namespace:foo") spellings.
type ChannelIdentifier interface {
	Id() string
}

type simpleChannelIdentifier string

func (s simpleChannelIdentifier) Id() string { return string(s) }

// NewChannelIdentifier returns a ChannelIdentifier for a raw channel name.
func NewChannelIdentifier(id string) ChannelIdentifier { return simpleChannelIdentifier(id) }

// ChannelMessageSource is something that can receive plugin messages
// addressed to registered channels.
type ChannelMessageSource interface {
	SendPluginMessage(identifier ChannelIdentifier, data []byte) error
}

// ChannelMessageSink is the counterpart: something plugin messages can
// be forwarded onward to.
type ChannelMessageSink interface {
	ChannelMessageSource
}
