package models

import "strings"

// ConnectionType selects how the feed API is accessed.
type ConnectionType string

const (
	ConnectionPublic  ConnectionType = "Public"
	ConnectionPrivate ConnectionType = "Private"
)

// ParseConnectionType accepts "public"/"private" in any case; empty means Public.
func ParseConnectionType(s string) (ConnectionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return ConnectionPublic, true
	case "private":
		return ConnectionPrivate, true
	default:
		return "", false
	}
}

// ChannelCredentials identify one feed channel. An empty AccessKey means public access.
type ChannelCredentials struct {
	ChannelID string `json:"channel_id"`
	AccessKey string `json:"access_key,omitempty"`
}

// Private reports whether requests must carry the api_key parameter.
func (c ChannelCredentials) Private() bool {
	return c.AccessKey != ""
}
