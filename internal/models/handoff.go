package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrMissingChannelID is returned when a handoff carries no channel id in either shape.
var ErrMissingChannelID = errors.New("handoff: channel id is missing")

// Handoff is what the connection form passes to the dashboard: the validated credentials
// and the payload fetched while validating them.
type Handoff struct {
	Credentials ChannelCredentials
	Payload     json.RawMessage
}

// handoffWire is the flat wire shape used at the navigation boundary.
type handoffWire struct {
	Data      json.RawMessage `json:"data,omitempty"`
	ChannelID json.RawMessage `json:"channelId,omitempty"`
	Password  json.RawMessage `json:"password,omitempty"`
}

// MarshalJSON writes the flat shape {data, channelId, password}.
func (h Handoff) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(h.Credentials.ChannelID)
	if err != nil {
		return nil, err
	}
	pw, err := json.Marshal(h.Credentials.AccessKey)
	if err != nil {
		return nil, err
	}
	return json.Marshal(handoffWire{Data: h.Payload, ChannelID: id, Password: pw})
}

// UnmarshalJSON accepts both boundary shapes, see NormalizeHandoff.
func (h *Handoff) UnmarshalJSON(b []byte) error {
	out, err := NormalizeHandoff(b)
	if err != nil {
		return err
	}
	*h = out
	return nil
}

// NormalizeHandoff resolves the two shapes seen at the boundary into one Handoff:
//
//	{"data": {"data": <payload>, "channelId": "...", "password": "..."}}   nested
//	{"data": <payload>, "channelId": "...", "password": "..."}             flat
//
// Each credential field prefers the nested value and falls back to the flat one.
func NormalizeHandoff(raw []byte) (Handoff, error) {
	var outer handoffWire
	if err := json.Unmarshal(raw, &outer); err != nil {
		return Handoff{}, err
	}

	// outer.Data may be a raw feed payload (or not an object at all); only treat it as
	// nested when it carries its own channelId.
	var inner handoffWire
	nested := false
	if isObject(outer.Data) {
		if err := json.Unmarshal(outer.Data, &inner); err == nil {
			_, nested = rawString(inner.ChannelID)
		}
	}

	channelID, ok := rawString(inner.ChannelID)
	if !ok {
		channelID, _ = rawString(outer.ChannelID)
	}
	password, ok := rawString(inner.Password)
	if !ok {
		password, _ = rawString(outer.Password)
	}

	payload := outer.Data
	if nested {
		payload = inner.Data
	}
	if isNull(payload) {
		payload = nil
	}

	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return Handoff{}, ErrMissingChannelID
	}

	return Handoff{
		Credentials: ChannelCredentials{ChannelID: channelID, AccessKey: password},
		Payload:     payload,
	}, nil
}

// rawString decodes a JSON string or number into its text form.
func rawString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}
