// Package protocol holds the JSON message vocabulary shared by the relay
// and its host/viewer clients. Every frame is a JSON object with a "type"
// discriminator; anything not listed here is an opaque command or
// telemetry frame forwarded verbatim.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// host -> relay
const (
	TypeRegisterPC = "register_pc"
	TypePauseState = "pause_state"
)

// viewer -> relay
const (
	TypeConnectMobile  = "connect_mobile"
	TypeRequestControl = "request_control"
)

// relay -> client
const (
	TypeRegistered      = "registered"
	TypeConnected       = "connected"
	TypeError           = "error"
	TypeControlGranted  = "control_granted"
	TypeAuthFailed      = "auth_failed"
	TypeControlRequired = "control_required"
	TypePCOffline       = "pc_offline"
)

var ErrNoType = errors.New("message has no type")

type Envelope struct {
	Type string `json:"type"`
}

// ParseType returns the type discriminator of a raw frame.
func ParseType(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("bad envelope: %w", err)
	}
	if env.Type == "" {
		return "", ErrNoType
	}
	return env.Type, nil
}

type RegisterPC struct {
	Type          string `json:"type"`
	UniqueID      string `json:"uniqueId"`
	Password      string `json:"password"`
	GuestPassword string `json:"guestPassword"`
}

type ConnectMobile struct {
	Type     string `json:"type"`
	UniqueID string `json:"uniqueId"`
}

type RequestControl struct {
	Type     string `json:"type"`
	Password string `json:"password"`
}

type Notice struct {
	Type string `json:"type"`
}

type Connected struct {
	Type     string `json:"type"`
	PCOnline bool   `json:"pcOnline"`
}

type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode builds a frame of the given type from payload's JSON object
// fields. A nil payload yields {"type":...}.
func Encode(msgType string, payload any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}
	t, _ := json.Marshal(msgType)
	fields["type"] = t
	return json.Marshal(fields)
}
