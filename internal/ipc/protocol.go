package ipc

import "encoding/json"

// Commands understood by the config resolver.
const (
	CommandPing    = "ping"
	CommandResolve = "resolve"
)

// Request is one JSON line sent by a client.
type Request struct {
	Command string `json:"command"`
	Module  string `json:"module,omitempty"`
	Section string `json:"section,omitempty"`
}

// Response is one JSON line returned by the server.
type Response struct {
	OK      bool            `json:"ok"`
	Config  json.RawMessage `json:"config,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}
