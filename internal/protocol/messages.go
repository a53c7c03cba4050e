package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	GameID          string `json:"game_id"`
	Player          int    `json:"player"`
	Name            string `json:"name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	GameID          string         `json:"game_id"`
	Player          int            `json:"player"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type CatalogDigests struct {
	ProjectsDigest string `json:"projects_digest"`
	CorpsDigest    string `json:"corps_digest"`
	TuningDigest   string `json:"tuning_digest,omitempty"`
}

// STATE (server -> client): the player's redacted view of the game document.
type StateMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	GameID          string          `json:"game_id"`
	Seq             int             `json:"seq"`
	State           json.RawMessage `json:"state"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	ReqID           string    `json:"req_id"`
	Action          ActionReq `json:"action"`
}

// ActionReq is one fully gathered player decision. Data is the opaque payload
// produced by the project's client hook.
type ActionReq struct {
	Kind            string          `json:"kind"`
	Project         int             `json:"project,omitempty"`
	Fee             map[string]int  `json:"fee,omitempty"`
	StandardProject int             `json:"standard_project,omitempty"`
	Pos             *int            `json:"pos,omitempty"`
	Sell            []int           `json:"sell,omitempty"`
	Milestone       string          `json:"milestone,omitempty"`
	Award           string          `json:"award,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Seq             int    `json:"seq,omitempty"`
}

// EVENT (server -> client)
type EventMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	GameID          string          `json:"game_id"`
	Seq             int             `json:"seq"`
	Event           json.RawMessage `json:"event"`
}
