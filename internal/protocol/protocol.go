package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeState   = "STATE"
	TypeAct     = "ACT"
	TypeResult  = "RESULT"
	TypeEvent   = "EVENT"
)

// Action kinds carried by ACT.
const (
	ActPlayProject     = "play_project"
	ActProjectAction   = "project_action"
	ActStandardProject = "standard_project"
	ActCorpAction      = "corp_action"
	ActMilestone       = "milestone"
	ActAward           = "award"
	ActPass            = "pass"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
