package server

import "encoding/json"

// Request kinds.
const (
	KindObservation      = "observation"
	KindObservations     = "observations"
	KindAgentObservation = "agent_observation"
	KindAction           = "action"
	KindActions          = "actions"
	KindJointAction      = "joint_action"
	KindSticky           = "sticky"
	KindActionSet        = "action_set"
)

// Request is one message from a policy worker.
type Request struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	// Agent names the controlled player for agent_observation requests.
	Agent   string          `json:"agent,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers exactly one Request and carries its ID.
type Response struct {
	ID      string     `json:"id"`
	OK      bool       `json:"ok"`
	Payload any        `json:"payload,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ActionReply struct {
	Action string `json:"action"`
	Code   int    `json:"code"`
}

type AgentObservationReply struct {
	Agent       string          `json:"agent"`
	Side        string          `json:"side"`
	Mirrored    bool            `json:"mirrored"`
	Observation json.RawMessage `json:"observation"`
}

type ActionSetReply struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
	Sticky  []string `json:"sticky"`
	Digest  string   `json:"digest"`
}

func okResponse(id string, payload any) Response {
	return Response{ID: id, OK: true, Payload: payload}
}

func errorResponse(id string, err error) Response {
	return Response{ID: id, Error: newErrorBody(err)}
}
