package server

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/core/observation"
)

func newTestMirror() *Mirror {
	env := config.EnvConfig{LeftAgents: 1, RightAgents: 1}
	return NewMirror(actionset.Default(), env, 2, log.NewNop())
}

func readObservation(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := os.ReadFile("testdata/observation.json")
	require.NoError(t, err)
	return raw
}

func handle(t *testing.T, m *Mirror, kind string, payload string) Response {
	t.Helper()
	req := Request{ID: "req-1", Kind: kind}
	if payload != "" {
		req.Payload = json.RawMessage(payload)
	}
	resp := m.Handle(context.Background(), req)
	assert.Equal(t, "req-1", resp.ID)
	return resp
}

func requireOK(t *testing.T, resp Response) {
	t.Helper()
	require.Truef(t, resp.OK, "unexpected error: %+v", resp.Error)
	require.Nil(t, resp.Error)
}

func requireCode(t *testing.T, resp Response, code string) {
	t.Helper()
	require.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, code, resp.Error.Code, resp.Error.Message)
	assert.Nil(t, resp.Payload)
}

func TestHandleObservation(t *testing.T) {
	m := newTestMirror()

	resp := handle(t, m, KindObservation, string(readObservation(t)))
	requireOK(t, resp)

	raw, ok := resp.Payload.(json.RawMessage)
	require.True(t, ok)
	o, err := observation.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, observation.Vec3{-10, 5, 0.3}, o.Ball)
	assert.Equal(t, observation.Vec3{0.01, -0.02, 0.5}, o.BallRotation)
	assert.Equal(t, observation.SideRight, o.BallOwnedTeam)
	assert.Equal(t, 2, o.BallOwnedPlayer)
	assert.Equal(t, observation.Score{1, 2}, o.Score)
	assert.Len(t, o.Left.Positions, 2)
	assert.Len(t, o.Right.Positions, 3)
	assert.Nil(t, o.Left.Agents)

	require.NotNil(t, o.Right.Agents)
	assert.Equal(t, []int{1, 2}, o.Right.Agents.ControlledPlayers)
	assert.Equal(t, [][]int{
		{0, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0, 0, 1, 0, 1},
	}, o.Right.Agents.StickyActions)
}

func TestHandleObservationErrors(t *testing.T) {
	m := newTestMirror()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(readObservation(t), &doc))
	delete(doc, "ball")
	noBall, err := json.Marshal(doc)
	require.NoError(t, err)
	requireCode(t, handle(t, m, KindObservation, string(noBall)), CodeMissingField)

	doc["ball"] = []float64{1, 2}
	shortBall, err := json.Marshal(doc)
	require.NoError(t, err)
	requireCode(t, handle(t, m, KindObservation, string(shortBall)), CodeInvalidArgument)

	requireCode(t, handle(t, m, KindObservation, `{"ball":`), CodeInvalidArgument)
}

func TestHandleObservations(t *testing.T) {
	m := newTestMirror()
	obs := string(readObservation(t))

	resp := handle(t, m, KindObservations, "["+obs+","+obs+"]")
	requireOK(t, resp)
	raws, ok := resp.Payload.([]json.RawMessage)
	require.True(t, ok)
	require.Len(t, raws, 2)
	for _, raw := range raws {
		o, err := observation.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, observation.Vec3{-10, 5, 0.3}, o.Ball)
	}

	resp = handle(t, m, KindObservations, "["+obs+",{}]")
	requireCode(t, resp, CodeMissingField)
	assert.Contains(t, resp.Error.Message, "observation 1")

	requireCode(t, handle(t, m, KindObservations, ""), CodeBadRequest)
}

func TestHandleAgentObservation(t *testing.T) {
	m := newTestMirror()
	payload := readObservation(t)

	resp := m.Handle(context.Background(), Request{ID: "a", Kind: KindAgentObservation, Agent: "player_0", Payload: payload})
	requireOK(t, resp)
	reply, ok := resp.Payload.(*AgentObservationReply)
	require.True(t, ok)
	assert.Equal(t, "left", reply.Side)
	assert.False(t, reply.Mirrored)
	o, err := observation.Decode(reply.Observation)
	require.NoError(t, err)
	assert.Equal(t, observation.Vec3{10, -5, 0.3}, o.Ball)

	resp = m.Handle(context.Background(), Request{ID: "b", Kind: KindAgentObservation, Agent: "player_1", Payload: payload})
	requireOK(t, resp)
	reply = resp.Payload.(*AgentObservationReply)
	assert.Equal(t, "right", reply.Side)
	assert.True(t, reply.Mirrored)
	o, err = observation.Decode(reply.Observation)
	require.NoError(t, err)
	assert.Equal(t, observation.Vec3{-10, 5, 0.3}, o.Ball)

	resp = m.Handle(context.Background(), Request{ID: "c", Kind: KindAgentObservation, Agent: "player_2", Payload: payload})
	requireCode(t, resp, CodeInvalidArgument)
}

func TestHandleAction(t *testing.T) {
	m := newTestMirror()

	cases := map[string]ActionReply{
		`1`:          {Action: "right", Code: 5},
		`"top_left"`: {Action: "bottom_right", Code: 6},
		`"SPRINT"`:   {Action: "sprint", Code: 13},
		`12`:         {Action: "shot", Code: 12},
		`0`:          {Action: "idle", Code: 0},
	}
	for payload, want := range cases {
		resp := handle(t, m, KindAction, payload)
		requireOK(t, resp)
		assert.Equal(t, &want, resp.Payload, payload)
	}

	requireCode(t, handle(t, m, KindAction, `19`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindAction, `1.5`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindAction, `"moonwalk"`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindAction, ``), CodeBadRequest)
}

func TestHandleActions(t *testing.T) {
	m := newTestMirror()

	resp := handle(t, m, KindActions, `[1, "sprint", 0]`)
	requireOK(t, resp)
	assert.Equal(t, []*ActionReply{
		{Action: "right", Code: 5},
		{Action: "sprint", Code: 13},
		{Action: "idle", Code: 0},
	}, resp.Payload)

	resp = handle(t, m, KindActions, `{"player_0": 3, "player_1": "bottom_left"}`)
	requireOK(t, resp)
	assert.Equal(t, map[string]*ActionReply{
		"player_0": {Action: "bottom", Code: 7},
		"player_1": {Action: "top_right", Code: 4},
	}, resp.Payload)

	resp = handle(t, m, KindActions, `[1, 42]`)
	requireCode(t, resp, CodeInvalidArgument)
	assert.Contains(t, resp.Error.Message, "action 1")

	requireCode(t, handle(t, m, KindActions, `7`), CodeBadRequest)
}

func TestHandleJointAction(t *testing.T) {
	m := newTestMirror()

	// player_0 plays left and passes through, player_1 plays right and is mirrored
	resp := handle(t, m, KindJointAction, `{"player_1": 1, "player_0": 1}`)
	requireOK(t, resp)
	assert.Equal(t, []*ActionReply{
		{Action: "left", Code: 1},
		{Action: "right", Code: 5},
	}, resp.Payload)

	resp = handle(t, m, KindJointAction, `["top", "top"]`)
	requireOK(t, resp)
	assert.Equal(t, []*ActionReply{
		{Action: "top", Code: 3},
		{Action: "bottom", Code: 7},
	}, resp.Payload)

	requireCode(t, handle(t, m, KindJointAction, `{"player_0": 1}`), CodeMissingField)
	requireCode(t, handle(t, m, KindJointAction, `{"player_0": 1, "player_1": 2, "player_7": 0}`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindJointAction, `[1]`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindJointAction, `"left"`), CodeBadRequest)

	resp = handle(t, m, KindJointAction, `{"player_0": 1, "player_1": 99}`)
	requireCode(t, resp, CodeInvalidArgument)
	assert.Contains(t, resp.Error.Message, "agent player_1")
}

func TestHandleSticky(t *testing.T) {
	m := newTestMirror()

	resp := handle(t, m, KindSticky, `[1, 0, 0, 0, 0, 0, 0, 0, 1, 0]`)
	requireOK(t, resp)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 0, 0, 1, 0}, resp.Payload)

	resp = handle(t, m, KindSticky, `[[1, 0, 0, 0, 0, 0, 0, 0, 1, 0], [0, 0, 0, 1, 0, 0, 0, 0, 0, 1]]`)
	requireOK(t, resp)
	assert.Equal(t, [][]int{
		{0, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0, 0, 1, 0, 1},
	}, resp.Payload)

	requireCode(t, handle(t, m, KindSticky, `[1, 0, 1]`), CodeInvalidArgument)
	requireCode(t, handle(t, m, KindSticky, `[[1, 0]]`), CodeInvalidArgument)

	resp = handle(t, m, KindSticky, `[]`)
	requireOK(t, resp)
	assert.Equal(t, [][]int{}, resp.Payload)
	requireCode(t, handle(t, m, KindSticky, `null`), CodeBadRequest)
	requireCode(t, handle(t, m, KindSticky, `"bits"`), CodeBadRequest)
}

func TestHandleActionSet(t *testing.T) {
	m := newTestMirror()

	resp := handle(t, m, KindActionSet, "")
	requireOK(t, resp)
	reply, ok := resp.Payload.(*ActionSetReply)
	require.True(t, ok)
	assert.Equal(t, actionset.DefaultSet, reply.Name)
	assert.Len(t, reply.Actions, 19)
	assert.Equal(t, "right", reply.Actions[5])
	assert.Len(t, reply.Sticky, 10)
	assert.Len(t, reply.Digest, 16)
}

func TestHandleUnknownKind(t *testing.T) {
	resp := handle(t, newTestMirror(), "teleport", "{}")
	requireCode(t, resp, CodeBadRequest)
	assert.ErrorIs(t, ErrUnknownKind, ErrBadRequest)
}
