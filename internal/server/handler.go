package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/agents"
	"github.com/zeusync/fieldflip/internal/core/errs"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/core/observation"
	"github.com/zeusync/fieldflip/internal/core/symmetry"
)

// Mirror answers mirror requests against one action set. It holds no
// per-request state and is safe for concurrent use.
type Mirror struct {
	set     *actionset.Set
	env     config.EnvConfig
	workers int
	logger  log.Log
}

func NewMirror(set *actionset.Set, env config.EnvConfig, workers int, logger log.Log) *Mirror {
	return &Mirror{
		set:     set,
		env:     env,
		workers: workers,
		logger:  logger.With(log.String("component", "mirror"), log.String("action_set", set.Name())),
	}
}

// Handle runs one request. Failures are reported in the response, never as
// a transport error.
func (m *Mirror) Handle(ctx context.Context, req Request) Response {
	payload, err := m.handle(ctx, req)
	if err != nil {
		m.logger.Debug("Request failed",
			log.String("request_id", req.ID),
			log.String("kind", req.Kind),
			log.Error(err))
		return errorResponse(req.ID, err)
	}
	return okResponse(req.ID, payload)
}

func (m *Mirror) handle(ctx context.Context, req Request) (any, error) {
	switch req.Kind {
	case KindObservation:
		return m.observation(req.Payload)
	case KindObservations:
		return m.observations(ctx, req.Payload)
	case KindAgentObservation:
		return m.agentObservation(req.Agent, req.Payload)
	case KindAction:
		return m.action(req.Payload)
	case KindActions:
		return m.actions(req.Payload)
	case KindJointAction:
		return m.jointAction(req.Payload)
	case KindSticky:
		return m.sticky(req.Payload)
	case KindActionSet:
		return m.actionSet(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, req.Kind)
	}
}

func (m *Mirror) observation(payload json.RawMessage) (json.RawMessage, error) {
	o, err := observation.Decode(payload)
	if err != nil {
		return nil, err
	}
	mirrored, err := symmetry.MirrorObservation(o, m.set)
	if err != nil {
		return nil, err
	}
	return observation.Encode(mirrored)
}

func (m *Mirror) observations(ctx context.Context, payload json.RawMessage) ([]json.RawMessage, error) {
	var raws []json.RawMessage
	if err := decodePayload(payload, &raws); err != nil {
		return nil, err
	}

	obs := make([]*observation.Observation, len(raws))
	for i, raw := range raws {
		o, err := observation.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		obs[i] = o
	}

	mirrored, err := symmetry.MirrorObservations(ctx, obs, m.set, m.workers)
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, len(mirrored))
	for i, o := range mirrored {
		if out[i], err = observation.Encode(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// agentObservation mirrors only for agents playing the right side, so every
// policy sees itself attacking the same goal.
func (m *Mirror) agentObservation(agent string, payload json.RawMessage) (*AgentObservationReply, error) {
	side, err := m.env.AgentSide(agent)
	if err != nil {
		return nil, err
	}
	o, err := observation.Decode(payload)
	if err != nil {
		return nil, err
	}

	reply := &AgentObservationReply{Agent: agent, Side: side.String()}
	if side == observation.SideRight {
		if o, err = symmetry.MirrorObservation(o, m.set); err != nil {
			return nil, err
		}
		reply.Mirrored = true
	}
	if reply.Observation, err = observation.Encode(o); err != nil {
		return nil, err
	}
	return reply, nil
}

func (m *Mirror) action(payload json.RawMessage) (*ActionReply, error) {
	var raw any
	if err := decodePayload(payload, &raw); err != nil {
		return nil, err
	}
	a, err := symmetry.MirrorAction(raw, m.set)
	if err != nil {
		return nil, err
	}
	return m.reply(a)
}

// actions accepts either a list of actions or a per-agent map.
func (m *Mirror) actions(payload json.RawMessage) (any, error) {
	var raw any
	if err := decodePayload(payload, &raw); err != nil {
		return nil, err
	}

	switch v := raw.(type) {
	case []any:
		mirrored, err := symmetry.MirrorActions(v, m.set)
		if err != nil {
			return nil, err
		}
		out := make([]*ActionReply, len(mirrored))
		for i, a := range mirrored {
			if out[i], err = m.reply(a); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]any:
		mirrored, err := symmetry.MirrorJointAction(v, m.set)
		if err != nil {
			return nil, err
		}
		out := make(map[string]*ActionReply, len(mirrored))
		for agent, a := range mirrored {
			if out[agent], err = m.reply(a); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: actions payload must be a list or an object, got %T", ErrBadRequest, raw)
	}
}

// sticky takes a single bit vector or a list of them, one per agent, and
// answers in the same shape. An empty list is an empty batch.
// jointAction builds the simulator's ordered joint action from the actions of
// every controlled agent. Right-side agents act on a mirrored field, so only
// their actions are mirrored back. The payload is either a per-agent object
// or a list in player_i order.
func (m *Mirror) jointAction(payload json.RawMessage) ([]*ActionReply, error) {
	var raw any
	if err := decodePayload(payload, &raw); err != nil {
		return nil, err
	}

	names := m.env.AgentNames()
	var perAgent map[string]any
	switch v := raw.(type) {
	case map[string]any:
		perAgent = v
	case []any:
		var err error
		if perAgent, err = agents.Split(v, names); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: joint action payload must be a list or an object, got %T", ErrBadRequest, raw)
	}

	ordered, err := agents.Ordered(perAgent, names)
	if err != nil {
		return nil, err
	}
	if len(perAgent) != len(names) {
		return nil, fmt.Errorf("%w: joint action has %d agents, %d are controlled",
			errs.ErrInvalidArgument, len(perAgent), len(names))
	}

	out := make([]*ActionReply, len(names))
	for i, name := range names {
		side, err := m.env.AgentSide(name)
		if err != nil {
			return nil, err
		}
		var a actionset.Action
		if side == observation.SideRight {
			a, err = symmetry.MirrorAction(ordered[i], m.set)
		} else {
			a, err = m.set.Canonical(ordered[i])
		}
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		if out[i], err = m.reply(a); err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
	}
	return out, nil
}

func (m *Mirror) sticky(payload json.RawMessage) (any, error) {
	var bits []int
	if err := json.Unmarshal(payload, &bits); err == nil && len(bits) > 0 {
		return symmetry.MirrorSticky(bits, m.set)
	}

	var batch [][]int
	if err := decodePayload(payload, &batch); err != nil {
		return nil, err
	}
	out := make([][]int, len(batch))
	for i, v := range batch {
		mirrored, err := symmetry.MirrorSticky(v, m.set)
		if err != nil {
			return nil, fmt.Errorf("sticky vector %d: %w", i, err)
		}
		out[i] = mirrored
	}
	return out, nil
}

func (m *Mirror) actionSet() *ActionSetReply {
	reply := &ActionSetReply{
		Name:   m.set.Name(),
		Digest: fmt.Sprintf("%016x", m.set.Digest()),
	}
	for _, a := range m.set.Actions() {
		reply.Actions = append(reply.Actions, a.String())
	}
	for _, a := range m.set.StickyActions() {
		reply.Sticky = append(reply.Sticky, a.String())
	}
	return reply
}

func (m *Mirror) reply(a actionset.Action) (*ActionReply, error) {
	code, err := m.set.Code(a)
	if err != nil {
		return nil, err
	}
	return &ActionReply{Action: a.String(), Code: code}, nil
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("%w: payload is required", ErrBadRequest)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
