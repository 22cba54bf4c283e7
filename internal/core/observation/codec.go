package observation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zeusync/fieldflip/internal/core/errs"
)

//go:embed observation.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("observation.schema.json", schemaSource)

// Decode parses the simulator's key/value observation. Absent required keys
// fail with errs.ErrMissingField, malformed values with errs.ErrInvalidArgument.
func Decode(data []byte) (*Observation, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, classify(err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}

	d := decoder{fields: fields}
	o := &Observation{}
	d.get("ball", &o.Ball)
	d.get("ball_direction", &o.BallDirection)
	d.get("ball_rotation", &o.BallRotation)
	d.get("ball_owned_team", &o.BallOwnedTeam)
	d.get("ball_owned_player", &o.BallOwnedPlayer)
	d.get("score", &o.Score)
	d.get("game_mode", &o.GameMode)
	d.get("steps_left", &o.StepsLeft)
	o.Left = d.team(SideLeft)
	o.Right = d.team(SideRight)
	if d.err != nil {
		return nil, d.err
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Encode writes o in the simulator's key/value form.
func Encode(o *Observation) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: observation", errs.ErrMissingField)
	}
	doc := map[string]any{
		"ball":              o.Ball,
		"ball_direction":    o.BallDirection,
		"ball_rotation":     o.BallRotation,
		"ball_owned_team":   o.BallOwnedTeam,
		"ball_owned_player": o.BallOwnedPlayer,
		"score":             o.Score,
		"game_mode":         o.GameMode,
		"steps_left":        o.StepsLeft,
	}
	encodeTeam(doc, SideLeft, &o.Left)
	encodeTeam(doc, SideRight, &o.Right)
	return json.Marshal(doc)
}

func encodeTeam(doc map[string]any, side Side, t *Team) {
	p := side.String()
	doc[p+"_team"] = t.Positions
	doc[p+"_team_direction"] = t.Directions
	doc[p+"_team_tired_factor"] = t.TiredFactor
	doc[p+"_team_active"] = t.Active
	doc[p+"_team_yellow_card"] = t.YellowCard
	doc[p+"_team_roles"] = t.Roles
	doc[p+"_team_designated_player"] = t.DesignatedPlayer
	if t.Agents == nil {
		return
	}
	if t.Agents.ControlledPlayers != nil {
		doc[p+"_agent_controlled_player"] = t.Agents.ControlledPlayers
	}
	if t.Agents.StickyActions != nil {
		doc[p+"_agent_sticky_actions"] = t.Agents.StickyActions
	}
}

// decoder keeps the first error so field reads stay linear.
type decoder struct {
	fields map[string]json.RawMessage
	err    error
}

func (d *decoder) get(key string, dst any) bool {
	if d.err != nil {
		return false
	}
	raw, ok := d.fields[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		d.err = fmt.Errorf("%w: %s: %v", errs.ErrInvalidArgument, key, err)
		return false
	}
	return true
}

func (d *decoder) flags(key string) []bool {
	var raw []any
	if !d.get(key, &raw) {
		return nil
	}
	out := make([]bool, len(raw))
	for i, v := range raw {
		switch b := v.(type) {
		case bool:
			out[i] = b
		case float64:
			out[i] = b != 0
		default:
			d.err = fmt.Errorf("%w: %s[%d] is %T", errs.ErrInvalidArgument, key, i, v)
			return nil
		}
	}
	return out
}

// stickyBits reads per-agent sticky vectors whose bits are 0/1 or booleans.
func (d *decoder) stickyBits(key string) [][]int {
	var raw [][]any
	if !d.get(key, &raw) {
		return nil
	}
	out := make([][]int, len(raw))
	for i, vec := range raw {
		bits := make([]int, len(vec))
		for j, v := range vec {
			switch b := v.(type) {
			case bool:
				if b {
					bits[j] = 1
				}
			case float64:
				bits[j] = int(b)
			default:
				d.err = fmt.Errorf("%w: %s[%d][%d] is %T", errs.ErrInvalidArgument, key, i, j, v)
				return nil
			}
		}
		out[i] = bits
	}
	return out
}

func (d *decoder) team(side Side) Team {
	p := side.String()
	var t Team
	d.get(p+"_team", &t.Positions)
	d.get(p+"_team_direction", &t.Directions)
	d.get(p+"_team_tired_factor", &t.TiredFactor)
	t.Active = d.flags(p + "_team_active")
	t.YellowCard = d.flags(p + "_team_yellow_card")
	d.get(p+"_team_roles", &t.Roles)
	d.get(p+"_team_designated_player", &t.DesignatedPlayer)

	var agents Agents
	controlled := d.get(p+"_agent_controlled_player", &agents.ControlledPlayers)
	agents.StickyActions = d.stickyBits(p + "_agent_sticky_actions")
	sticky := agents.StickyActions != nil
	if controlled || sticky {
		t.Agents = &agents
	}
	return t
}

// classify maps a schema failure to the error taxonomy. A missing required
// key anywhere in the failure tree wins over shape errors.
func classify(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	if missing := findRequired(ve); missing != nil {
		return fmt.Errorf("%w: %s", errs.ErrMissingField, missing.Message)
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return fmt.Errorf("%w: %s: %s", errs.ErrInvalidArgument, leaf.InstanceLocation, leaf.Message)
}

func findRequired(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	if strings.HasSuffix(ve.KeywordLocation, "/required") {
		return ve
	}
	for _, c := range ve.Causes {
		if r := findRequired(c); r != nil {
			return r
		}
	}
	return nil
}
