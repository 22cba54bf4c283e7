// Package symmetry rotates observations and actions by 180 degrees around the
// field center, so a policy trained to attack left to right can play from the
// right side unchanged.
//
// Every function is pure: inputs are never modified and results never share
// memory with them. Applying any transform twice returns the original value.
package symmetry

import (
	"fmt"

	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/errs"
	"github.com/zeusync/fieldflip/internal/core/observation"
)

// opposite pairs antipodal compass directions.
var opposite = map[actionset.Action]actionset.Action{
	actionset.Left:        actionset.Right,
	actionset.TopLeft:     actionset.BottomRight,
	actionset.Top:         actionset.Bottom,
	actionset.TopRight:    actionset.BottomLeft,
	actionset.Right:       actionset.Left,
	actionset.BottomRight: actionset.TopLeft,
	actionset.Bottom:      actionset.Top,
	actionset.BottomLeft:  actionset.TopRight,
}

// MirrorPoint3D negates the horizontal axes. Height is unchanged.
func MirrorPoint3D(p observation.Vec3) observation.Vec3 {
	return observation.Vec3{-p[0], -p[1], p[2]}
}

// MirrorPoints2D negates every point. Positions and displacements transform
// the same way under a point reflection through the origin.
func MirrorPoints2D(points []observation.Vec2) []observation.Vec2 {
	if points == nil {
		return nil
	}
	out := make([]observation.Vec2, len(points))
	for i, p := range points {
		out[i] = observation.Vec2{-p[0], -p[1]}
	}
	return out
}

// MirrorSymbol maps a canonical action to its mirrored action. Anything that
// is not a compass direction is a fixed point.
func MirrorSymbol(a actionset.Action) actionset.Action {
	if m, ok := opposite[a]; ok {
		return m
	}
	return a
}

// MirrorAction canonicalises raw through r and mirrors it.
func MirrorAction(raw any, r actionset.Resolver) (actionset.Action, error) {
	a, err := r.Canonical(raw)
	if err != nil {
		return "", err
	}
	return MirrorSymbol(a), nil
}

// MirrorActions mirrors one action per controlled agent, keeping order.
func MirrorActions(raws []any, r actionset.Resolver) ([]actionset.Action, error) {
	out := make([]actionset.Action, len(raws))
	for i, raw := range raws {
		a, err := MirrorAction(raw, r)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out[i] = a
	}
	return out, nil
}

// MirrorCodes mirrors integer action codes and returns codes of the same set.
func MirrorCodes(codes []int, s *actionset.Set) ([]int, error) {
	out := make([]int, len(codes))
	for i, code := range codes {
		a, err := MirrorAction(code, s)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		// a set may hold a direction without its opposite
		if out[i], err = s.Code(a); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}
	return out, nil
}

// MirrorSticky remaps a sticky-action bit vector. Slot n of the result holds
// the bit the input recorded for the mirror of sticky action n.
func MirrorSticky(bits []int, r actionset.Resolver) ([]int, error) {
	sticky := r.StickyActions()
	if len(bits) != len(sticky) {
		return nil, fmt.Errorf("%w: sticky vector has %d bits, action set defines %d sticky actions",
			errs.ErrInvalidArgument, len(bits), len(sticky))
	}

	state := make(map[actionset.Action]int, len(sticky))
	for i, a := range sticky {
		state[a] = bits[i]
	}

	out := make([]int, len(sticky))
	for i, a := range sticky {
		bit, ok := state[MirrorSymbol(a)]
		if !ok {
			return nil, fmt.Errorf("%w: sticky action %q has no mirrored counterpart %q in the sticky set",
				errs.ErrInvalidArgument, a, MirrorSymbol(a))
		}
		out[i] = bit
	}
	return out, nil
}

// MirrorObservation returns the observation of the mirrored field: geometry
// negated, sides and score swapped, sticky bits remapped.
func MirrorObservation(o *observation.Observation, r actionset.Resolver) (*observation.Observation, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: observation", errs.ErrMissingField)
	}

	m := &observation.Observation{
		Ball:            MirrorPoint3D(o.Ball),
		BallDirection:   MirrorPoint3D(o.BallDirection),
		BallRotation:    o.BallRotation,
		BallOwnedTeam:   o.BallOwnedTeam.Opposite(),
		BallOwnedPlayer: o.BallOwnedPlayer,
		Score:           o.Score.Swapped(),
		GameMode:        o.GameMode,
		StepsLeft:       o.StepsLeft,
	}

	for _, side := range []observation.Side{observation.SideLeft, observation.SideRight} {
		t, err := flipTeam(o.Team(side), side, r)
		if err != nil {
			return nil, err
		}
		*m.Team(side.Opposite()) = t
	}
	return m, nil
}

// flipTeam builds the roster the opposite side sees after mirroring.
func flipTeam(src *observation.Team, from observation.Side, r actionset.Resolver) (observation.Team, error) {
	if err := src.Validate(from); err != nil {
		return observation.Team{}, err
	}

	dst := src.Clone()
	dst.Positions = MirrorPoints2D(src.Positions)
	dst.Directions = MirrorPoints2D(src.Directions)

	if src.Agents == nil || src.Agents.StickyActions == nil {
		return dst, nil
	}
	for i, bits := range src.Agents.StickyActions {
		mirrored, err := MirrorSticky(bits, r)
		if err != nil {
			return observation.Team{}, fmt.Errorf("%s_agent_sticky_actions[%d]: %w", from, i, err)
		}
		dst.Agents.StickyActions[i] = mirrored
	}
	return dst, nil
}
