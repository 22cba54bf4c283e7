package observation

import (
	"fmt"
	"slices"

	"github.com/zeusync/fieldflip/internal/core/errs"
)

// Vec2 is a point or displacement on the pitch plane.
type Vec2 [2]float64

// Vec3 is a point or displacement in world units; Z is height.
type Vec3 [3]float64

// Side identifies a team relative to the unmirrored field orientation.
type Side int

const (
	SideNone  Side = -1
	SideLeft  Side = 0
	SideRight Side = 1
)

// Opposite swaps Left and Right and keeps None.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return s
	}
}

func (s Side) Valid() bool {
	return s == SideNone || s == SideLeft || s == SideRight
}

func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

type GameMode int

const (
	GameModeNormal GameMode = iota
	GameModeKickOff
	GameModeGoalKick
	GameModeFreeKick
	GameModeCorner
	GameModeThrowIn
	GameModePenalty
)

var gameModeNames = [...]string{"normal", "kick_off", "goal_kick", "free_kick", "corner", "throw_in", "penalty"}

func (m GameMode) Valid() bool {
	return m >= GameModeNormal && m <= GameModePenalty
}

func (m GameMode) String() string {
	if m.Valid() {
		return gameModeNames[m]
	}
	return fmt.Sprintf("game_mode(%d)", int(m))
}

// Role is a player's tactical role as reported by the simulator.
type Role int

const (
	RoleGoalkeeper Role = iota
	RoleCenterBack
	RoleLeftBack
	RoleRightBack
	RoleDefenceMidfield
	RoleCentralMidfield
	RoleLeftMidfield
	RoleRightMidfield
	RoleAttackMidfield
	RoleCentralForward
)

// Score holds goals as [left, right].
type Score [2]int

func (s Score) Swapped() Score {
	return Score{s[1], s[0]}
}

// Observation is the full simulator state seen from one perspective at one
// tick.
type Observation struct {
	Ball          Vec3
	BallDirection Vec3
	BallRotation  Vec3

	BallOwnedTeam   Side
	BallOwnedPlayer int

	Score     Score
	GameMode  GameMode
	StepsLeft int

	Left  Team
	Right Team
}

// Team carries the per-side roster. Every slice except those in Agents is
// indexed by roster position and shares the roster length.
type Team struct {
	Positions        []Vec2
	Directions       []Vec2
	TiredFactor      []float64
	Active           []bool
	YellowCard       []bool
	Roles            []Role
	DesignatedPlayer int

	// Agents is nil when no agent controls players on this side.
	Agents *Agents
}

// Agents holds the per-agent state of a side that agents control. Either
// slice may be absent independently.
type Agents struct {
	ControlledPlayers []int
	StickyActions     [][]int
}

// Team returns the roster for side.
func (o *Observation) Team(side Side) *Team {
	switch side {
	case SideLeft:
		return &o.Left
	case SideRight:
		return &o.Right
	default:
		return nil
	}
}

// Validate checks the record is structurally complete and consistent.
func (o *Observation) Validate() error {
	if o == nil {
		return fmt.Errorf("%w: observation", errs.ErrMissingField)
	}
	if !o.BallOwnedTeam.Valid() {
		return fmt.Errorf("%w: ball_owned_team %d", errs.ErrInvalidArgument, o.BallOwnedTeam)
	}
	if o.Score[0] < 0 || o.Score[1] < 0 {
		return fmt.Errorf("%w: score %v", errs.ErrInvalidArgument, o.Score)
	}
	if !o.GameMode.Valid() {
		return fmt.Errorf("%w: game_mode %d", errs.ErrInvalidArgument, o.GameMode)
	}
	if o.StepsLeft < 0 {
		return fmt.Errorf("%w: steps_left %d", errs.ErrInvalidArgument, o.StepsLeft)
	}
	if err := o.Left.Validate(SideLeft); err != nil {
		return err
	}
	return o.Right.Validate(SideRight)
}

// Validate checks required roster slices are present and equally long.
// side only labels errors.
func (t *Team) Validate(side Side) error {
	prefix := side.String() + "_team"
	if t.Positions == nil {
		return fmt.Errorf("%w: %s", errs.ErrMissingField, prefix)
	}
	n := len(t.Positions)

	lengths := []struct {
		key string
		ok  bool
		l   int
	}{
		{"_direction", t.Directions != nil, len(t.Directions)},
		{"_tired_factor", t.TiredFactor != nil, len(t.TiredFactor)},
		{"_active", t.Active != nil, len(t.Active)},
		{"_yellow_card", t.YellowCard != nil, len(t.YellowCard)},
		{"_roles", t.Roles != nil, len(t.Roles)},
	}
	for _, f := range lengths {
		if !f.ok {
			return fmt.Errorf("%w: %s%s", errs.ErrMissingField, prefix, f.key)
		}
		if f.l != n {
			return fmt.Errorf("%w: %s%s has %d entries, roster has %d",
				errs.ErrInvalidArgument, prefix, f.key, f.l, n)
		}
	}

	if t.Agents == nil {
		return nil
	}
	for _, p := range t.Agents.ControlledPlayers {
		if p < 0 || p >= n {
			return fmt.Errorf("%w: %s_agent_controlled_player index %d outside roster of %d",
				errs.ErrInvalidArgument, side, p, n)
		}
	}
	if t.Agents.ControlledPlayers != nil && t.Agents.StickyActions != nil &&
		len(t.Agents.ControlledPlayers) != len(t.Agents.StickyActions) {
		return fmt.Errorf("%w: %s side has %d controlled players and %d sticky vectors",
			errs.ErrInvalidArgument, side, len(t.Agents.ControlledPlayers), len(t.Agents.StickyActions))
	}
	return nil
}

// Clone returns a deep copy.
func (o *Observation) Clone() *Observation {
	if o == nil {
		return nil
	}
	c := *o
	c.Left = o.Left.Clone()
	c.Right = o.Right.Clone()
	return &c
}

func (t Team) Clone() Team {
	c := Team{
		Positions:        slices.Clone(t.Positions),
		Directions:       slices.Clone(t.Directions),
		TiredFactor:      slices.Clone(t.TiredFactor),
		Active:           slices.Clone(t.Active),
		YellowCard:       slices.Clone(t.YellowCard),
		Roles:            slices.Clone(t.Roles),
		DesignatedPlayer: t.DesignatedPlayer,
	}
	if t.Agents != nil {
		c.Agents = &Agents{ControlledPlayers: slices.Clone(t.Agents.ControlledPlayers)}
		if t.Agents.StickyActions != nil {
			c.Agents.StickyActions = make([][]int, len(t.Agents.StickyActions))
			for i, bits := range t.Agents.StickyActions {
				c.Agents.StickyActions[i] = slices.Clone(bits)
			}
		}
	}
	return c
}
