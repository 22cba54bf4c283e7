package actionset

// Action is the canonical symbol of a discrete football action. The zero value
// is not a valid action.
type Action string

const (
	Idle      Action = "idle"
	BuiltinAI Action = "builtin_ai"

	Left        Action = "left"
	TopLeft     Action = "top_left"
	Top         Action = "top"
	TopRight    Action = "top_right"
	Right       Action = "right"
	BottomRight Action = "bottom_right"
	Bottom      Action = "bottom"
	BottomLeft  Action = "bottom_left"

	LongPass     Action = "long_pass"
	HighPass     Action = "high_pass"
	ShortPass    Action = "short_pass"
	Shot         Action = "shot"
	KeeperRush   Action = "keeper_rush"
	Sliding      Action = "sliding"
	Pressure     Action = "pressure"
	TeamPressure Action = "team_pressure"
	Switch       Action = "switch"
	Sprint       Action = "sprint"
	Dribble      Action = "dribble"

	ReleaseDirection    Action = "release_direction"
	ReleaseLongPass     Action = "release_long_pass"
	ReleaseHighPass     Action = "release_high_pass"
	ReleaseShortPass    Action = "release_short_pass"
	ReleaseShot         Action = "release_shot"
	ReleaseKeeperRush   Action = "release_keeper_rush"
	ReleaseSliding      Action = "release_sliding"
	ReleasePressure     Action = "release_pressure"
	ReleaseTeamPressure Action = "release_team_pressure"
	ReleaseSwitch       Action = "release_switch"
	ReleaseSprint       Action = "release_sprint"
	ReleaseDribble      Action = "release_dribble"
)

// Directions lists the eight compass movements in clockwise order starting
// from Left.
var Directions = [8]Action{Left, TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft}

type actionInfo struct {
	sticky      bool
	directional bool
}

// vocabulary holds every action the simulator understands.
var vocabulary = map[Action]actionInfo{
	Idle:      {},
	BuiltinAI: {},

	Left:        {sticky: true, directional: true},
	TopLeft:     {sticky: true, directional: true},
	Top:         {sticky: true, directional: true},
	TopRight:    {sticky: true, directional: true},
	Right:       {sticky: true, directional: true},
	BottomRight: {sticky: true, directional: true},
	Bottom:      {sticky: true, directional: true},
	BottomLeft:  {sticky: true, directional: true},

	LongPass:     {},
	HighPass:     {},
	ShortPass:    {},
	Shot:         {},
	KeeperRush:   {sticky: true},
	Sliding:      {},
	Pressure:     {sticky: true},
	TeamPressure: {sticky: true},
	Switch:       {},
	Sprint:       {sticky: true},
	Dribble:      {sticky: true},

	ReleaseDirection:    {},
	ReleaseLongPass:     {},
	ReleaseHighPass:     {},
	ReleaseShortPass:    {},
	ReleaseShot:         {},
	ReleaseKeeperRush:   {},
	ReleaseSliding:      {},
	ReleasePressure:     {},
	ReleaseTeamPressure: {},
	ReleaseSwitch:       {},
	ReleaseSprint:       {},
	ReleaseDribble:      {},
}

// Known reports whether a is part of the simulator vocabulary.
func (a Action) Known() bool {
	_, ok := vocabulary[a]
	return ok
}

// Sticky reports whether a stays active across ticks until released.
func (a Action) Sticky() bool {
	return vocabulary[a].sticky
}

// Directional reports whether a is one of the eight compass movements.
func (a Action) Directional() bool {
	return vocabulary[a].directional
}

func (a Action) String() string {
	return string(a)
}
