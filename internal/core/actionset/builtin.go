package actionset

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultSet = "default"
	V2Set      = "v2"
	FullSet    = "full"
)

var v1Actions = []Action{
	Idle, Left, TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft,
	LongPass, HighPass, ShortPass, Shot, Sprint, ReleaseDirection, ReleaseSprint,
	Sliding, Dribble, ReleaseDribble,
}

var v2Actions = append(append([]Action(nil), v1Actions...), BuiltinAI)

var fullActions = append(append([]Action(nil), v2Actions...),
	KeeperRush, Pressure, TeamPressure, Switch,
	ReleaseLongPass, ReleaseHighPass, ReleaseShortPass, ReleaseShot,
	ReleaseKeeperRush, ReleaseSliding, ReleasePressure, ReleaseTeamPressure,
	ReleaseSwitch,
)

var builtin = map[string]*Set{
	DefaultSet: mustNew(DefaultSet, v1Actions),
	V2Set:      mustNew(V2Set, v2Actions),
	FullSet:    mustNew(FullSet, fullActions),
}

func mustNew(name string, actions []Action) *Set {
	s, err := New(name, actions, nil)
	if err != nil {
		panic(err)
	}
	return s
}

// Resolve returns the built-in set with the given name. An empty name selects
// the default set.
func Resolve(name string) (*Set, error) {
	if name == "" {
		name = DefaultSet
	}
	s, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (built-in: %s)", ErrUnknownActionSet, name, strings.Join(BuiltinNames(), ", "))
	}
	return s, nil
}

// Default returns the set used when nothing else is configured.
func Default() *Set {
	return builtin[DefaultSet]
}

// BuiltinNames lists the built-in set names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
