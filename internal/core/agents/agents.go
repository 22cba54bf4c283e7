// Package agents converts between the simulator's positional per-step arrays
// and per-agent maps keyed by agent name.
package agents

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeusync/fieldflip/internal/core/errs"
)

const namePrefix = "player_"

// Names returns player_0 .. player_{n-1}.
func Names(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = namePrefix + strconv.Itoa(i)
	}
	return names
}

// Index returns the position encoded in an agent name.
func Index(name string) (int, error) {
	rest, ok := strings.CutPrefix(name, namePrefix)
	if !ok {
		return 0, fmt.Errorf("%w: agent name %q", errs.ErrInvalidArgument, name)
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: agent name %q", errs.ErrInvalidArgument, name)
	}
	return idx, nil
}

// Ordered lays out per-agent values in names order. Every agent must be
// present.
func Ordered[V any](values map[string]V, names []string) ([]V, error) {
	out := make([]V, len(names))
	for i, name := range names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: no value for agent %s", errs.ErrMissingField, name)
		}
		out[i] = v
	}
	return out, nil
}

// Split keys positional values by agent name. values must hold one entry per
// agent.
func Split[V any](values []V, names []string) (map[string]V, error) {
	if len(values) != len(names) {
		return nil, fmt.Errorf("%w: %d values for %d agents", errs.ErrInvalidArgument, len(values), len(names))
	}
	out := make(map[string]V, len(names))
	for i, name := range names {
		out[name] = values[i]
	}
	return out, nil
}
