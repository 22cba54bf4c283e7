package symmetry

import (
	"context"
	"fmt"

	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/observation"
	"github.com/zeusync/fieldflip/pkg/concurrent"
)

// MirrorObservations mirrors one observation per controlled agent using at
// most workers goroutines. Results keep the input order.
func MirrorObservations(ctx context.Context, obs []*observation.Observation, r actionset.Resolver, workers int) ([]*observation.Observation, error) {
	return concurrent.ParallelMap(ctx, obs, workers,
		func(_ context.Context, idx int, o *observation.Observation) (*observation.Observation, error) {
			m, err := MirrorObservation(o, r)
			if err != nil {
				return nil, fmt.Errorf("observation %d: %w", idx, err)
			}
			return m, nil
		})
}

// MirrorJointAction mirrors a per-agent action map.
func MirrorJointAction(actions map[string]any, r actionset.Resolver) (map[string]actionset.Action, error) {
	out := make(map[string]actionset.Action, len(actions))
	for agent, raw := range actions {
		a, err := MirrorAction(raw, r)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", agent, err)
		}
		out[agent] = a
	}
	return out, nil
}
