package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/fieldflip/internal/core/errs"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"player_0", "player_1", "player_2"}, Names(3))
	assert.Empty(t, Names(0))

	idx, err := Index("player_12")
	require.NoError(t, err)
	assert.Equal(t, 12, idx)

	for _, bad := range []string{"agent_1", "player_", "player_-1", "player_x"} {
		_, err = Index(bad)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument, bad)
	}
}

func TestOrderedAndSplit(t *testing.T) {
	names := Names(2)

	ordered, err := Ordered(map[string]int{"player_1": 5, "player_0": 3}, names)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, ordered)

	_, err = Ordered(map[string]int{"player_0": 3}, names)
	assert.ErrorIs(t, err, errs.ErrMissingField)

	split, err := Split([]float64{0.5, -1}, names)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"player_0": 0.5, "player_1": -1}, split)

	_, err = Split([]float64{0.5}, names)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
