package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}

	out, err := ParallelMap(context.Background(), in, 4, func(_ context.Context, idx int, v int) (int, error) {
		assert.Equal(t, idx, v)
		return v * v, nil
	})
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestParallelMapError(t *testing.T) {
	boom := errors.New("boom")
	out, err := ParallelMap(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, _ int, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestParallelMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	_, err := ParallelMap(ctx, []int{1, 2, 3}, 1, func(_ context.Context, _ int, v int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return v, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
