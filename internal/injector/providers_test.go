package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/actionset"
)

func TestInitializeServer(t *testing.T) {
	srv, err := InitializeServer(config.Default())
	require.NoError(t, err)
	assert.Equal(t, actionset.DefaultSet, srv.GetStats().ActionSet)
	assert.False(t, srv.GetStats().Running)

	cfg := config.Default()
	cfg.Mirror.ActionSet = "unknown"
	_, err = InitializeServer(cfg)
	assert.ErrorIs(t, err, actionset.ErrUnknownActionSet)
}
