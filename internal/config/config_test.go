package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/errs"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/core/observation"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, log.LevelInfo, c.LogLevel())

	s, err := c.ActionSet()
	require.NoError(t, err)
	assert.Same(t, actionset.Default(), s)
}

func TestLoad(t *testing.T) {
	c, err := Load("testdata/fieldflip.yaml")
	require.NoError(t, err)

	assert.Equal(t, "scoring,checkpoints", c.Env.Rewards)
	assert.Equal(t, 2, c.Env.LeftAgents)
	assert.Equal(t, 1, c.Env.RightAgents)
	assert.Equal(t, "127.0.0.1:9100", c.Server.Addr)
	assert.Equal(t, 2*time.Second, c.Server.WriteTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, log.LevelDebug, c.LogLevel())

	s, err := c.ActionSet()
	require.NoError(t, err)
	assert.Equal(t, "compass", s.Name())
	assert.Len(t, s.StickyActions(), 8)

	assert.Equal(t, []string{"player_0", "player_1", "player_2"}, c.Env.AgentNames())
}

func TestAgentSide(t *testing.T) {
	env := EnvConfig{LeftAgents: 2, RightAgents: 1}

	side, err := env.AgentSide("player_1")
	require.NoError(t, err)
	assert.Equal(t, observation.SideLeft, side)

	side, err = env.AgentSide("player_2")
	require.NoError(t, err)
	assert.Equal(t, observation.SideRight, side)

	_, err = env.AgentSide("player_3")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = env.AgentSide("goalie")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestDecodeInvalid(t *testing.T) {
	cases := map[string]string{
		"no agents":    "env:\n  left_agents: 0\n",
		"negative":     "env:\n  right_agents: -1\n",
		"workers":      "mirror:\n  workers: -2\n",
		"addr":         "server:\n  addr: \"\"\n",
		"message size": "server:\n  max_message_size: 0\n",
		"log level":    "log:\n  level: chatty\n",
	}
	for name, doc := range cases {
		_, err := Decode(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	_, err := Decode(strings.NewReader("env:\n  scenery: x\n"))
	assert.Error(t, err)

	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestActionSetErrors(t *testing.T) {
	c := Default()
	c.Mirror.ActionSet = "v7"
	_, err := c.ActionSet()
	assert.ErrorIs(t, err, actionset.ErrUnknownActionSet)

	c = Default()
	c.Mirror.Catalog = "testdata/missing.yaml"
	_, err = c.ActionSet()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	assert.Error(t, err)
}
